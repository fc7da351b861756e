package service

import (
	"context"

	"agencysearch/internal/apperr"
	"agencysearch/internal/model"
	"agencysearch/internal/monitor"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DirectoryService answers listing queries against the agency directory
type DirectoryService struct {
	store    Store
	fetcher  *Fetcher
	resolver *FilterResolver
	logger   *zap.Logger
}

// NewDirectoryService creates a new directory service. A nil store is
// accepted and reported as ErrStoreNotConfigured on first use.
func NewDirectoryService(store Store, fetcher *Fetcher, logger *zap.Logger) *DirectoryService {
	if fetcher == nil {
		fetcher = NewFetcher(DefaultRetryPolicy, logger)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectoryService{
		store:    store,
		fetcher:  fetcher,
		resolver: NewFilterResolver(store, fetcher),
		logger:   logger,
	}
}

// ListAgencies resolves filters, then fetches the page and the total with
// the same predicate
func (s *DirectoryService) ListAgencies(ctx context.Context, q model.QueryDescriptor, tracker *monitor.Tracker) (*model.ListResponse, error) {
	if s.store == nil {
		return nil, apperr.Database("Data store unavailable", ErrStoreNotConfigured)
	}

	filter, err := s.resolver.Resolve(ctx, q, tracker)
	if err != nil {
		return nil, err
	}
	if filter.IsEmpty() {
		return &model.ListResponse{
			Data:       []model.AgencyListing{},
			Pagination: NewPageMetadata(0, q.Limit, q.Offset),
		}, nil
	}

	lq := model.ListQuery{
		Search: q.Search,
		Filter: filter,
		Limit:  q.Limit,
		Offset: q.Offset,
	}

	var (
		rows  []model.AgencyRow
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = timed(gctx, s.fetcher, tracker, timerListAgencies, func(ctx context.Context) ([]model.AgencyRow, error) {
			return s.store.ListAgencies(ctx, lq)
		})
		return err
	})
	g.Go(func() error {
		var err error
		total, err = timed(gctx, s.fetcher, tracker, timerCountAgencies, func(ctx context.Context) (int, error) {
			return s.store.CountAgencies(ctx, lq)
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Debug("listed agencies",
		zap.String("search", q.Search),
		zap.Strings("trades", q.Trades),
		zap.Strings("states", q.States),
		zap.Int("rows", len(rows)),
		zap.Int("total", total))

	return &model.ListResponse{
		Data:       AssembleListings(rows),
		Pagination: NewPageMetadata(total, q.Limit, q.Offset),
	}, nil
}

// Ping checks the backing store
func (s *DirectoryService) Ping(ctx context.Context) error {
	if s.store == nil {
		return ErrStoreNotConfigured
	}
	return s.store.Ping(ctx)
}
