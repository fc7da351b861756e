package service

import (
	"context"

	"agencysearch/internal/model"
	"agencysearch/internal/monitor"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Timer names reported to the monitor
const (
	timerResolveTrades = "resolve_trades"
	timerResolveStates = "resolve_states"
	timerTradeAgencies = "trade_agencies"
	timerStateAgencies = "state_agencies"
	timerListAgencies  = "list_agencies"
	timerCountAgencies = "count_agencies"
)

// FilterResolver turns trade slugs and state codes into the set of agency ids
// satisfying every applied dimension
type FilterResolver struct {
	store   Store
	fetcher *Fetcher
}

// NewFilterResolver creates a resolver over store
func NewFilterResolver(store Store, fetcher *Fetcher) *FilterResolver {
	return &FilterResolver{store: store, fetcher: fetcher}
}

type dimension struct {
	values     []string
	lookupName string
	joinName   string
	lookup     func(context.Context, []string) ([]uuid.UUID, error)
	join       func(context.Context, []uuid.UUID) ([]uuid.UUID, error)

	categoryIDs []uuid.UUID
	agencyIDs   []uuid.UUID
}

// Resolve returns nil when no dimension is applied. When a dimension resolves
// to nothing it returns an empty result without issuing any join lookup.
func (r *FilterResolver) Resolve(ctx context.Context, q model.QueryDescriptor, tracker *monitor.Tracker) (*model.FilterResult, error) {
	if !q.HasFilters() {
		return nil, nil
	}

	var dims []*dimension
	if len(q.Trades) > 0 {
		dims = append(dims, &dimension{
			values:     q.Trades,
			lookupName: timerResolveTrades,
			joinName:   timerTradeAgencies,
			lookup:     r.store.TradeIDsBySlugs,
			join:       r.store.AgencyIDsByTrades,
		})
	}
	if len(q.States) > 0 {
		dims = append(dims, &dimension{
			values:     q.States,
			lookupName: timerResolveStates,
			joinName:   timerStateAgencies,
			lookup:     r.store.RegionIDsByCodes,
			join:       r.store.AgencyIDsByRegions,
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, d := range dims {
		d := d
		g.Go(func() error {
			ids, err := timed(gctx, r.fetcher, tracker, d.lookupName, func(ctx context.Context) ([]uuid.UUID, error) {
				return d.lookup(ctx, d.values)
			})
			d.categoryIDs = ids
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, d := range dims {
		if len(d.categoryIDs) == 0 {
			return &model.FilterResult{IDs: []uuid.UUID{}}, nil
		}
	}

	g, gctx = errgroup.WithContext(ctx)
	for _, d := range dims {
		d := d
		g.Go(func() error {
			ids, err := timed(gctx, r.fetcher, tracker, d.joinName, func(ctx context.Context) ([]uuid.UUID, error) {
				return d.join(ctx, d.categoryIDs)
			})
			d.agencyIDs = ids
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	set := toSet(dims[0].agencyIDs)
	for _, d := range dims[1:] {
		set = intersect(set, toSet(d.agencyIDs))
	}
	return model.NewFilterResult(set), nil
}

// timed runs fn through the fetcher under the named monitor timer
func timed[T any](ctx context.Context, f *Fetcher, tracker *monitor.Tracker, name string, fn func(context.Context) (T, error)) (T, error) {
	if tracker != nil {
		tracker.StartTimer(name)
		defer tracker.EndTimer(name)
	}
	return fetch(ctx, f, name, fn)
}

func toSet(ids []uuid.UUID) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func intersect(a, b map[uuid.UUID]struct{}) map[uuid.UUID]struct{} {
	if len(b) < len(a) {
		a, b = b, a
	}
	out := make(map[uuid.UUID]struct{}, len(a))
	for id := range a {
		if _, ok := b[id]; ok {
			out[id] = struct{}{}
		}
	}
	return out
}
