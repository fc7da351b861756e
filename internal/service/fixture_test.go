package service

import (
	"context"
	"sync"
	"time"

	"agencysearch/internal/model"
	"agencysearch/internal/repository"

	"github.com/google/uuid"
)

func strPtr(v string) *string {
	return &v
}

func intPtr(v int) *int {
	return &v
}

// recordingStore counts calls per method and can fail them on demand
type recordingStore struct {
	*repository.MemoryRepository

	mu    sync.Mutex
	calls map[string]int
	fail  map[string][]error // errors returned by successive calls, then success
}

func newRecordingStore(repo *repository.MemoryRepository) *recordingStore {
	return &recordingStore{
		MemoryRepository: repo,
		calls:            map[string]int{},
		fail:             map[string][]error{},
	}
}

func (s *recordingStore) failWith(method string, errs ...error) {
	s.mu.Lock()
	s.fail[method] = append(s.fail[method], errs...)
	s.mu.Unlock()
}

func (s *recordingStore) record(method string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[method]++
	if errs := s.fail[method]; len(errs) > 0 {
		s.fail[method] = errs[1:]
		return errs[0]
	}
	return nil
}

func (s *recordingStore) count(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

func (s *recordingStore) TradeIDsBySlugs(ctx context.Context, slugs []string) ([]uuid.UUID, error) {
	if err := s.record("TradeIDsBySlugs"); err != nil {
		return nil, err
	}
	return s.MemoryRepository.TradeIDsBySlugs(ctx, slugs)
}

func (s *recordingStore) RegionIDsByCodes(ctx context.Context, codes []string) ([]uuid.UUID, error) {
	if err := s.record("RegionIDsByCodes"); err != nil {
		return nil, err
	}
	return s.MemoryRepository.RegionIDsByCodes(ctx, codes)
}

func (s *recordingStore) AgencyIDsByTrades(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	if err := s.record("AgencyIDsByTrades"); err != nil {
		return nil, err
	}
	return s.MemoryRepository.AgencyIDsByTrades(ctx, ids)
}

func (s *recordingStore) AgencyIDsByRegions(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	if err := s.record("AgencyIDsByRegions"); err != nil {
		return nil, err
	}
	return s.MemoryRepository.AgencyIDsByRegions(ctx, ids)
}

func (s *recordingStore) ListAgencies(ctx context.Context, q model.ListQuery) ([]model.AgencyRow, error) {
	if err := s.record("ListAgencies"); err != nil {
		return nil, err
	}
	return s.MemoryRepository.ListAgencies(ctx, q)
}

func (s *recordingStore) CountAgencies(ctx context.Context, q model.ListQuery) (int, error) {
	if err := s.record("CountAgencies"); err != nil {
		return 0, err
	}
	return s.MemoryRepository.CountAgencies(ctx, q)
}

type directoryFixture struct {
	store                   *recordingStore
	acme, bolt, zeta, ghost uuid.UUID
	electricians, welders   uuid.UUID
	texas, ohio             uuid.UUID
}

// newDirectoryFixture seeds:
//
//	Acme Staffing  electricians, welders  TX
//	Bolt Crew      electricians           OH
//	Zeta Labor     welders                TX
//	Ghost Agency   electricians           TX   (inactive)
func newDirectoryFixture() directoryFixture {
	f := directoryFixture{
		acme: uuid.New(), bolt: uuid.New(), zeta: uuid.New(), ghost: uuid.New(),
		electricians: uuid.New(), welders: uuid.New(),
		texas: uuid.New(), ohio: uuid.New(),
	}
	repo := repository.NewMemoryRepository(model.Seed{
		Agencies: []model.AgencyRow{
			{ID: f.zeta, Name: "Zeta Labor", Slug: "zeta-labor", IsActive: true},
			{ID: f.bolt, Name: "Bolt Crew", Slug: "bolt-crew", IsActive: true, IsUnion: true, ProfileCompletionPercentage: intPtr(80)},
			{ID: f.acme, Name: "Acme Staffing", Slug: "acme-staffing", IsActive: true, Description: strPtr("Industrial electricians and welders")},
			{ID: f.ghost, Name: "Ghost Agency", Slug: "ghost-agency", IsActive: false},
		},
		Trades: []model.TradeRow{
			{ID: f.electricians, Name: "Electricians", Slug: "electricians"},
			{ID: f.welders, Name: "Welders", Slug: "welders"},
		},
		Regions: []model.RegionRow{
			{ID: f.texas, Name: "Texas", StateCode: "TX", Slug: "texas"},
			{ID: f.ohio, Name: "Ohio", StateCode: "OH", Slug: "ohio"},
		},
		AgencyTrades: []model.AgencyTrade{
			{AgencyID: f.acme, TradeID: f.electricians},
			{AgencyID: f.acme, TradeID: f.welders},
			{AgencyID: f.bolt, TradeID: f.electricians},
			{AgencyID: f.zeta, TradeID: f.welders},
			{AgencyID: f.ghost, TradeID: f.electricians},
		},
		AgencyRegions: []model.AgencyRegion{
			{AgencyID: f.acme, RegionID: f.texas},
			{AgencyID: f.bolt, RegionID: f.ohio},
			{AgencyID: f.zeta, RegionID: f.texas},
			{AgencyID: f.ghost, RegionID: f.texas},
		},
	})
	f.store = newRecordingStore(repo)
	return f
}

// newTestFetcher retries without sleeping and records the requested delays
func newTestFetcher(policy RetryPolicy) (*Fetcher, *[]time.Duration) {
	f := NewFetcher(policy, nil)
	var mu sync.Mutex
	delays := []time.Duration{}
	f.sleep = func(ctx context.Context, d time.Duration) error {
		mu.Lock()
		delays = append(delays, d)
		mu.Unlock()
		return ctx.Err()
	}
	return f, &delays
}
