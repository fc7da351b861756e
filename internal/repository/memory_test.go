package repository

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"agencysearch/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(v string) *string {
	return &v
}

type memoryFixture struct {
	repo                    *MemoryRepository
	acme, bolt, zeta, ghost uuid.UUID
	electricians, welders   uuid.UUID
	texas, ohio             uuid.UUID
}

func newMemoryFixture() memoryFixture {
	f := memoryFixture{
		acme: uuid.New(), bolt: uuid.New(), zeta: uuid.New(), ghost: uuid.New(),
		electricians: uuid.New(), welders: uuid.New(),
		texas: uuid.New(), ohio: uuid.New(),
	}
	f.repo = NewMemoryRepository(model.Seed{
		Agencies: []model.AgencyRow{
			{ID: f.zeta, Name: "Zeta Labor", Slug: "zeta-labor", IsActive: true},
			{ID: f.acme, Name: "Acme Staffing", Slug: "acme-staffing", IsActive: true, Description: strPtr("Industrial electricians")},
			{ID: f.bolt, Name: "Bolt Crew", Slug: "bolt-crew", IsActive: true},
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
			{AgencyID: f.acme, TradeID: f.welders},
			{AgencyID: f.acme, TradeID: f.electricians},
			{AgencyID: f.bolt, TradeID: f.electricians},
			{AgencyID: f.ghost, TradeID: f.electricians},
		},
		AgencyRegions: []model.AgencyRegion{
			{AgencyID: f.acme, RegionID: f.texas},
			{AgencyID: f.zeta, RegionID: f.ohio},
		},
	})
	return f
}

func TestMemoryRepository_CategoryLookups(t *testing.T) {
	f := newMemoryFixture()
	ctx := context.Background()

	trades, err := f.repo.TradeIDsBySlugs(ctx, []string{"electricians", "plumbers"})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{f.electricians}, trades)

	regions, err := f.repo.RegionIDsByCodes(ctx, []string{"ZZ"})
	require.NoError(t, err)
	assert.NotNil(t, regions)
	assert.Empty(t, regions)
}

func TestMemoryRepository_AgencyIDsByTrades(t *testing.T) {
	f := newMemoryFixture()

	ids, err := f.repo.AgencyIDsByTrades(context.Background(), []uuid.UUID{f.electricians, f.welders})
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{f.acme, f.bolt, f.ghost}, ids)
}

func TestMemoryRepository_ListAgencies(t *testing.T) {
	f := newMemoryFixture()
	ctx := context.Background()

	rows, err := f.repo.ListAgencies(ctx, model.ListQuery{Limit: 10})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Acme Staffing", rows[0].Name)
	assert.Equal(t, "Bolt Crew", rows[1].Name)
	assert.Equal(t, "Zeta Labor", rows[2].Name)

	require.Len(t, rows[0].TradeJoins, 2)
	assert.Equal(t, "Electricians", rows[0].TradeJoins[0].Trade.Name)
	assert.Equal(t, "Welders", rows[0].TradeJoins[1].Trade.Name)
	assert.Empty(t, rows[1].RegionJoins)

	page, err := f.repo.ListAgencies(ctx, model.ListQuery{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "Zeta Labor", page[0].Name)

	past, err := f.repo.ListAgencies(ctx, model.ListQuery{Limit: 2, Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, past)

	far, err := f.repo.ListAgencies(ctx, model.ListQuery{Limit: 100, Offset: math.MaxInt})
	require.NoError(t, err)
	assert.Empty(t, far)

	wide, err := f.repo.ListAgencies(ctx, model.ListQuery{Limit: math.MaxInt, Offset: 1})
	require.NoError(t, err)
	assert.Len(t, wide, 2)
}

func TestMemoryRepository_SearchAndFilter(t *testing.T) {
	f := newMemoryFixture()
	ctx := context.Background()

	q := model.ListQuery{Search: "ELECTRIC", Limit: 10}
	rows, err := f.repo.ListAgencies(ctx, q)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, f.acme, rows[0].ID)

	q = model.ListQuery{Filter: &model.FilterResult{IDs: []uuid.UUID{f.bolt, f.ghost}}, Limit: 10}
	total, err := f.repo.CountAgencies(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 1, total, "inactive agencies are never listed")
}

func TestNewMemoryRepositoryFromFile(t *testing.T) {
	id := uuid.New()
	path := filepath.Join(t.TempDir(), "seed.json")
	seed := `{"agencies":[{"id":"` + id.String() + `","name":"Acme","slug":"acme","is_active":true}]}`
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o600))

	repo, err := NewMemoryRepositoryFromFile(path)
	require.NoError(t, err)

	total, err := repo.CountAgencies(context.Background(), model.ListQuery{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	_, err = NewMemoryRepositoryFromFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
