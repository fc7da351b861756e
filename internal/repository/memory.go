package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"agencysearch/internal/model"

	"github.com/google/uuid"
)

// MemoryRepository serves the directory from an in-memory snapshot. It answers
// the same lookups as PostgresRepository and is read-only after construction.
type MemoryRepository struct {
	agencies      []model.AgencyRow
	trades        []model.TradeRow
	regions       []model.RegionRow
	agencyTrades  []model.AgencyTrade
	agencyRegions []model.AgencyRegion
}

// NewMemoryRepository creates a repository over a seed snapshot
func NewMemoryRepository(seed model.Seed) *MemoryRepository {
	return &MemoryRepository{
		agencies:      append([]model.AgencyRow(nil), seed.Agencies...),
		trades:        append([]model.TradeRow(nil), seed.Trades...),
		regions:       append([]model.RegionRow(nil), seed.Regions...),
		agencyTrades:  append([]model.AgencyTrade(nil), seed.AgencyTrades...),
		agencyRegions: append([]model.AgencyRegion(nil), seed.AgencyRegions...),
	}
}

// NewMemoryRepositoryFromFile loads a JSON seed; an empty path yields an empty directory
func NewMemoryRepositoryFromFile(path string) (*MemoryRepository, error) {
	if path == "" {
		return NewMemoryRepository(model.Seed{}), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed model.Seed
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return NewMemoryRepository(seed), nil
}

// Ping always succeeds
func (r *MemoryRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

// TradeIDsBySlugs resolves trade slugs to trade ids by exact match
func (r *MemoryRepository) TradeIDsBySlugs(ctx context.Context, slugs []string) ([]uuid.UUID, error) {
	want := stringSet(slugs)
	ids := []uuid.UUID{}
	for _, t := range r.trades {
		if _, ok := want[t.Slug]; ok {
			ids = append(ids, t.ID)
		}
	}
	return ids, nil
}

// RegionIDsByCodes resolves two-letter state codes to region ids by exact match
func (r *MemoryRepository) RegionIDsByCodes(ctx context.Context, codes []string) ([]uuid.UUID, error) {
	want := stringSet(codes)
	ids := []uuid.UUID{}
	for _, reg := range r.regions {
		if _, ok := want[reg.StateCode]; ok {
			ids = append(ids, reg.ID)
		}
	}
	return ids, nil
}

// AgencyIDsByTrades returns agencies linked to any of the given trades
func (r *MemoryRepository) AgencyIDsByTrades(ctx context.Context, tradeIDs []uuid.UUID) ([]uuid.UUID, error) {
	want := idSet(tradeIDs)
	seen := map[uuid.UUID]struct{}{}
	ids := []uuid.UUID{}
	for _, link := range r.agencyTrades {
		if _, ok := want[link.TradeID]; !ok {
			continue
		}
		if _, dup := seen[link.AgencyID]; dup {
			continue
		}
		seen[link.AgencyID] = struct{}{}
		ids = append(ids, link.AgencyID)
	}
	return ids, nil
}

// AgencyIDsByRegions returns agencies linked to any of the given regions
func (r *MemoryRepository) AgencyIDsByRegions(ctx context.Context, regionIDs []uuid.UUID) ([]uuid.UUID, error) {
	want := idSet(regionIDs)
	seen := map[uuid.UUID]struct{}{}
	ids := []uuid.UUID{}
	for _, link := range r.agencyRegions {
		if _, ok := want[link.RegionID]; !ok {
			continue
		}
		if _, dup := seen[link.AgencyID]; dup {
			continue
		}
		seen[link.AgencyID] = struct{}{}
		ids = append(ids, link.AgencyID)
	}
	return ids, nil
}

// ListAgencies returns one page of active agencies ordered by name
func (r *MemoryRepository) ListAgencies(ctx context.Context, q model.ListQuery) ([]model.AgencyRow, error) {
	matched := r.match(q)

	from := q.Offset
	if from >= len(matched) {
		return []model.AgencyRow{}, nil
	}
	to := len(matched)
	if q.Limit < to-from {
		to = from + q.Limit
	}

	page := make([]model.AgencyRow, 0, to-from)
	for _, row := range matched[from:to] {
		row.TradeJoins = r.tradeJoinsFor(row.ID)
		row.RegionJoins = r.regionJoinsFor(row.ID)
		page = append(page, row)
	}
	return page, nil
}

// CountAgencies counts active agencies matching the same predicate as ListAgencies
func (r *MemoryRepository) CountAgencies(ctx context.Context, q model.ListQuery) (int, error) {
	return len(r.match(q)), nil
}

func (r *MemoryRepository) match(q model.ListQuery) []model.AgencyRow {
	var allowed map[uuid.UUID]struct{}
	if q.Filter != nil {
		allowed = idSet(q.Filter.IDs)
	}
	search := strings.ToLower(q.Search)

	matched := []model.AgencyRow{}
	for _, a := range r.agencies {
		if !a.IsActive {
			continue
		}
		if allowed != nil {
			if _, ok := allowed[a.ID]; !ok {
				continue
			}
		}
		if search != "" && !containsFold(a.Name, search) && (a.Description == nil || !containsFold(*a.Description, search)) {
			continue
		}
		matched = append(matched, a)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Name != matched[j].Name {
			return matched[i].Name < matched[j].Name
		}
		return matched[i].ID.String() < matched[j].ID.String()
	})
	return matched
}

func (r *MemoryRepository) tradeJoinsFor(agencyID uuid.UUID) model.TradeJoins {
	joins := model.TradeJoins{}
	for _, link := range r.agencyTrades {
		if link.AgencyID != agencyID {
			continue
		}
		for i := range r.trades {
			if r.trades[i].ID == link.TradeID {
				trade := r.trades[i]
				joins = append(joins, model.TradeJoin{Trade: &trade})
			}
		}
	}
	sort.SliceStable(joins, func(i, j int) bool {
		return joins[i].Trade.Name < joins[j].Trade.Name
	})
	return joins
}

func (r *MemoryRepository) regionJoinsFor(agencyID uuid.UUID) model.RegionJoins {
	joins := model.RegionJoins{}
	for _, link := range r.agencyRegions {
		if link.AgencyID != agencyID {
			continue
		}
		for i := range r.regions {
			if r.regions[i].ID == link.RegionID {
				region := r.regions[i]
				joins = append(joins, model.RegionJoin{Region: &region})
			}
		}
	}
	sort.SliceStable(joins, func(i, j int) bool {
		return joins[i].Region.StateCode < joins[j].Region.StateCode
	})
	return joins
}

func containsFold(s, lowerSubstr string) bool {
	return strings.Contains(strings.ToLower(s), lowerSubstr)
}

func stringSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func idSet(ids []uuid.UUID) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
