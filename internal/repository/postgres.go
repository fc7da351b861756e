package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"agencysearch/internal/model"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const agencyColumns = `
			a.id, a.name, a.slug, a.description, a.logo_url, a.website, a.phone,
			a.email, a.headquarters, a.is_active, a.is_claimed, a.is_union,
			a.offers_per_diem, a.profile_completion_percentage`

// Nested joins are aggregated in-row so one round-trip returns the page
const agencyJoinColumns = `
			COALESCE((
				SELECT json_agg(json_build_object(
					'trade', json_build_object('id', t.id, 'name', t.name, 'slug', t.slug)
				) ORDER BY t.name, t.id)
				FROM agency_trades agt
				JOIN trades t ON t.id = agt.trade_id
				WHERE agt.agency_id = a.id
			), '[]'::json) AS agency_trades,
			COALESCE((
				SELECT json_agg(json_build_object(
					'region', json_build_object('id', r.id, 'name', r.name, 'state_code', r.state_code, 'slug', r.slug)
				) ORDER BY r.state_code, r.id)
				FROM agency_regions agr
				JOIN regions r ON r.id = agr.region_id
				WHERE agr.agency_id = a.id
			), '[]'::json) AS agency_regions`

// PostgresRepository handles database operations
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

// NewPostgresRepositoryFromDB wraps an existing connection
func NewPostgresRepositoryFromDB(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// Ping checks the database connection
func (r *PostgresRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// TradeIDsBySlugs resolves trade slugs to trade ids by exact match
func (r *PostgresRepository) TradeIDsBySlugs(ctx context.Context, slugs []string) ([]uuid.UUID, error) {
	return r.selectIDsIn(ctx, "SELECT id FROM trades WHERE slug IN (?)", slugs, "trades")
}

// RegionIDsByCodes resolves two-letter state codes to region ids by exact match
func (r *PostgresRepository) RegionIDsByCodes(ctx context.Context, codes []string) ([]uuid.UUID, error) {
	return r.selectIDsIn(ctx, "SELECT id FROM regions WHERE state_code IN (?)", codes, "regions")
}

// AgencyIDsByTrades returns agencies linked to any of the given trades
func (r *PostgresRepository) AgencyIDsByTrades(ctx context.Context, tradeIDs []uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT DISTINCT agency_id FROM agency_trades WHERE trade_id = ANY($1::uuid[])`
	var ids []uuid.UUID
	if err := r.db.SelectContext(ctx, &ids, query, pq.Array(uuidStrings(tradeIDs))); err != nil {
		return nil, fmt.Errorf("failed to fetch agency_trades: %w", err)
	}
	return ids, nil
}

// AgencyIDsByRegions returns agencies linked to any of the given regions
func (r *PostgresRepository) AgencyIDsByRegions(ctx context.Context, regionIDs []uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT DISTINCT agency_id FROM agency_regions WHERE region_id = ANY($1::uuid[])`
	var ids []uuid.UUID
	if err := r.db.SelectContext(ctx, &ids, query, pq.Array(uuidStrings(regionIDs))); err != nil {
		return nil, fmt.Errorf("failed to fetch agency_regions: %w", err)
	}
	return ids, nil
}

// ListAgencies returns one page of active agencies ordered by name
func (r *PostgresRepository) ListAgencies(ctx context.Context, q model.ListQuery) ([]model.AgencyRow, error) {
	whereClause, args, argIndex := buildAgencyWhere(q)

	selectQuery := fmt.Sprintf(`
		SELECT %s,%s
		FROM agencies a
		WHERE %s
		ORDER BY a.name ASC, a.id ASC
		LIMIT $%d OFFSET $%d
	`, agencyColumns, agencyJoinColumns, whereClause, argIndex, argIndex+1)
	args = append(args, q.Limit, q.Offset)

	var rows []model.AgencyRow
	if err := r.db.SelectContext(ctx, &rows, selectQuery, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch agencies: %w", err)
	}
	return rows, nil
}

// CountAgencies counts active agencies matching the same predicate as ListAgencies
func (r *PostgresRepository) CountAgencies(ctx context.Context, q model.ListQuery) (int, error) {
	whereClause, args, _ := buildAgencyWhere(q)

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM agencies a WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return 0, fmt.Errorf("failed to count agencies: %w", err)
	}
	return total, nil
}

func (r *PostgresRepository) selectIDsIn(ctx context.Context, query string, values []string, table string) ([]uuid.UUID, error) {
	if len(values) == 0 {
		return []uuid.UUID{}, nil
	}
	query, args, err := sqlx.In(query, values)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s lookup: %w", table, err)
	}

	var ids []uuid.UUID
	if err := r.db.SelectContext(ctx, &ids, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", table, err)
	}
	return ids, nil
}

// buildAgencyWhere returns the shared predicate, its args and the next placeholder index
func buildAgencyWhere(q model.ListQuery) (string, []interface{}, int) {
	whereClauses := []string{"a.is_active = true"}
	args := []interface{}{}
	argIndex := 1

	if q.Search != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("(a.name ILIKE $%d OR a.description ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+q.Search+"%")
		argIndex++
	}
	if q.Filter != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("a.id = ANY($%d::uuid[])", argIndex))
		args = append(args, pq.Array(uuidStrings(q.Filter.IDs)))
		argIndex++
	}

	return strings.Join(whereClauses, " AND "), args, argIndex
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
