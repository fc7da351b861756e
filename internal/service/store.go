package service

import (
	"context"
	"errors"

	"agencysearch/internal/model"

	"github.com/google/uuid"
)

// ErrStoreNotConfigured is returned when the service was built without a store
var ErrStoreNotConfigured = errors.New("data store is not configured")

// Store is the relational query surface the directory reads from
type Store interface {
	TradeIDsBySlugs(ctx context.Context, slugs []string) ([]uuid.UUID, error)
	RegionIDsByCodes(ctx context.Context, codes []string) ([]uuid.UUID, error)
	AgencyIDsByTrades(ctx context.Context, tradeIDs []uuid.UUID) ([]uuid.UUID, error)
	AgencyIDsByRegions(ctx context.Context, regionIDs []uuid.UUID) ([]uuid.UUID, error)
	ListAgencies(ctx context.Context, q model.ListQuery) ([]model.AgencyRow, error)
	CountAgencies(ctx context.Context, q model.ListQuery) (int, error)
	Ping(ctx context.Context) error
}
