package service

import (
	"context"
	"errors"
	"testing"

	"agencysearch/internal/apperr"
	"agencysearch/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterResolver_NoFilters(t *testing.T) {
	fx := newDirectoryFixture()
	f, _ := newTestFetcher(DefaultRetryPolicy)
	r := NewFilterResolver(fx.store, f)

	got, err := r.Resolve(context.Background(), model.QueryDescriptor{Search: "acme", Limit: 20}, nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	for _, method := range []string{"TradeIDsBySlugs", "RegionIDsByCodes", "AgencyIDsByTrades", "AgencyIDsByRegions"} {
		assert.Zero(t, fx.store.count(method), method)
	}
}

func TestFilterResolver_SingleDimension(t *testing.T) {
	fx := newDirectoryFixture()
	f, _ := newTestFetcher(DefaultRetryPolicy)
	r := NewFilterResolver(fx.store, f)

	got, err := r.Resolve(context.Background(), model.QueryDescriptor{Trades: []string{"welders"}, Limit: 20}, nil)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.ElementsMatch(t, []uuid.UUID{fx.acme, fx.zeta}, got.IDs)
	assert.Zero(t, fx.store.count("RegionIDsByCodes"))
}

func TestFilterResolver_OrWithinDimension(t *testing.T) {
	fx := newDirectoryFixture()
	f, _ := newTestFetcher(DefaultRetryPolicy)
	r := NewFilterResolver(fx.store, f)

	got, err := r.Resolve(context.Background(), model.QueryDescriptor{States: []string{"TX", "OH"}, Limit: 20}, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{fx.acme, fx.bolt, fx.zeta, fx.ghost}, got.IDs)
}

func TestFilterResolver_IntersectsDimensions(t *testing.T) {
	fx := newDirectoryFixture()
	f, _ := newTestFetcher(DefaultRetryPolicy)
	r := NewFilterResolver(fx.store, f)

	got, err := r.Resolve(context.Background(), model.QueryDescriptor{
		Trades: []string{"electricians"},
		States: []string{"TX"},
		Limit:  20,
	}, nil)
	require.NoError(t, err)
	// ghost is linked but inactive; activity is applied by the listing query
	assert.ElementsMatch(t, []uuid.UUID{fx.acme, fx.ghost}, got.IDs)
}

func TestFilterResolver_UnknownTradeShortCircuits(t *testing.T) {
	fx := newDirectoryFixture()
	f, _ := newTestFetcher(DefaultRetryPolicy)
	r := NewFilterResolver(fx.store, f)

	got, err := r.Resolve(context.Background(), model.QueryDescriptor{
		Trades: []string{"astronauts"},
		States: []string{"TX"},
		Limit:  20,
	}, nil)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.IsEmpty())

	assert.Zero(t, fx.store.count("AgencyIDsByTrades"))
	assert.Zero(t, fx.store.count("AgencyIDsByRegions"))
}

func TestFilterResolver_DisjointDimensions(t *testing.T) {
	fx := newDirectoryFixture()
	f, _ := newTestFetcher(DefaultRetryPolicy)
	r := NewFilterResolver(fx.store, f)

	got, err := r.Resolve(context.Background(), model.QueryDescriptor{
		Trades: []string{"welders"},
		States: []string{"OH"},
		Limit:  20,
	}, nil)
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
}

func TestFilterResolver_LookupErrorIsFatal(t *testing.T) {
	fx := newDirectoryFixture()
	fx.store.failWith("AgencyIDsByRegions", errors.New("relation agency_regions does not exist"))
	f, _ := newTestFetcher(DefaultRetryPolicy)
	r := NewFilterResolver(fx.store, f)

	got, err := r.Resolve(context.Background(), model.QueryDescriptor{
		Trades: []string{"electricians"},
		States: []string{"TX"},
		Limit:  20,
	}, nil)
	require.Error(t, err)
	assert.Nil(t, got)
	assert.True(t, apperr.IsKind(err, apperr.KindDatabase))
}

func TestFilterResolver_RetriesTransientLookup(t *testing.T) {
	fx := newDirectoryFixture()
	fx.store.failWith("TradeIDsBySlugs", errors.New("connection reset by peer"))
	f, delays := newTestFetcher(DefaultRetryPolicy)
	r := NewFilterResolver(fx.store, f)

	got, err := r.Resolve(context.Background(), model.QueryDescriptor{Trades: []string{"electricians"}, Limit: 20}, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{fx.acme, fx.bolt, fx.ghost}, got.IDs)
	assert.Equal(t, 2, fx.store.count("TradeIDsBySlugs"))
	assert.Len(t, *delays, 1)
}
