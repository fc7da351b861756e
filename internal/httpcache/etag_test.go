package httpcache

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type page struct {
	Data  []string `json:"data"`
	Total int      `json:"total"`
}

func TestEncode_Deterministic(t *testing.T) {
	body1, etag1, err := Encode(page{Data: []string{"a", "b"}, Total: 2})
	require.NoError(t, err)
	body2, etag2, err := Encode(page{Data: []string{"a", "b"}, Total: 2})
	require.NoError(t, err)

	assert.Equal(t, body1, body2)
	assert.Equal(t, etag1, etag2)
	assert.True(t, strings.HasPrefix(etag1, `"`) && strings.HasSuffix(etag1, `"`))
	assert.Len(t, etag1, 66)

	_, etag3, err := Encode(page{Data: []string{"b", "a"}, Total: 2})
	require.NoError(t, err)
	assert.NotEqual(t, etag1, etag3)
}

func TestNegotiate(t *testing.T) {
	etag := Fingerprint([]byte(`{"data":[]}`))

	tests := []struct {
		name        string
		ifNoneMatch string
		want        bool
	}{
		{name: "Exact match", ifNoneMatch: etag, want: true},
		{name: "No header", ifNoneMatch: "", want: false},
		{name: "Different token", ifNoneMatch: `"abc"`, want: false},
		{name: "Weak prefix is not byte-equal", ifNoneMatch: "W/" + etag, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Negotiate(tt.ifNoneMatch, etag))
		})
	}
}

func TestHeaders(t *testing.T) {
	h := http.Header{}
	SetCacheable(h, `"x"`, 300)
	assert.Equal(t, `"x"`, h.Get("ETag"))
	assert.Equal(t, "public, max-age=300, must-revalidate", h.Get("Cache-Control"))

	SetNoCache(h)
	assert.Equal(t, "no-store, no-cache, must-revalidate", h.Get("Cache-Control"))
	assert.Equal(t, "no-cache", h.Get("Pragma"))
	assert.Equal(t, "0", h.Get("Expires"))
	assert.Empty(t, h.Get("ETag"))
}
