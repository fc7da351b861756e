// Package httpcache computes response fingerprints and applies the cache
// headers of the listing endpoint.
package httpcache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
)

// Fingerprint returns a strong ETag over body
func Fingerprint(body []byte) string {
	sum := sha256.Sum256(body)
	return `"` + hex.EncodeToString(sum[:]) + `"`
}

// Encode serializes v canonically and fingerprints the bytes. v must be built
// from structs and slices only, so field order is fixed.
func Encode(v interface{}) ([]byte, string, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode response: %w", err)
	}
	return body, Fingerprint(body), nil
}

// Negotiate reports whether the client's cached copy is current. The
// comparison is byte-for-byte.
func Negotiate(ifNoneMatch, etag string) bool {
	return ifNoneMatch != "" && ifNoneMatch == etag
}

// PublicDirective returns the Cache-Control value for cacheable responses
func PublicDirective(maxAgeSeconds int) string {
	return fmt.Sprintf("public, max-age=%d, must-revalidate", maxAgeSeconds)
}

// SetCacheable applies the headers shared by 200 and 304 responses
func SetCacheable(h http.Header, etag string, maxAgeSeconds int) {
	h.Set("ETag", etag)
	h.Set("Cache-Control", PublicDirective(maxAgeSeconds))
}

// SetNoCache marks a response as never cacheable, for error paths
func SetNoCache(h http.Header) {
	h.Set("Cache-Control", "no-store, no-cache, must-revalidate")
	h.Set("Pragma", "no-cache")
	h.Set("Expires", "0")
	h.Del("ETag")
}
