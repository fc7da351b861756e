package model

import (
	"math"
	"sort"

	"github.com/google/uuid"
)

// QueryDescriptor is the validated, sanitized form of a listing request.
// It is built once per request and never mutated.
type QueryDescriptor struct {
	Search string // empty means no search
	Trades []string
	States []string
	Limit  int
	Offset int
}

// HasFilters reports whether any categorical dimension is applied
func (q QueryDescriptor) HasFilters() bool {
	return len(q.Trades) > 0 || len(q.States) > 0
}

// Range returns the inclusive row range covered by the page. The upper
// bound saturates at math.MaxInt.
func (q QueryDescriptor) Range() (from, to int) {
	span := q.Limit - 1
	if span > 0 && q.Offset > math.MaxInt-span {
		return q.Offset, math.MaxInt
	}
	return q.Offset, q.Offset + span
}

// FilterResult is the set of agency ids satisfying every applied dimension.
// A nil *FilterResult means no dimension was applied.
type FilterResult struct {
	IDs []uuid.UUID
}

// NewFilterResult builds a FilterResult from a set, sorted for stable query args
func NewFilterResult(set map[uuid.UUID]struct{}) *FilterResult {
	ids := make([]uuid.UUID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	return &FilterResult{IDs: ids}
}

// IsEmpty reports whether the filter was applied and matched nothing
func (f *FilterResult) IsEmpty() bool {
	return f != nil && len(f.IDs) == 0
}

// PageMetadata describes the returned page against the full result set
type PageMetadata struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"hasMore"`
}

// ListResponse is the body of a successful listing request
type ListResponse struct {
	Data       []AgencyListing `json:"data"`
	Pagination PageMetadata    `json:"pagination"`
}

// ErrorBody is the payload under "error" in failure responses
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// ErrorResponse is the body of a failed request
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ListQuery is the predicate shared by the listing and count queries, so the
// count always describes the same set the page is cut from
type ListQuery struct {
	Search string
	Filter *FilterResult // nil means unrestricted
	Limit  int
	Offset int
}
