package service

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"agencysearch/internal/apperr"
	"agencysearch/internal/model"
	"agencysearch/internal/utils"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Limits bounds the listing query parameters
type Limits struct {
	DefaultLimit    int
	MaxLimit        int
	MaxFilterValues int
	MaxSearchLength int
}

// DefaultLimits mirrors the config defaults
var DefaultLimits = Limits{
	DefaultLimit:    20,
	MaxLimit:        100,
	MaxFilterValues: 10,
	MaxSearchLength: 200,
}

// ParseListQuery validates raw query parameters and builds the request's
// QueryDescriptor, sanitizing the search term. It performs no I/O; every
// rejected field is reported in one INVALID_PARAMS error.
func ParseListQuery(values url.Values, limits Limits) (model.QueryDescriptor, error) {
	var fieldErrs []apperr.FieldError
	q := model.QueryDescriptor{
		Limit:  limits.DefaultLimit,
		Offset: 0,
	}

	if raw, ok := firstValue(values, "limit"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		switch {
		case err != nil:
			fieldErrs = append(fieldErrs, apperr.FieldError{Field: "limit", Value: raw, Reason: "must be an integer"})
		case validate.Var(n, fmt.Sprintf("min=1,max=%d", limits.MaxLimit)) != nil:
			fieldErrs = append(fieldErrs, apperr.FieldError{Field: "limit", Value: raw, Reason: fmt.Sprintf("must be between 1 and %d", limits.MaxLimit)})
		default:
			q.Limit = n
		}
	}

	if raw, ok := firstValue(values, "offset"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		switch {
		case err != nil:
			fieldErrs = append(fieldErrs, apperr.FieldError{Field: "offset", Value: raw, Reason: "must be an integer"})
		case validate.Var(n, "min=0") != nil:
			fieldErrs = append(fieldErrs, apperr.FieldError{Field: "offset", Value: raw, Reason: "must be at least 0"})
		default:
			q.Offset = n
		}
	}

	trades := multiValues(values, "trades")
	if len(trades) > limits.MaxFilterValues {
		fieldErrs = append(fieldErrs, apperr.FieldError{
			Field:  "trades",
			Value:  strings.Join(trades, ","),
			Reason: fmt.Sprintf("at most %d values allowed", limits.MaxFilterValues),
		})
	} else {
		q.Trades = trades
	}

	states := multiValues(values, "states")
	if len(states) > limits.MaxFilterValues {
		fieldErrs = append(fieldErrs, apperr.FieldError{
			Field:  "states",
			Value:  strings.Join(states, ","),
			Reason: fmt.Sprintf("at most %d values allowed", limits.MaxFilterValues),
		})
	} else {
		codes := make([]string, 0, len(states))
		valid := true
		for i, s := range states {
			code := strings.ToUpper(s)
			if err := validate.Var(code, "len=2,alpha"); err != nil {
				valid = false
				fieldErrs = append(fieldErrs, apperr.FieldError{
					Field:  fmt.Sprintf("states[%d]", i),
					Value:  s,
					Reason: "must be a two-letter state code",
				})
				continue
			}
			codes = append(codes, code)
		}
		if valid {
			q.States = utils.DedupeStrings(codes)
		}
	}

	search := values.Get("search")
	if limits.MaxSearchLength > 0 && utf8.RuneCountInString(search) > limits.MaxSearchLength {
		fieldErrs = append(fieldErrs, apperr.FieldError{
			Field:  "search",
			Value:  search,
			Reason: fmt.Sprintf("must be at most %d characters", limits.MaxSearchLength),
		})
	}

	if len(fieldErrs) > 0 {
		return model.QueryDescriptor{}, apperr.Invalid(fieldErrs...)
	}

	q.Search = utils.SanitizeSearch(search)
	return q, nil
}

func firstValue(values url.Values, key string) (string, bool) {
	vs, ok := values[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

// multiValues merges "key[]" and "key" parameters, trimming entries and
// dropping empties and repeats
func multiValues(values url.Values, key string) []string {
	raw := append(append([]string{}, values[key+"[]"]...), values[key]...)
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return utils.DedupeStrings(out)
}
