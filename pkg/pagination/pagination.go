package pagination

import (
	"fmt"
	"net/http"
	"strconv"
)

// Params holds the list window requested through the query string.
// A zero Limit means "everything".
type Params struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// FromRequest reads ?limit= and ?offset=. Limits above maxLimit are clamped;
// maxLimit <= 0 disables clamping. Non-numeric or negative values are
// rejected so callers can answer 400.
func FromRequest(r *http.Request, maxLimit int) (Params, error) {
	var p Params
	q := r.URL.Query()

	if raw := q.Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return Params{}, fmt.Errorf("limit must be a non-negative integer, got %q", raw)
		}
		p.Limit = v
	}
	if maxLimit > 0 && p.Limit > maxLimit {
		p.Limit = maxLimit
	}

	if raw := q.Get("offset"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return Params{}, fmt.Errorf("offset must be a non-negative integer, got %q", raw)
		}
		p.Offset = v
	}

	return p, nil
}

// Apply returns the window of items selected by p.
func Apply[T any](items []T, p Params) []T {
	if p.Offset >= len(items) {
		return items[:0]
	}
	items = items[p.Offset:]
	if p.Limit > 0 && p.Limit < len(items) {
		items = items[:p.Limit]
	}
	return items
}
