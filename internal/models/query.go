package models

// SearchQuery is a search request. Query text may be empty; the embedder still
// produces a vector for it.
type SearchQuery struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// Normalize applies defaultLimit when Limit is unset and caps it at maxLimit.
func (q *SearchQuery) Normalize(defaultLimit, maxLimit int) {
	q.Limit = ClampLimit(q.Limit, defaultLimit, maxLimit)
}

// ClampLimit returns defaultLimit for non-positive limits and caps the result at maxLimit.
// A non-positive maxLimit disables the cap.
func ClampLimit(limit, defaultLimit, maxLimit int) int {
	if limit <= 0 {
		limit = defaultLimit
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	return limit
}
