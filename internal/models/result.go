package models

// SearchHit is a single ranked search result.
type SearchHit struct {
	ID      uint64  `json:"id"`
	Score   float32 `json:"score"`
	Content string  `json:"content"`
}

// SearchResponse is the response for a search request. Results are best-first.
type SearchResponse struct {
	Query     string       `json:"query"`
	Results   []*SearchHit `json:"results"`
	Total     int          `json:"total"`
	QueryTime int64        `json:"query_time_ms"`
}

// ListResponse is one unordered page of stored documents.
type ListResponse struct {
	Documents []*Document `json:"documents"`
	Total     int         `json:"total"`
	Limit     int         `json:"limit"`
}

// StatusResponse describes the backing collection and whether it is reachable.
type StatusResponse struct {
	Status      string `json:"status"`
	Backend     string `json:"backend"`
	Collection  string `json:"collection"`
	Dimensions  int    `json:"dimensions"`
	Distance    string `json:"distance"`
	SearchLimit int    `json:"search_limit"`
	ListLimit   int    `json:"list_limit"`
	Error       string `json:"error,omitempty"`
}
