// internal/models/query.go
package models

import "strings"

// DefaultLimit bounds a query that does not ask for a specific size.
const DefaultLimit = 100

// SearchQuery is the neutral retrieval intent handed to a backend.
// It carries no backend-specific syntax; translation is the job of the
// query dialects.
type SearchQuery struct {
	MarkText string `json:"mark_text"`
	Classes  []int  `json:"classes,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Phonetic bool   `json:"phonetic"`
	Fuzzy    bool   `json:"fuzzy"`

	// StatusFilter narrows candidates to the listed statuses.
	// Empty means live-only.
	StatusFilter []TrademarkStatus `json:"status_filter,omitempty"`
}

// NewSearchQuery builds a query with the documented defaults: limit 100,
// phonetic and fuzzy matching enabled, live-only status filtering.
func NewSearchQuery(markText string) *SearchQuery {
	return &SearchQuery{
		MarkText: strings.TrimSpace(markText),
		Limit:    DefaultLimit,
		Phonetic: true,
		Fuzzy:    true,
	}
}

func (q *SearchQuery) WithClasses(classes ...int) *SearchQuery {
	q.Classes = CanonicalClasses(classes)
	return q
}

func (q *SearchQuery) WithLimit(limit int) *SearchQuery {
	q.Limit = limit
	return q
}

func (q *SearchQuery) WithStatusFilter(statuses ...TrademarkStatus) *SearchQuery {
	q.StatusFilter = statuses
	return q
}

// EffectiveStatusFilter resolves the status filter, defaulting to
// live-only when none was given.
func (q *SearchQuery) EffectiveStatusFilter() []TrademarkStatus {
	if len(q.StatusFilter) == 0 {
		return []TrademarkStatus{StatusLive}
	}
	return q.StatusFilter
}
