// internal/backend/elastic/queries.go
package elastic

import (
	"strings"

	"trademark-engine/internal/models"
)

// buildSearchBody assembles the bool query for candidate retrieval.
// Fuzziness widens recall when the query asks for it; status and class
// narrowing happen as filters so they do not affect scoring.
func buildSearchBody(q *models.SearchQuery, limit int) map[string]interface{} {
	match := map[string]interface{}{
		"query": strings.TrimSpace(q.MarkText),
	}
	if q.Fuzzy {
		match["fuzziness"] = "AUTO"
	}

	filters := []interface{}{}

	statuses := q.EffectiveStatusFilter()
	statusTerms := make([]string, len(statuses))
	for i, st := range statuses {
		statusTerms[i] = string(st)
	}
	filters = append(filters, map[string]interface{}{
		"terms": map[string]interface{}{"status": statusTerms},
	})

	if len(q.Classes) > 0 {
		filters = append(filters, map[string]interface{}{
			"terms": map[string]interface{}{"classes": q.Classes},
		})
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": []interface{}{
					map[string]interface{}{
						"match": map[string]interface{}{"mark_text": match},
					},
				},
				"filter": filters,
			},
		},
		"size": limit,
	}
}
