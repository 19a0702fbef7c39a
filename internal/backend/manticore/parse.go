// internal/backend/manticore/parse.go
package manticore

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"trademark-engine/internal/backend"
	"trademark-engine/internal/models"
)

// sqlResult is one element of the /sql response array.
type sqlResult struct {
	Columns []map[string]json.RawMessage `json:"columns"`
	Data    []map[string]interface{}     `json:"data"`
	Error   string                       `json:"error"`
}

// parseResponse decodes the tabular /sql JSON into candidates. Rows
// missing the identifying fields are dropped rather than failing the
// whole call; a response that is not the expected shape is a Parse
// error.
func parseResponse(body []byte) ([]backend.Candidate, error) {
	var results []sqlResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, backend.NewParse(backendName, err)
	}
	if len(results) == 0 {
		return nil, backend.NewParse(backendName, fmt.Errorf("empty result array"))
	}
	if results[0].Error != "" {
		return nil, backend.NewParse(backendName, fmt.Errorf("engine error: %s", results[0].Error))
	}

	candidates := make([]backend.Candidate, 0, len(results[0].Data))
	for _, row := range results[0].Data {
		record, score, ok := parseRow(row)
		if !ok {
			continue
		}
		candidates = append(candidates, backend.Candidate{Record: record, Score: score})
	}
	return candidates, nil
}

func parseRow(row map[string]interface{}) (models.TrademarkRecord, float64, bool) {
	serial := stringField(row, "serial")
	markText := stringField(row, "mark_text")
	if markText == "" {
		markText = stringField(row, "mark_identification")
	}
	if serial == "" || markText == "" {
		return models.TrademarkRecord{}, 0, false
	}

	record := models.TrademarkRecord{
		Serial:           serial,
		MarkText:         markText,
		Status:           models.ParseStatus(stringField(row, "status")),
		Classes:          models.CanonicalClasses(parseClasses(row["classes"])),
		Owner:            stringField(row, "owner"),
		FilingDate:       parseDate(stringField(row, "filing_date")),
		RegistrationDate: parseDate(stringField(row, "registration_date")),
		GoodsServices:    stringField(row, "goods_services"),
	}

	score := floatField(row, "_score")
	if score == 0 {
		score = floatField(row, "weight()")
	}
	return record, score, true
}

// parseClasses accepts the two shapes the index produces: a JSON array
// of numbers, or a comma-separated string from an MVA column.
func parseClasses(v interface{}) []int {
	switch val := v.(type) {
	case []interface{}:
		out := make([]int, 0, len(val))
		for _, item := range val {
			switch n := item.(type) {
			case float64:
				out = append(out, int(n))
			case string:
				if parsed, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
					out = append(out, parsed)
				}
			}
		}
		return out
	case string:
		if strings.TrimSpace(val) == "" {
			return nil
		}
		parts := strings.Split(val, ",")
		out := make([]int, 0, len(parts))
		for _, part := range parts {
			if parsed, err := strconv.Atoi(strings.TrimSpace(part)); err == nil {
				out = append(out, parsed)
			}
		}
		return out
	case float64:
		return []int{int(val)}
	default:
		return nil
	}
}

func parseDate(s string) *models.Date {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &models.Date{Time: t}
}

func stringField(row map[string]interface{}, key string) string {
	if v, ok := row[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func floatField(row map[string]interface{}, key string) float64 {
	switch v := row[key].(type) {
	case float64:
		return v
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return 0
}
