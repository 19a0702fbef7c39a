// internal/query/manticore.go
package query

import (
	"fmt"
	"strings"

	"trademark-engine/internal/features"
	"trademark-engine/internal/models"
)

// matchEscaper neutralizes full-text operators so user text can never
// change the meaning of a MATCH expression.
var matchEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`!`, `\!`,
	`|`, `\|`,
	`@`, `\@`,
	`~`, `\~`,
	`/`, `\/`,
	`(`, `\(`,
	`)`, `\)`,
)

// EscapeMatch escapes a string for use inside a Manticore MATCH()
// expression.
func EscapeMatch(s string) string {
	return matchEscaper.Replace(s)
}

// ManticoreDialect produces Manticore SQL statements. When the target
// table carries a phonetic_codes field, PhoneticExpansion widens the
// MATCH expression with the query's own phonetic codes; otherwise
// phonetic recall is left to the reranker.
type ManticoreDialect struct {
	Table             string
	PhoneticExpansion bool
}

func NewManticoreDialect(table string) *ManticoreDialect {
	if table == "" {
		table = "trademarks"
	}
	return &ManticoreDialect{Table: table}
}

func (d *ManticoreDialect) Name() string { return "manticore" }

func (d *ManticoreDialect) Translate(q *models.SearchQuery) (*Statement, error) {
	if features.Normalize(q.MarkText) == "" {
		return nil, fmt.Errorf("%w: mark_text is empty after normalization", ErrEmptyMarkText)
	}
	limit, err := ResolveLimit(q.Limit)
	if err != nil {
		return nil, err
	}

	var (
		conds  []string
		params []interface{}
	)

	conds = append(conds, "MATCH(?)")
	params = append(params, d.matchExpression(q))

	statuses := q.EffectiveStatusFilter()
	holes := make([]string, len(statuses))
	for i, st := range statuses {
		holes[i] = "?"
		params = append(params, string(st))
	}
	conds = append(conds, fmt.Sprintf("status IN (%s)", strings.Join(holes, ", ")))

	if len(q.Classes) > 0 {
		holes = make([]string, len(q.Classes))
		for i, c := range q.Classes {
			holes[i] = "?"
			params = append(params, c)
		}
		conds = append(conds, fmt.Sprintf("classes IN (%s)", strings.Join(holes, ", ")))
	}

	sql := fmt.Sprintf(
		"SELECT serial, mark_text, status, classes, owner, filing_date, registration_date, goods_services, WEIGHT() AS _score FROM %s WHERE %s ORDER BY _score DESC LIMIT %d",
		d.Table, strings.Join(conds, " AND "), limit,
	)
	return &Statement{SQL: sql, Params: params}, nil
}

// matchExpression builds the MATCH argument. The plain form is the
// escaped mark text with no field restriction; the widened form limits
// it to the mark_text field and ORs in the query's phonetic codes
// against the phonetic_codes field.
func (d *ManticoreDialect) matchExpression(q *models.SearchQuery) string {
	escaped := EscapeMatch(strings.TrimSpace(q.MarkText))
	if !q.Phonetic || !d.PhoneticExpansion {
		return escaped
	}
	codes := features.PhoneticCodes(q.MarkText)
	if len(codes) == 0 {
		return escaped
	}
	terms := make([]string, len(codes))
	for i, c := range codes {
		terms[i] = c.Code
	}
	return fmt.Sprintf("@mark_text %s | @phonetic_codes (%s)", escaped, strings.Join(terms, " | "))
}
