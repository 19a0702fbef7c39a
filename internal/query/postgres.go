// internal/query/postgres.go
package query

import (
	"fmt"
	"strings"

	"trademark-engine/internal/features"
	"trademark-engine/internal/models"
)

// PostgresDialect produces parameterized full-text SQL ($n
// placeholders, never interpolated) for the Postgres adapter. Class and
// status parameters are emitted as plain slices; the adapter wraps them
// for the driver.
type PostgresDialect struct {
	Table string
}

func NewPostgresDialect(table string) *PostgresDialect {
	if table == "" {
		table = "trademarks"
	}
	return &PostgresDialect{Table: table}
}

func (d *PostgresDialect) Name() string { return "postgres" }

func (d *PostgresDialect) Translate(q *models.SearchQuery) (*Statement, error) {
	if features.Normalize(q.MarkText) == "" {
		return nil, fmt.Errorf("%w: mark_text is empty after normalization", ErrEmptyMarkText)
	}
	limit, err := ResolveLimit(q.Limit)
	if err != nil {
		return nil, err
	}

	params := []interface{}{strings.TrimSpace(q.MarkText)}
	conds := []string{
		"to_tsvector('simple', mark_text) @@ plainto_tsquery('simple', $1)",
	}

	statuses := q.EffectiveStatusFilter()
	strs := make([]string, len(statuses))
	for i, st := range statuses {
		strs[i] = string(st)
	}
	params = append(params, strs)
	conds = append(conds, fmt.Sprintf("status = ANY($%d)", len(params)))

	if len(q.Classes) > 0 {
		classes := make([]int64, len(q.Classes))
		for i, c := range q.Classes {
			classes[i] = int64(c)
		}
		params = append(params, classes)
		conds = append(conds, fmt.Sprintf("classes && $%d", len(params)))
	}

	params = append(params, limit)
	sql := fmt.Sprintf(
		"SELECT serial, mark_text, status, classes, owner, goods_services, ts_rank(to_tsvector('simple', mark_text), plainto_tsquery('simple', $1)) AS score FROM %s WHERE %s ORDER BY score DESC LIMIT $%d",
		d.Table, strings.Join(conds, " AND "), len(params),
	)
	return &Statement{SQL: sql, Params: params}, nil
}
