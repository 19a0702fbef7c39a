// internal/backend/postgres/postgres.go

// Package postgres backs the retrieval contract with PostgreSQL
// full-text search. Candidate ranking comes from ts_rank; the
// parameterized SQL is produced by the Postgres query dialect.
package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"trademark-engine/internal/backend"
	"trademark-engine/internal/common/logger"
	"trademark-engine/internal/models"
	"trademark-engine/internal/query"
)

const backendName = "postgres"

type Backend struct {
	db      *sql.DB
	dialect *query.PostgresDialect
	log     logger.Logger
}

func New(db *sql.DB, table string, log logger.Logger) *Backend {
	return &Backend{
		db:      db,
		dialect: query.NewPostgresDialect(table),
		log:     log.WithFields(map[string]interface{}{"backend": backendName}),
	}
}

func (b *Backend) Name() string { return backendName }

func (b *Backend) Search(ctx context.Context, q *models.SearchQuery) ([]backend.Candidate, error) {
	stmt, err := b.dialect.Translate(q)
	if err != nil {
		return nil, err
	}

	rows, err := b.db.QueryContext(ctx, stmt.SQL, adaptParams(stmt.Params)...)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, backend.NewTimeout(backendName, err)
		}
		return nil, backend.NewUnreachable(backendName, err)
	}
	defer rows.Close()

	var candidates []backend.Candidate
	for rows.Next() {
		var (
			serial, markText, status string
			classes                  pq.Int64Array
			owner, goods             sql.NullString
			score                    float64
		)
		if err := rows.Scan(&serial, &markText, &status, &classes, &owner, &goods, &score); err != nil {
			return nil, backend.NewParse(backendName, err)
		}
		intClasses := make([]int, len(classes))
		for i, c := range classes {
			intClasses[i] = int(c)
		}
		candidates = append(candidates, backend.Candidate{
			Record: models.TrademarkRecord{
				Serial:        serial,
				MarkText:      markText,
				Status:        models.ParseStatus(status),
				Classes:       models.CanonicalClasses(intClasses),
				Owner:         owner.String,
				GoodsServices: goods.String,
			},
			Score: score,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, backend.NewParse(backendName, err)
	}
	return candidates, nil
}

func (b *Backend) HealthCheck(ctx context.Context) error {
	if err := b.db.PingContext(ctx); err != nil {
		return backend.NewUnavailable(backendName, err)
	}
	return nil
}

// adaptParams wraps slice parameters for the pq driver.
func adaptParams(params []interface{}) []interface{} {
	out := make([]interface{}, len(params))
	for i, p := range params {
		switch v := p.(type) {
		case []string:
			out[i] = pq.Array(v)
		case []int64:
			out[i] = pq.Array(v)
		default:
			out[i] = p
		}
	}
	return out
}
