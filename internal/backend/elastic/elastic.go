// internal/backend/elastic/elastic.go

// Package elastic is a second concrete Backend over Elasticsearch,
// kept contract-compatible with the reference adapter so retrieval
// engines can be A/B compared by name.
package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"

	"trademark-engine/internal/backend"
	"trademark-engine/internal/common/logger"
	"trademark-engine/internal/features"
	"trademark-engine/internal/models"
	"trademark-engine/internal/query"
)

const backendName = "elasticsearch"

type Config struct {
	Addresses []string
	Username  string
	Password  string
	Index     string
}

type Backend struct {
	client *elasticsearch.Client
	index  string
	log    logger.Logger
}

func New(cfg Config, log logger.Logger) (*Backend, error) {
	esCfg := elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	}
	client, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}
	return NewWithClient(client, cfg.Index, log), nil
}

// NewWithClient wraps an existing client; tests inject one with a
// canned transport.
func NewWithClient(client *elasticsearch.Client, index string, log logger.Logger) *Backend {
	if index == "" {
		index = "trademarks"
	}
	return &Backend{
		client: client,
		index:  index,
		log:    log.WithFields(map[string]interface{}{"backend": backendName}),
	}
}

func (b *Backend) Name() string { return backendName }

func (b *Backend) Search(ctx context.Context, q *models.SearchQuery) ([]backend.Candidate, error) {
	if features.Normalize(q.MarkText) == "" {
		return nil, fmt.Errorf("%w: mark_text is empty after normalization", query.ErrEmptyMarkText)
	}
	limit, err := query.ResolveLimit(q.Limit)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(buildSearchBody(q, limit))
	if err != nil {
		return nil, backend.NewParse(backendName, err)
	}

	res, err := b.client.Search(
		b.client.Search.WithContext(ctx),
		b.client.Search.WithIndex(b.index),
		b.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return nil, backend.NewTimeout(backendName, err)
		}
		return nil, backend.NewUnreachable(backendName, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, backend.NewBadStatus(backendName, res.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, backend.NewParse(backendName, err)
	}

	candidates := make([]backend.Candidate, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		var record models.TrademarkRecord
		if err := json.Unmarshal(hit.Source, &record); err != nil {
			return nil, backend.NewParse(backendName, err)
		}
		candidates = append(candidates, backend.Candidate{Record: record, Score: hit.Score})
	}
	return candidates, nil
}

func (b *Backend) HealthCheck(ctx context.Context) error {
	res, err := b.client.Info(b.client.Info.WithContext(ctx))
	if err != nil {
		return backend.NewUnreachable(backendName, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return backend.NewUnavailable(backendName, fmt.Errorf("info returned %s", res.Status()))
	}
	return nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Score  float64         `json:"_score"`
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}
