// internal/backend/manticore/manticore.go

// Package manticore is the reference Backend adapter: it speaks the
// Manticore Search HTTP protocol (/sql for retrieval, /cli for health)
// using the Manticore query dialect.
package manticore

import (
	"context"
	"errors"
	"io"
	"net"
	"net/url"
	"time"

	"trademark-engine/internal/backend"
	commonhttp "trademark-engine/internal/common/http"
	"trademark-engine/internal/common/logger"
	"trademark-engine/internal/models"
	"trademark-engine/internal/query"
)

const backendName = "manticore"

// Config holds the adapter settings.
type Config struct {
	BaseURL string
	Table   string
	Timeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		BaseURL: "http://127.0.0.1:9308",
		Table:   "trademarks",
		Timeout: 30 * time.Second,
	}
}

// Backend is stateless above the shared HTTP client; it is safe for
// concurrent use.
type Backend struct {
	cfg     Config
	httpc   *commonhttp.Client
	dialect *query.ManticoreDialect
	log     logger.Logger
}

func New(cfg Config, log logger.Logger) *Backend {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultConfig().BaseURL
	}
	return &Backend{
		cfg:     cfg,
		httpc:   commonhttp.NewClient(),
		dialect: query.NewManticoreDialect(cfg.Table),
		log:     log.WithFields(map[string]interface{}{"backend": backendName}),
	}
}

func (b *Backend) Name() string { return backendName }

func (b *Backend) Search(ctx context.Context, q *models.SearchQuery) ([]backend.Candidate, error) {
	stmt, err := b.dialect.Translate(q)
	if err != nil {
		return nil, err
	}
	sqlText, err := stmt.Render()
	if err != nil {
		return nil, err
	}

	if b.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.cfg.Timeout)
		defer cancel()
	}

	b.log.Debug("executing search", map[string]interface{}{"sql": sqlText})

	resp, err := b.httpc.PostForm(ctx, b.cfg.BaseURL+"/sql?mode=raw", url.Values{"query": {sqlText}})
	if err != nil {
		return nil, b.transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, backend.NewBadStatus(backendName, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, backend.NewUnreachable(backendName, err)
	}

	candidates, err := parseResponse(body)
	if err != nil {
		return nil, err
	}

	b.log.Debug("search complete", map[string]interface{}{"candidates": len(candidates)})
	return candidates, nil
}

func (b *Backend) HealthCheck(ctx context.Context) error {
	resp, err := b.httpc.PostRaw(ctx, b.cfg.BaseURL+"/cli", "SHOW STATUS")
	if err != nil {
		return b.transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return backend.NewUnavailable(backendName, nil)
	}
	return nil
}

// transportError maps an HTTP client failure to a backend error kind.
func (b *Backend) transportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return backend.NewTimeout(backendName, err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return backend.NewTimeout(backendName, err)
	}
	return backend.NewUnreachable(backendName, err)
}
