// internal/engine/engine.go

// Package engine ties the pipeline together: one backend retrieval,
// then pure CPU-bound reranking and explanation. A call either returns
// the full ordered hit list or an error; there are no partial results.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"trademark-engine/internal/backend"
	"trademark-engine/internal/common/logger"
	"trademark-engine/internal/common/metrics"
	"trademark-engine/internal/common/observability"
	"trademark-engine/internal/features"
	"trademark-engine/internal/models"
	"trademark-engine/internal/query"
	"trademark-engine/internal/rerank"
)

// DefaultTimeout bounds the backend retrieval of one analysis call;
// reranking after it does not observe the deadline.
const DefaultTimeout = 5 * time.Second

// Engine is stateless between calls; the config and famous-marks set
// are read-only after construction and may be shared freely.
type Engine struct {
	backend backend.Backend
	cfg     *rerank.Config
	timeout time.Duration
	log     logger.Logger
	obs     *observability.Observability
}

func New(b backend.Backend, cfg *rerank.Config, log logger.Logger) *Engine {
	if cfg == nil {
		cfg = rerank.DefaultConfig()
	}
	return &Engine{
		backend: b,
		cfg:     cfg,
		timeout: DefaultTimeout,
		log:     log.WithFields(map[string]interface{}{"backend": b.Name()}),
	}
}

// WithTimeout overrides the per-call timeout.
func (e *Engine) WithTimeout(d time.Duration) *Engine {
	if d > 0 {
		e.timeout = d
	}
	return e
}

// WithObservability attaches the otel meter; each Analyze call is then
// recorded with its outcome and duration.
func (e *Engine) WithObservability(obs *observability.Observability) *Engine {
	e.obs = obs
	return e
}

// Analyze runs the full reasoning pipeline for one query.
func (e *Engine) Analyze(ctx context.Context, q *models.SearchQuery) ([]models.CandidateHit, error) {
	requestID := uuid.NewString()
	log := e.log.WithFields(map[string]interface{}{
		"requestId": requestID,
		"markText":  q.MarkText,
	})

	// Reject before touching the backend; scenario: empty query must
	// not produce a retrieval request.
	if features.Normalize(q.MarkText) == "" {
		return nil, fmt.Errorf("%w: mark_text is empty after normalization", query.ErrEmptyMarkText)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	candidates, err := e.backend.Search(ctx, q)
	metrics.SearchDuration.WithLabelValues(e.backend.Name()).Observe(time.Since(start).Seconds())
	metrics.SearchesTotal.WithLabelValues(e.backend.Name()).Inc()
	if e.obs != nil {
		e.obs.RecordSearchDuration(ctx, time.Since(start), e.backend.Name())
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && !backend.IsTimeout(err) {
			err = backend.NewTimeout(e.backend.Name(), err)
		}
		if kind, ok := backend.KindOf(err); ok {
			metrics.SearchErrorsTotal.WithLabelValues(e.backend.Name(), string(kind)).Inc()
		}
		if e.obs != nil {
			e.obs.RecordSearch(ctx, e.backend.Name(), "error")
		}
		log.WithError(err).Error("search failed", nil)
		return nil, err
	}

	rerankStart := time.Now()
	hits := rerank.Rerank(q, candidates, e.cfg)
	metrics.RerankDuration.Observe(time.Since(rerankStart).Seconds())
	metrics.CandidatesScored.Add(float64(len(candidates)))
	if e.obs != nil {
		e.obs.RecordSearch(ctx, e.backend.Name(), "success")
	}

	log.Info("analysis complete", map[string]interface{}{
		"candidates": len(candidates),
		"hits":       len(hits),
		"tookMs":     time.Since(start).Milliseconds(),
	})
	return hits, nil
}

// HealthCheck proxies to the configured backend.
func (e *Engine) HealthCheck(ctx context.Context) error {
	return e.backend.HealthCheck(ctx)
}

// BackendName reports which retrieval engine this instance uses.
func (e *Engine) BackendName() string {
	return e.backend.Name()
}
