package elastic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trademark-engine/internal/backend"
	"trademark-engine/internal/common/logger"
	"trademark-engine/internal/models"
	"trademark-engine/internal/query"
)

// cannedTransport serves fixed responses so the adapter can be tested
// without a live cluster.
type cannedTransport struct {
	status   int
	body     string
	err      error
	requests []*http.Request
	bodies   []string
}

func (t *cannedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.requests = append(t.requests, req)
	if req.Body != nil {
		data, _ := io.ReadAll(req.Body)
		t.bodies = append(t.bodies, string(data))
	}
	if t.err != nil {
		return nil, t.err
	}
	header := http.Header{}
	header.Set("X-Elastic-Product", "Elasticsearch")
	header.Set("Content-Type", "application/json")
	return &http.Response{
		StatusCode: t.status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(t.body)),
	}, nil
}

func newTestBackend(t *testing.T, transport *cannedTransport) *Backend {
	client, err := elasticsearch.NewClient(elasticsearch.Config{Transport: transport})
	require.NoError(t, err)
	return NewWithClient(client, "trademarks", logger.NewTestLogger(t))
}

const sampleSearchResponse = `{
	"took": 3,
	"hits": {
		"total": {"value": 2},
		"hits": [
			{
				"_score": 4.2,
				"_source": {
					"serial": "87654321",
					"mark_text": "NIKE",
					"status": "live",
					"classes": [25, 35]
				}
			},
			{
				"_score": 1.7,
				"_source": {
					"serial": "12345678",
					"mark_text": "NYKE",
					"status": "pending",
					"classes": [25]
				}
			}
		]
	}
}`

func TestSearch_ParsesHits(t *testing.T) {
	transport := &cannedTransport{status: http.StatusOK, body: sampleSearchResponse}
	b := newTestBackend(t, transport)

	q := models.NewSearchQuery("NIKE").WithClasses(25)
	candidates, err := b.Search(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	assert.Equal(t, "87654321", candidates[0].Record.Serial)
	assert.Equal(t, models.StatusLive, candidates[0].Record.Status)
	assert.Equal(t, []int{25, 35}, candidates[0].Record.Classes)
	assert.Equal(t, 4.2, candidates[0].Score)
	assert.Equal(t, "NYKE", candidates[1].Record.MarkText)

	// the request body carries the bool query with filters
	require.NotEmpty(t, transport.bodies)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(transport.bodies[0]), &body))
	assert.Contains(t, transport.bodies[0], `"mark_text"`)
	assert.Contains(t, transport.bodies[0], `"fuzziness":"AUTO"`)
	assert.Contains(t, transport.bodies[0], `"LIVE"`)
}

func TestSearch_FuzzinessGatedOnQuery(t *testing.T) {
	transport := &cannedTransport{status: http.StatusOK, body: sampleSearchResponse}
	b := newTestBackend(t, transport)

	q := models.NewSearchQuery("NIKE")
	q.Fuzzy = false
	_, err := b.Search(context.Background(), q)
	require.NoError(t, err)
	assert.NotContains(t, transport.bodies[0], "fuzziness")
}

func TestSearch_BadStatus(t *testing.T) {
	transport := &cannedTransport{status: http.StatusInternalServerError, body: `{"error": "boom"}`}
	b := newTestBackend(t, transport)

	_, err := b.Search(context.Background(), models.NewSearchQuery("NIKE"))
	kind, ok := backend.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, backend.KindBadStatus, kind)
}

func TestSearch_ParseFailure(t *testing.T) {
	transport := &cannedTransport{status: http.StatusOK, body: `{"hits": {"hits": [{"_source": {"mark_text": "NO SERIAL"}}]}}`}
	b := newTestBackend(t, transport)

	_, err := b.Search(context.Background(), models.NewSearchQuery("NIKE"))
	kind, ok := backend.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, backend.KindParse, kind)
}

func TestSearch_EmptyQueryRejectedLocally(t *testing.T) {
	transport := &cannedTransport{status: http.StatusOK, body: sampleSearchResponse}
	b := newTestBackend(t, transport)

	_, err := b.Search(context.Background(), models.NewSearchQuery(" "))
	assert.ErrorIs(t, err, query.ErrEmptyMarkText)
	assert.Empty(t, transport.requests)
}

func TestHealthCheck(t *testing.T) {
	transport := &cannedTransport{status: http.StatusOK, body: `{"version": {"number": "8.11.0"}}`}
	b := newTestBackend(t, transport)
	assert.NoError(t, b.HealthCheck(context.Background()))

	transport.status = http.StatusServiceUnavailable
	err := b.HealthCheck(context.Background())
	kind, ok := backend.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, backend.KindUnavailable, kind)
}

func TestName(t *testing.T) {
	b := newTestBackend(t, &cannedTransport{status: http.StatusOK, body: "{}"})
	assert.Equal(t, "elasticsearch", b.Name())
}
