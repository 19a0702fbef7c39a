package elastic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trademark-engine/internal/common/logger"
	"trademark-engine/internal/models"
)

// Tests below run against a real local cluster and skip when none is
// reachable.

func createRealElasticsearchClient(t *testing.T) *elasticsearch.Client {
	cfg := elasticsearch.Config{
		Addresses: []string{"http://localhost:9200"},
	}

	esClient, err := elasticsearch.NewClient(cfg)
	if err != nil {
		t.Skipf("Skipping test: Failed to create Elasticsearch client: %v", err)
		return nil
	}

	res, err := esClient.Info()
	if err != nil {
		t.Skipf("Skipping test: Elasticsearch container not responding: %v", err)
		return nil
	}
	defer res.Body.Close()

	if res.IsError() {
		t.Skipf("Skipping test: Elasticsearch error: %s", res.String())
		return nil
	}

	return esClient
}

func setupTrademarkIndex(t *testing.T, esClient *elasticsearch.Client) {
	esClient.Indices.Delete([]string{"trademarks"}, esClient.Indices.Delete.WithIgnoreUnavailable(true))

	indexBody := `{
		"mappings": {
			"properties": {
				"serial":    {"type": "keyword"},
				"mark_text": {"type": "text"},
				"status":    {"type": "keyword"},
				"classes":   {"type": "integer"}
			}
		}
	}`

	res, err := esClient.Indices.Create(
		"trademarks",
		esClient.Indices.Create.WithBody(strings.NewReader(indexBody)),
	)
	require.NoError(t, err, "Failed to create index")
	res.Body.Close()

	docs := []map[string]interface{}{
		{"serial": "00000001", "mark_text": "NIKE", "status": "LIVE", "classes": []int{25}},
		{"serial": "00000002", "mark_text": "NYKE", "status": "LIVE", "classes": []int{25}},
		{"serial": "00000003", "mark_text": "NIKE SPORTS", "status": "LIVE", "classes": []int{25, 35}},
		{"serial": "00000004", "mark_text": "ADIDAS", "status": "DEAD", "classes": []int{25}},
	}

	for i, doc := range docs {
		docJSON, _ := json.Marshal(doc)
		res, err := esClient.Index(
			"trademarks",
			strings.NewReader(string(docJSON)),
			esClient.Index.WithDocumentID(fmt.Sprintf("%d", i+1)),
			esClient.Index.WithRefresh("wait_for"),
		)
		require.NoError(t, err, "Failed to index document %d", i+1)
		res.Body.Close()
	}

	time.Sleep(time.Second)
}

func TestSearch_RealElasticsearch(t *testing.T) {
	esClient := createRealElasticsearchClient(t)
	if esClient == nil {
		return
	}
	setupTrademarkIndex(t, esClient)

	b := NewWithClient(esClient, "trademarks", logger.NewTestLogger(t))

	candidates, err := b.Search(context.Background(), models.NewSearchQuery("NIKE").WithClasses(25))
	require.NoError(t, err)
	require.NotEmpty(t, candidates)

	marks := make([]string, 0, len(candidates))
	for _, c := range candidates {
		marks = append(marks, c.Record.MarkText)
		assert.NotEqual(t, models.StatusDead, c.Record.Status, "default filter is live-only")
		assert.Greater(t, c.Score, 0.0)
	}
	assert.Contains(t, marks, "NIKE")
	t.Logf("retrieved %d candidates: %v", len(candidates), marks)
}

func TestHealthCheck_RealElasticsearch(t *testing.T) {
	esClient := createRealElasticsearchClient(t)
	if esClient == nil {
		return
	}

	b := NewWithClient(esClient, "trademarks", logger.NewTestLogger(t))
	assert.NoError(t, b.HealthCheck(context.Background()))
}
