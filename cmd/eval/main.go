// cmd/eval/main.go

// eval drives the conflict-analysis engine from the command line.
//
// Usage:
//
//	eval search -classes 25 -limit 20 "NIKE"
//	eval health
//	eval benchmark -test-file testdata/queries.yaml
//	eval validate -file feed.ndjson
//
// Flags come before positional arguments; flag parsing stops at the
// first positional one.
//
// Exit codes: 0 success, 2 invalid input, 3 backend unavailable,
// 4 timeout, 1 other.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"trademark-engine/internal/backend"
	"trademark-engine/internal/backend/cache"
	"trademark-engine/internal/backend/elastic"
	"trademark-engine/internal/backend/manticore"
	pgbackend "trademark-engine/internal/backend/postgres"
	"trademark-engine/internal/common/config"
	"trademark-engine/internal/common/database"
	commonerrors "trademark-engine/internal/common/errors"
	"trademark-engine/internal/common/logger"
	"trademark-engine/internal/common/observability"
	"trademark-engine/internal/common/validation"
	"trademark-engine/internal/engine"
	"trademark-engine/internal/explain"
	"trademark-engine/internal/models"
	"trademark-engine/internal/rerank"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) < 1 {
		usage()
		return commonerrors.ExitInvalidInput
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		return commonerrors.ExitOther
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	obs := observability.New("eval")
	defer obs.Shutdown()

	switch args[0] {
	case "search":
		return runSearch(args[1:], cfg, log, zapLog, obs)
	case "health":
		return runHealth(args[1:], cfg, log)
	case "benchmark":
		return runBenchmark(args[1:], cfg, log, obs)
	case "validate":
		return runValidate(args[1:])
	default:
		usage()
		return commonerrors.ExitInvalidInput
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: eval <search|health|benchmark|validate> [flags]")
}

func runSearch(args []string, cfg *config.Config, log logger.Logger, zapLog *zap.Logger, obs *observability.Observability) int {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "maximum results")
	classes := fs.String("classes", "", "comma-separated Nice classes")
	backendName := fs.String("backend", cfg.Backends.Default, "retrieval backend (manticore|elasticsearch|postgres)")
	format := fs.String("format", "text", "output format (text|json)")
	useCache := fs.Bool("cache", false, "cache candidates in redis")
	if err := fs.Parse(args); err != nil {
		return commonerrors.ExitInvalidInput
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "search: mark text is required")
		return commonerrors.ExitInvalidInput
	}

	be, cleanup, err := buildBackend(cfg, *backendName, *useCache, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "backend setup failed: %v\n", err)
		return commonerrors.ExitOther
	}
	defer cleanup()

	q := models.NewSearchQuery(fs.Arg(0)).WithLimit(*limit)
	if parsed, err := parseClassList(*classes); err != nil {
		fmt.Fprintf(os.Stderr, "invalid classes: %v\n", err)
		return commonerrors.ExitInvalidInput
	} else if len(parsed) > 0 {
		q.WithClasses(parsed...)
	}

	eng := engine.New(be, rerankConfig(cfg), log).
		WithTimeout(time.Duration(cfg.Engine.Timeout) * time.Millisecond).
		WithObservability(obs)

	hits, err := eng.Analyze(context.Background(), q)
	if err != nil {
		std := commonerrors.FromError(err)
		fmt.Fprintf(os.Stderr, "search failed: %s (%s)\n", std.Message, std.Code)
		return commonerrors.ExitCode(err)
	}

	if *format == "json" {
		out, err := json.MarshalIndent(hits, "", "  ")
		if err != nil {
			zapLog.Error("marshal hits", zap.Error(err))
			return commonerrors.ExitOther
		}
		fmt.Println(string(out))
		return commonerrors.ExitOK
	}

	printHits(q, hits)
	return commonerrors.ExitOK
}

func printHits(q *models.SearchQuery, hits []models.CandidateHit) {
	fmt.Printf("Searching for: %s\n", q.MarkText)
	if len(q.Classes) > 0 {
		fmt.Printf("Classes: %v\n", q.Classes)
	}
	fmt.Println("---")
	for i, hit := range hits {
		fmt.Printf("\n%d. %s (Serial: %s)\n", i+1, hit.Record.MarkText, hit.Record.Serial)
		fmt.Printf("   Status: %s\n", hit.Record.Status)
		fmt.Printf("   Risk Score: %.3f | Retrieval Score: %.2f\n", hit.RiskScore, hit.RetrievalScore)
		fmt.Printf("   %s\n", explain.SummarizeRisk(&hit))
		for _, ex := range hit.Explanations {
			fmt.Printf("   - %s: %s\n", ex.Summary, ex.Detail)
		}
	}
	fmt.Println("\n---")
	fmt.Printf("Total: %d results\n", len(hits))
}

func runHealth(args []string, cfg *config.Config, log logger.Logger) int {
	fs := flag.NewFlagSet("health", flag.ContinueOnError)
	backendName := fs.String("backend", cfg.Backends.Default, "retrieval backend")
	if err := fs.Parse(args); err != nil {
		return commonerrors.ExitInvalidInput
	}

	be, cleanup, err := buildBackend(cfg, *backendName, false, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "backend setup failed: %v\n", err)
		return commonerrors.ExitOther
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	fmt.Printf("Checking %s backend... ", be.Name())
	if err := be.HealthCheck(ctx); err != nil {
		fmt.Printf("FAILED: %v\n", err)
		return commonerrors.ExitCode(err)
	}
	fmt.Println("OK")
	return commonerrors.ExitOK
}

// benchmarkFile is the YAML shape of a labeled query set.
type benchmarkFile struct {
	Queries []struct {
		Text          string   `yaml:"text"`
		Classes       []int    `yaml:"classes"`
		ExpectedTop   []string `yaml:"expected_top"`
		ExpectedFlags []string `yaml:"expected_flags"`
	} `yaml:"queries"`
}

func runBenchmark(args []string, cfg *config.Config, log logger.Logger, obs *observability.Observability) int {
	fs := flag.NewFlagSet("benchmark", flag.ContinueOnError)
	testFile := fs.String("test-file", "", "path to benchmark YAML")
	backendName := fs.String("backend", cfg.Backends.Default, "retrieval backend")
	if err := fs.Parse(args); err != nil {
		return commonerrors.ExitInvalidInput
	}
	if *testFile == "" {
		fmt.Fprintln(os.Stderr, "benchmark: -test-file is required")
		return commonerrors.ExitInvalidInput
	}

	raw, err := os.ReadFile(*testFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "benchmark: %v\n", err)
		return commonerrors.ExitInvalidInput
	}
	var bench benchmarkFile
	if err := yaml.Unmarshal(raw, &bench); err != nil {
		fmt.Fprintf(os.Stderr, "benchmark: invalid test file: %v\n", err)
		return commonerrors.ExitInvalidInput
	}

	be, cleanup, err := buildBackend(cfg, *backendName, false, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "backend setup failed: %v\n", err)
		return commonerrors.ExitOther
	}
	defer cleanup()

	eng := engine.New(be, rerankConfig(cfg), log).
		WithTimeout(time.Duration(cfg.Engine.Timeout) * time.Millisecond).
		WithObservability(obs)

	passed := 0
	for _, tc := range bench.Queries {
		q := models.NewSearchQuery(tc.Text)
		if len(tc.Classes) > 0 {
			q.WithClasses(tc.Classes...)
		}
		hits, err := eng.Analyze(context.Background(), q)
		if err != nil {
			fmt.Printf("FAIL %-20s error: %v\n", tc.Text, err)
			continue
		}
		if benchmarkPass(hits, tc.ExpectedTop, tc.ExpectedFlags) {
			passed++
			fmt.Printf("PASS %-20s %d hits\n", tc.Text, len(hits))
		} else {
			fmt.Printf("FAIL %-20s expectations not met (%d hits)\n", tc.Text, len(hits))
		}
	}
	fmt.Printf("\n%d/%d queries passed\n", passed, len(bench.Queries))
	if passed != len(bench.Queries) {
		return commonerrors.ExitOther
	}
	return commonerrors.ExitOK
}

func benchmarkPass(hits []models.CandidateHit, expectedTop, expectedFlags []string) bool {
	for i, want := range expectedTop {
		if i >= len(hits) || !strings.EqualFold(hits[i].Record.MarkText, want) {
			return false
		}
	}
	for _, want := range expectedFlags {
		found := false
		for _, hit := range hits {
			for _, f := range hit.Flags {
				if string(f.Type) == want {
					found = true
				}
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// runValidate checks an ingestion feed file (JSON array or one JSON
// object per line) against the record schema before it is loaded into
// an index.
func runValidate(args []string) int {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	file := fs.String("file", "", "path to a record feed (JSON array or NDJSON)")
	if err := fs.Parse(args); err != nil {
		return commonerrors.ExitInvalidInput
	}
	if *file == "" && fs.NArg() > 0 {
		*file = fs.Arg(0)
	}
	if *file == "" {
		fmt.Fprintln(os.Stderr, "validate: -file is required")
		return commonerrors.ExitInvalidInput
	}

	raw, err := os.ReadFile(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "validate: %v\n", err)
		return commonerrors.ExitInvalidInput
	}

	docs, err := splitRecordDocs(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "validate: %v\n", err)
		return commonerrors.ExitInvalidInput
	}

	valid, invalid := 0, 0
	for i, doc := range docs {
		result, err := validation.ValidateRecordJSON(doc)
		if err != nil {
			fmt.Printf("record %d: not JSON: %v\n", i+1, err)
			invalid++
			continue
		}
		if !result.Valid {
			for _, msg := range result.Errors {
				fmt.Printf("record %d: %s\n", i+1, msg)
			}
			invalid++
			continue
		}
		// the schema gate passed; confirm the model accepts it too
		var rec models.TrademarkRecord
		if err := json.Unmarshal(doc, &rec); err != nil {
			fmt.Printf("record %d: %v\n", i+1, err)
			invalid++
			continue
		}
		valid++
	}

	fmt.Printf("\n%d valid, %d invalid of %d records\n", valid, invalid, len(docs))
	if invalid > 0 {
		return commonerrors.ExitInvalidInput
	}
	return commonerrors.ExitOK
}

// splitRecordDocs accepts the two feed shapes: a JSON array of record
// objects, or newline-delimited objects.
func splitRecordDocs(raw []byte) ([]json.RawMessage, error) {
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		var docs []json.RawMessage
		if err := json.Unmarshal([]byte(trimmed), &docs); err != nil {
			return nil, fmt.Errorf("invalid record array: %w", err)
		}
		return docs, nil
	}
	var docs []json.RawMessage
	for _, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		docs = append(docs, json.RawMessage(line))
	}
	return docs, nil
}

func buildBackend(cfg *config.Config, name string, useCache bool, log logger.Logger) (backend.Backend, func(), error) {
	cleanup := func() {}
	var be backend.Backend

	switch name {
	case "manticore":
		be = manticore.New(manticore.Config{
			BaseURL: cfg.Backends.Manticore.URL,
			Table:   cfg.Backends.Manticore.Table,
			Timeout: time.Duration(cfg.Backends.Manticore.Timeout) * time.Millisecond,
		}, log)
	case "elasticsearch":
		esClient, err := database.NewElasticsearch(cfg.Backends.Elasticsearch)
		if err != nil {
			return nil, cleanup, err
		}
		be = elastic.NewWithClient(esClient.Client, cfg.Backends.Elasticsearch.Index, log)
	case "postgres":
		pg, err := database.NewPostgres(cfg.Backends.Postgres)
		if err != nil {
			return nil, cleanup, err
		}
		cleanup = func() { pg.Close() }
		be = pgbackend.New(pg.DB, cfg.Backends.Postgres.Table, log)
	default:
		return nil, cleanup, fmt.Errorf("unknown backend %q", name)
	}

	if useCache {
		rc, err := database.NewRedis(cfg.Backends.Redis)
		if err != nil {
			return nil, cleanup, err
		}
		prev := cleanup
		cleanup = func() { rc.Close(); prev() }
		be = cache.Wrap(be, rc.Client, time.Duration(cfg.Backends.Redis.TTL)*time.Second, log)
	}

	return be, cleanup, nil
}

func rerankConfig(cfg *config.Config) *rerank.Config {
	rc := rerank.DefaultConfig()
	if cfg.Rerank.PhoneticWeight > 0 {
		rc.PhoneticWeight = cfg.Rerank.PhoneticWeight
	}
	if cfg.Rerank.FuzzyWeight > 0 {
		rc.FuzzyWeight = cfg.Rerank.FuzzyWeight
	}
	if cfg.Rerank.ClassWeight > 0 {
		rc.ClassWeight = cfg.Rerank.ClassWeight
	}
	if cfg.Rerank.DominantWeight > 0 {
		rc.DominantWeight = cfg.Rerank.DominantWeight
	}
	if cfg.Rerank.FamousWeight > 0 {
		rc.FamousWeight = cfg.Rerank.FamousWeight
	}
	if cfg.Rerank.ExactScore > 0 {
		rc.ExactScore = cfg.Rerank.ExactScore
	}
	if cfg.Rerank.MaxEditDistance > 0 {
		rc.MaxEditDistance = cfg.Rerank.MaxEditDistance
	}
	if len(cfg.Rerank.FamousMarks) > 0 {
		rc.WithFamousMarks(cfg.Rerank.FamousMarks...)
	}
	rc.TokenPhonetics = cfg.Rerank.TokenPhonetics
	return rc
}

func parseClassList(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
