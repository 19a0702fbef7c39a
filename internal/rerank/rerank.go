// internal/rerank/rerank.go

// Package rerank combines the pure similarity features into flagged,
// scored, ordered hits. All inputs are in memory; reranking never
// fails.
package rerank

import (
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"trademark-engine/internal/backend"
	"trademark-engine/internal/explain"
	"trademark-engine/internal/features"
	"trademark-engine/internal/models"
)

// Rerank scores and orders raw backend candidates against the query.
// Candidates sharing a serial are deduplicated first, keeping the one
// with the highest retrieval score. Candidate evaluation is
// data-parallel; every feature is pure, so scheduling cannot change the
// output.
func Rerank(q *models.SearchQuery, candidates []backend.Candidate, cfg *Config) []models.CandidateHit {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	deduped := dedupeBySerial(candidates)

	queryNorm := features.Normalize(q.MarkText)
	queryCodes := phoneticCodes(q.MarkText, cfg.TokenPhonetics)
	queryDominant, _ := features.DominantTerm(q.MarkText)
	weights := cfg.explainWeights()

	hits := make([]models.CandidateHit, len(deduped))
	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, cand := range deduped {
		i, cand := i, cand
		g.Go(func() error {
			hits[i] = scoreCandidate(q, cand, cfg, weights, queryNorm, queryCodes, queryDominant)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	if !cfg.KeepAll {
		kept := hits[:0]
		for _, h := range hits {
			if h.RiskScore == 0 && len(h.Flags) == 0 {
				continue
			}
			kept = append(kept, h)
		}
		hits = kept
	}

	sort.SliceStable(hits, func(i, j int) bool {
		a, b := &hits[i], &hits[j]
		if a.RiskScore != b.RiskScore {
			return a.RiskScore > b.RiskScore
		}
		if len(a.Flags) != len(b.Flags) {
			return len(a.Flags) > len(b.Flags)
		}
		if a.RetrievalScore != b.RetrievalScore {
			return a.RetrievalScore > b.RetrievalScore
		}
		return a.Record.Serial < b.Record.Serial
	})
	return hits
}

// scoreCandidate evaluates the flags in their fixed order and sums the
// contributions. ExactMatch subsumes the phonetic and fuzzy signals and
// pins the score; class overlap is still reported so consumers see the
// full conflict picture.
func scoreCandidate(
	q *models.SearchQuery,
	cand backend.Candidate,
	cfg *Config,
	weights explain.Weights,
	queryNorm string,
	queryCodes []features.PhoneticCode,
	queryDominant string,
) models.CandidateHit {
	rec := cand.Record
	recNorm := features.Normalize(rec.MarkText)
	exact := queryNorm != "" && queryNorm == recNorm

	var flags []models.RiskFlag
	score := 0.0

	if exact {
		flags = append(flags, models.NewExactMatchFlag())
	}

	if !exact && q.Phonetic {
		recCodes := phoneticCodes(rec.MarkText, cfg.TokenPhonetics)
		if code, ok := features.PhoneticMatch(queryCodes, recCodes); ok {
			flags = append(flags, models.NewPhoneticMatchFlag(code.Algorithm, code.Code))
			score += cfg.PhoneticWeight
		}
	}

	if !exact && q.Fuzzy {
		d := features.BoundedEditDistance(queryNorm, recNorm, cfg.MaxEditDistance)
		if d <= cfg.MaxEditDistance {
			flags = append(flags, models.NewFuzzyMatchFlag(d))
			score += cfg.FuzzyScore(d)
		}
	}

	if len(q.Classes) > 0 {
		if shared := features.ClassOverlap(q.Classes, rec.Classes); len(shared) > 0 {
			flags = append(flags, models.NewClassOverlapFlag(shared))
			score += cfg.ClassWeight
		}
	}

	if !exact {
		if term, ok := sharedDominantTerm(queryNorm, queryDominant, recNorm, rec.MarkText); ok {
			flags = append(flags, models.NewDominantTermMatchFlag(term))
			score += cfg.DominantWeight
		}
	}

	if cfg.isFamous(rec.Serial) {
		flags = append(flags, models.NewFamousMarkFlag())
		score += cfg.FamousWeight
	}

	if exact {
		score = cfg.ExactScore
	}
	score = clamp01(score)

	explanations := make([]models.Explanation, len(flags))
	for i, f := range flags {
		explanations[i] = explain.ForFlag(f, q.MarkText, &rec, weights)
	}

	return models.CandidateHit{
		Record:         rec,
		RetrievalScore: cand.Score,
		RiskScore:      score,
		Flags:          flags,
		Explanations:   explanations,
	}
}

// sharedDominantTerm reports the dominant term that one side
// contributes and the other contains as a whole token.
func sharedDominantTerm(queryNorm, queryDominant, recNorm, recMark string) (string, bool) {
	if queryDominant != "" && containsToken(recNorm, queryDominant) {
		return queryDominant, true
	}
	if recDominant, ok := features.DominantTerm(recMark); ok && containsToken(queryNorm, recDominant) {
		return recDominant, true
	}
	return "", false
}

func containsToken(norm, term string) bool {
	for _, tok := range strings.Fields(norm) {
		if tok == term {
			return true
		}
	}
	return false
}

func phoneticCodes(s string, byToken bool) []features.PhoneticCode {
	if byToken {
		return features.PhoneticCodesByToken(s)
	}
	return features.PhoneticCodes(s)
}

// dedupeBySerial keeps the highest-scoring candidate per serial while
// preserving first-seen order.
func dedupeBySerial(candidates []backend.Candidate) []backend.Candidate {
	if len(candidates) < 2 {
		return candidates
	}
	index := make(map[string]int, len(candidates))
	out := make([]backend.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if at, ok := index[c.Record.Serial]; ok {
			if c.Score > out[at].Score {
				out[at] = c
			}
			continue
		}
		index[c.Record.Serial] = len(out)
		out = append(out, c)
	}
	return out
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
