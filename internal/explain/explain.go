// internal/explain/explain.go

// Package explain maps risk flags to structured, user-facing
// explanations. The mapping is pure and never fails; missing evidence
// degrades to generic phrasing.
package explain

import (
	"fmt"
	"strconv"
	"strings"

	"trademark-engine/internal/models"
)

// Weights carries the configured severity per flag variant. Fuzzy
// severity depends on the observed edit distance, so it arrives as a
// function.
type Weights struct {
	Exact    float64
	Phonetic float64
	Fuzzy    func(distance int) float64
	Class    float64
	Dominant float64
	Famous   float64
}

// ForFlag builds the explanation for one flag. queryText and record
// come from the call that produced the flag; record may be nil when a
// caller explains a flag in isolation.
func ForFlag(flag models.RiskFlag, queryText string, record *models.TrademarkRecord, w Weights) models.Explanation {
	mark := "the candidate mark"
	if record != nil && record.MarkText != "" {
		mark = fmt.Sprintf("'%s'", record.MarkText)
	}
	qt := "your mark"
	if strings.TrimSpace(queryText) != "" {
		qt = fmt.Sprintf("'%s'", strings.TrimSpace(queryText))
	}

	switch flag.Type {
	case models.FlagExactMatch:
		return models.Explanation{
			Summary:  "Exact match found",
			Detail:   fmt.Sprintf("The mark %s is an exact match for %s. This represents the highest level of potential conflict.", mark, qt),
			Severity: w.Exact,
			Evidence: []models.Evidence{{Label: "exact_match", Value: markValue(record)}},
		}

	case models.FlagPhoneticMatch:
		return models.Explanation{
			Summary: "Sounds similar",
			Detail: fmt.Sprintf("The mark %s sounds phonetically similar to %s; both encode to %s under %s. Consumers may confuse the two when spoken aloud.",
				mark, qt, flag.Code, flag.Algorithm),
			Severity: w.Phonetic,
			Evidence: []models.Evidence{
				{Label: "algorithm", Value: flag.Algorithm},
				{Label: "code", Value: flag.Code},
			},
		}

	case models.FlagFuzzyMatch:
		sev := 0.0
		if w.Fuzzy != nil {
			sev = w.Fuzzy(flag.Distance)
		}
		return models.Explanation{
			Summary: "Spelled similarly",
			Detail: fmt.Sprintf("The mark %s differs from %s by only %d character(s). This minor spelling difference may not prevent consumer confusion.",
				mark, qt, flag.Distance),
			Severity: sev,
			Evidence: []models.Evidence{{Label: "edit_distance", Value: strconv.Itoa(flag.Distance)}},
		}

	case models.FlagClassOverlap:
		list := joinClasses(flag.Classes)
		evidence := make([]models.Evidence, len(flag.Classes))
		for i, c := range flag.Classes {
			evidence[i] = models.Evidence{Label: "nice_class", Value: strconv.Itoa(c)}
		}
		return models.Explanation{
			Summary: fmt.Sprintf("Same class (%s)", list),
			Detail: fmt.Sprintf("Both marks cover the same Nice classification(s): %s. This increases the likelihood of confusion in the marketplace.",
				list),
			Severity: w.Class,
			Evidence: evidence,
		}

	case models.FlagDominantTermMatch:
		term := flag.Term
		if term == "" {
			term = "the shared term"
		}
		return models.Explanation{
			Summary: fmt.Sprintf("Dominant term '%s' matches", term),
			Detail: fmt.Sprintf("The distinctive element '%s' appears in both %s and %s. Courts often focus on dominant terms when assessing confusion.",
				term, mark, qt),
			Severity: w.Dominant,
			Evidence: []models.Evidence{{Label: "dominant_term", Value: term}},
		}

	case models.FlagFamousMark:
		return models.Explanation{
			Summary: "Famous mark",
			Detail: fmt.Sprintf("The mark %s is on the curated famous-marks list. Famous marks receive broader protection against dilution.",
				mark),
			Severity: w.Famous,
			Evidence: []models.Evidence{{Label: "famous_mark", Value: markValue(record)}},
		}

	case models.FlagGoodsServicesSimilar:
		return models.Explanation{
			Summary: "Similar goods/services",
			Detail: fmt.Sprintf("The goods and services descriptions of %s and %s are similar. Even with different marks, similar goods increase confusion risk.",
				mark, qt),
			Severity: flag.Similarity,
			Evidence: []models.Evidence{{Label: "goods_similarity", Value: strconv.FormatFloat(flag.Similarity, 'f', 2, 64)}},
		}

	default:
		return models.Explanation{
			Summary: "Potential conflict",
			Detail:  fmt.Sprintf("The mark %s was flagged as a potential conflict with %s.", mark, qt),
		}
	}
}

// SummarizeRisk renders a one-line risk banner for a hit.
func SummarizeRisk(hit *models.CandidateHit) string {
	if len(hit.Flags) == 0 {
		return "LOW RISK: no significant matches found"
	}
	level := "LOW RISK"
	switch {
	case hit.RiskScore >= 0.8:
		level = "HIGH RISK"
	case hit.RiskScore >= 0.5:
		level = "MODERATE RISK"
	}
	labels := make([]string, len(hit.Flags))
	for i, f := range hit.Flags {
		labels[i] = f.Label()
	}
	return fmt.Sprintf("%s: %s", level, strings.Join(labels, ", "))
}

func markValue(record *models.TrademarkRecord) string {
	if record == nil {
		return ""
	}
	return record.MarkText
}

func joinClasses(classes []int) string {
	if len(classes) == 0 {
		return "unspecified"
	}
	strs := make([]string, len(classes))
	for i, c := range classes {
		strs[i] = strconv.Itoa(c)
	}
	return strings.Join(strs, ", ")
}
