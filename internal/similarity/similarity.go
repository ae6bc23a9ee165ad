// Package similarity detects near-duplicate mistakes. Records are reduced to
// term-frequency fingerprints over their question text and knowledge tags,
// and compared by cosine similarity. The goal is surfacing "you got this
// wrong before" matches, not exact deduplication.
package similarity

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"retrace/internal/mistake"
)

var termSplitPattern = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// tagWeight boosts knowledge tags over free question text. Tags are curated
// labels, so agreement there is a stronger duplicate signal than shared
// vocabulary.
const tagWeight = 2.0

// Fingerprint is a normalized term-frequency vector for one record.
type Fingerprint struct {
	terms map[string]float64
	norm  float64
}

// FromText fingerprints free-form text. Returns nil when the text produces
// no usable terms.
func FromText(text string) *Fingerprint {
	return build(termsOf(text), nil)
}

// ForRecord fingerprints a record's question text plus its knowledge tags.
func ForRecord(rec *mistake.Record) *Fingerprint {
	if rec == nil {
		return nil
	}
	return build(termsOf(rec.QuestionText), rec.KnowledgeTags)
}

func termsOf(text string) []string {
	lowered := strings.ToLower(text)
	raw := termSplitPattern.Split(lowered, -1)
	terms := make([]string, 0, len(raw))
	for _, chunk := range raw {
		terms = append(terms, splitChunk(chunk)...)
	}
	return terms
}

// splitChunk turns one delimiter-free chunk into comparable terms. Runs of
// Han characters become character bigrams, since CJK question text carries
// no spaces to split on; other script runs are kept whole when at least two
// runes long.
func splitChunk(chunk string) []string {
	runes := []rune(chunk)
	if len(runes) == 0 {
		return nil
	}
	terms := make([]string, 0, len(runes))
	start := 0
	flush := func(end int, han bool) {
		seg := runes[start:end]
		start = end
		switch {
		case len(seg) == 0:
			return
		case han:
			if len(seg) == 1 {
				terms = append(terms, string(seg))
				return
			}
			for i := 0; i+1 < len(seg); i++ {
				terms = append(terms, string(seg[i:i+2]))
			}
		case len(seg) >= 2:
			terms = append(terms, string(seg))
		}
	}
	hanRun := unicode.Is(unicode.Han, runes[0])
	for i, r := range runes {
		han := unicode.Is(unicode.Han, r)
		if han != hanRun {
			flush(i, hanRun)
			hanRun = han
		}
	}
	flush(len(runes), hanRun)
	return terms
}

func build(terms []string, tags []string) *Fingerprint {
	counts := make(map[string]float64, len(terms)+len(tags))
	for _, term := range terms {
		counts[term]++
	}
	for _, tag := range tags {
		for _, term := range termsOf(tag) {
			counts[term] += tagWeight
		}
	}
	if len(counts) == 0 {
		return nil
	}
	var norm float64
	for _, count := range counts {
		norm += count * count
	}
	return &Fingerprint{terms: counts, norm: math.Sqrt(norm)}
}

// Cosine computes cosine similarity in [0, 1]. Nil or empty fingerprints
// compare as 0.
func Cosine(a, b *Fingerprint) float64 {
	if a == nil || b == nil || a.norm == 0 || b.norm == 0 {
		return 0
	}
	var dot float64
	for term, count := range a.terms {
		if other, ok := b.terms[term]; ok {
			dot += count * other
		}
	}
	if dot == 0 {
		return 0
	}
	return dot / (a.norm * b.norm)
}

// Match pairs a candidate record with its similarity score.
type Match struct {
	Record *mistake.Record
	Score  float64
}

// RankSimilar scores candidates against the target and returns those at or
// above threshold, best first, capped at limit. The target itself is skipped.
func RankSimilar(target *mistake.Record, candidates []*mistake.Record, threshold float64, limit int) []Match {
	fp := ForRecord(target)
	if fp == nil || limit <= 0 {
		return nil
	}
	matches := make([]Match, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate == nil || (target != nil && candidate.ID == target.ID) {
			continue
		}
		score := Cosine(fp, ForRecord(candidate))
		if score >= threshold {
			matches = append(matches, Match{Record: candidate, Score: score})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}
