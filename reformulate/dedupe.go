package reformulate

import (
	"strings"

	"github.com/samber/lo"
)

// DefaultNearDuplicateThreshold is the Jaccard token-overlap ratio at or
// above which two reformulated queries are considered near-duplicates.
const DefaultNearDuplicateThreshold = 0.8

// CleanVariants enforces the Reformulator contract on a raw variant list
// before it reaches the controller: blank/whitespace-only entries are
// dropped, the original query is dropped by exact match after trimming
// surrounding whitespace and case folding, and any remaining near-duplicates (of each other or of
// what's left) are filtered via FilterNearDuplicates. Every Reformulator
// implementation must run its output through this before returning.
func CleanVariants(original string, variants []string) []string {
	normalizedOriginal := normalizeQuery(original)

	cleaned := lo.Filter(variants, func(v string, _ int) bool {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return false
		}
		return normalizeQuery(trimmed) != normalizedOriginal
	})

	return FilterNearDuplicates(cleaned, DefaultNearDuplicateThreshold)
}

// FilterNearDuplicates removes queries whose token overlap with any
// earlier-surviving query meets or exceeds threshold, preserving the
// first occurrence of each distinct family. Modeled on the teacher's
// lo.Filter-based expander cleanup passes, case-folded so phrasing
// differing only in capitalization is still caught.
func FilterNearDuplicates(queries []string, threshold float64) []string {
	var kept []map[string]struct{}

	return lo.Filter(queries, func(q string, _ int) bool {
		tokens := tokenSet(q)
		for _, k := range kept {
			if jaccard(tokens, k) >= threshold {
				return false
			}
		}
		kept = append(kept, tokens)
		return true
	})
}

func tokenSet(text string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(text))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	var intersection int
	for tok := range a {
		if _, ok := b[tok]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
