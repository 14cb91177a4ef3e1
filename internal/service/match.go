package service

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

const similarityThreshold = 0.7

// bestMatch picks the candidate closest to query: an exact case-insensitive match, then
// the tightest fuzzy containment match, then the closest name by edit distance.
func bestMatch(query string, candidates []string) (string, bool) {
	query = strings.TrimSpace(query)
	if query == "" || len(candidates) == 0 {
		return "", false
	}

	for _, c := range candidates {
		if strings.EqualFold(c, query) {
			return c, true
		}
	}

	ranks := fuzzy.RankFindNormalizedFold(query, candidates)
	if len(ranks) > 0 {
		sort.Stable(ranks)
		return ranks[0].Target, true
	}

	best := ""
	bestSimilarity := similarityThreshold
	lowered := strings.ToLower(query)
	for _, c := range candidates {
		name := strings.ToLower(c)
		distance := fuzzy.LevenshteinDistance(lowered, name)
		maxLen := float64(max(len(lowered), len(name)))
		similarity := 1 - float64(distance)/maxLen
		if similarity > bestSimilarity {
			bestSimilarity = similarity
			best = c
		}
	}
	return best, best != ""
}
