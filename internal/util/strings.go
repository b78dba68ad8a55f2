package util

import (
	"sort"
	"strings"
)

// JoinOrNone joins items with ", " or returns "(none)" for an empty slice.
func JoinOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}

// Pluralize returns singular if count is 1, otherwise plural.
func Pluralize(count int, singular, plural string) string {
	if count == 1 {
		return singular
	}
	return plural
}

// LevenshteinDistance counts the single-character edits between a and b.
func LevenshteinDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// SuggestSimilar returns up to limit candidates that look like a typo of
// input: within len(input)/2 edits (at least one), or starting with input.
// Matching ignores case. Closest candidates come first.
func SuggestSimilar(input string, candidates []string, limit int) []string {
	in := strings.ToLower(input)
	if in == "" || len(candidates) == 0 {
		return nil
	}
	maxDist := max(1, len([]rune(in))/2)

	type match struct {
		name string
		dist int
	}
	var matches []match
	for _, c := range candidates {
		lc := strings.ToLower(c)
		d := LevenshteinDistance(in, lc)
		if d <= maxDist || strings.HasPrefix(lc, in) {
			matches = append(matches, match{c, d})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].dist != matches[j].dist {
			return matches[i].dist < matches[j].dist
		}
		return matches[i].name < matches[j].name
	})

	var out []string
	for _, m := range matches {
		if len(out) == limit {
			break
		}
		out = append(out, m.name)
	}
	return out
}
