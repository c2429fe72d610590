// Package suggest finds the closest known name for a misspelled one.
package suggest

import "github.com/agext/levenshtein"

// FindMostSimilar returns the candidate with the smallest edit distance to
// target. Ties go to the earliest candidate. Nothing is returned when
// candidates is empty or the best distance exceeds maxDistance.
func FindMostSimilar(target string, candidates []string, maxDistance int) (string, bool) {
	best := ""
	bestDistance := -1

	for _, candidate := range candidates {
		d := levenshtein.Distance(target, candidate, nil)
		if bestDistance < 0 || d < bestDistance {
			best = candidate
			bestDistance = d
		}
	}

	if bestDistance < 0 || bestDistance > maxDistance {
		return "", false
	}
	return best, true
}
