package services

import (
	"regexp"
	"strings"
)

var nonAlnumSpace = regexp.MustCompile(`[^a-z0-9\s]`)

// NormalizeText lowercases, drops anything but ASCII letters, digits and
// whitespace, and collapses runs of whitespace to single spaces.
func NormalizeText(s string) string {
	s = nonAlnumSpace.ReplaceAllString(strings.ToLower(s), "")
	return strings.Join(strings.Fields(s), " ")
}

func ExactMatch(prediction, truth string) bool {
	return NormalizeText(prediction) == NormalizeText(truth)
}

// TokenF1 is the harmonic mean of token precision and recall after
// normalization. Shared tokens are counted with multiplicity.
func TokenF1(prediction, truth string) float64 {
	predTokens := strings.Fields(NormalizeText(prediction))
	truthTokens := strings.Fields(NormalizeText(truth))
	if len(predTokens) == 0 || len(truthTokens) == 0 {
		return 0
	}

	truthCounts := make(map[string]int, len(truthTokens))
	for _, t := range truthTokens {
		truthCounts[t]++
	}

	common := 0
	for _, t := range predTokens {
		if truthCounts[t] > 0 {
			truthCounts[t]--
			common++
		}
	}
	if common == 0 {
		return 0
	}

	precision := float64(common) / float64(len(predTokens))
	recall := float64(common) / float64(len(truthTokens))
	return 2 * precision * recall / (precision + recall)
}
