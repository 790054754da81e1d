package textutil

import "strings"

// WordSet returns the set of lower-cased whitespace-separated words in text.
func WordSet(text string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(text))
	if len(fields) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		set[field] = struct{}{}
	}
	return set
}

// Jaccard computes the Jaccard similarity of the word sets of a and b.
// Returns 0 when either text contains no words.
func Jaccard(a, b string) float64 {
	setA := WordSet(a)
	setB := WordSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	intersection := 0
	for word := range setA {
		if _, ok := setB[word]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
