package domain

import "strings"

var featureKeywords = []string{"feat", "feature", "add", "implement"}

// CountFeatures counts commit subjects that mention a feature keyword,
// matched case-insensitively as a substring. Each subject counts at most
// once, so "feat: add X" is one feature.
func CountFeatures(subjects []string) int {
	n := 0
	for _, s := range subjects {
		lower := strings.ToLower(s)
		for _, kw := range featureKeywords {
			if strings.Contains(lower, kw) {
				n++
				break
			}
		}
	}
	return n
}
