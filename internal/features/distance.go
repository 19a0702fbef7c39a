// internal/features/distance.go
package features

import "github.com/agnivade/levenshtein"

// EditDistance is the plain Levenshtein distance (unit cost insert,
// delete, substitute) between two strings.
func EditDistance(a, b string) int {
	return levenshtein.ComputeDistance(a, b)
}

// BoundedEditDistance computes the Levenshtein distance with a cutoff.
// When the length difference alone already exceeds bound the full
// computation is skipped and bound+1 is returned as a sentinel; the
// true distance can never be smaller than the length difference.
func BoundedEditDistance(a, b string, bound int) int {
	if bound < 0 {
		bound = 0
	}
	diff := len(a) - len(b)
	if diff < 0 {
		diff = -diff
	}
	if diff > bound {
		return bound + 1
	}
	return levenshtein.ComputeDistance(a, b)
}
