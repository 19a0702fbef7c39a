// internal/features/ngram.go
package features

import "strings"

// NGrams produces the character n-grams of the normalized string,
// space-padded with n-1 spaces at both ends so edge characters appear
// in as many grams as interior ones.
func NGrams(s string, n int) []string {
	if n <= 0 {
		return nil
	}
	norm := Normalize(s)
	if norm == "" {
		return nil
	}
	pad := strings.Repeat(" ", n-1)
	runes := []rune(pad + norm + pad)
	if len(runes) < n {
		return []string{string(runes)}
	}
	grams := make([]string, 0, len(runes)-n+1)
	for i := 0; i+n <= len(runes); i++ {
		grams = append(grams, string(runes[i:i+n]))
	}
	return grams
}
