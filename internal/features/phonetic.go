// internal/features/phonetic.go
package features

import (
	"strings"

	"github.com/dotcypress/phonetics"
)

// Phonetic algorithm tags, in the fixed order matches are reported.
const (
	AlgorithmMetaphone = "metaphone"
	AlgorithmSoundex   = "soundex"
)

var algorithmOrder = []string{AlgorithmMetaphone, AlgorithmSoundex}

// PhoneticCode is one (algorithm, code) pair computed for a mark.
type PhoneticCode struct {
	Algorithm string
	Code      string
}

// PhoneticCodes computes the phonetic codes of a mark over the
// concatenation of its alphabetic tokens (digits and spaces dropped).
// Empty codes are omitted.
func PhoneticCodes(s string) []PhoneticCode {
	return codesFor(alphaConcat(s))
}

// PhoneticCodesByToken computes codes per normalized token instead of
// on the concatenated string. Kept behind a reranker switch; the
// concatenated form is the default.
func PhoneticCodesByToken(s string) []PhoneticCode {
	var out []PhoneticCode
	for _, tok := range Tokens(s) {
		out = append(out, codesFor(alphaOnly(tok))...)
	}
	return out
}

// PhoneticMatch reports the first (algorithm, code) pair shared by the
// two code sets, scanning algorithms in the fixed order
// [metaphone, soundex].
func PhoneticMatch(a, b []PhoneticCode) (PhoneticCode, bool) {
	for _, alg := range algorithmOrder {
		for _, ca := range a {
			if ca.Algorithm != alg {
				continue
			}
			for _, cb := range b {
				if cb.Algorithm == alg && cb.Code == ca.Code {
					return ca, true
				}
			}
		}
	}
	return PhoneticCode{}, false
}

func codesFor(word string) []PhoneticCode {
	if word == "" {
		return nil
	}
	var out []PhoneticCode
	if code := phonetics.EncodeMetaphone(word); code != "" {
		out = append(out, PhoneticCode{Algorithm: AlgorithmMetaphone, Code: code})
	}
	if code := phonetics.EncodeSoundex(word); code != "" {
		out = append(out, PhoneticCode{Algorithm: AlgorithmSoundex, Code: code})
	}
	return out
}

// alphaConcat joins the alphabetic characters of every token.
func alphaConcat(s string) string {
	return alphaOnly(strings.Join(Tokens(s), ""))
}

func alphaOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
