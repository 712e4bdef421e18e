package wer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// CharacterErrorRate is the code-point edit distance between reference and
// hypothesis, whitespace removed, as a percentage of the reference length.
func CharacterErrorRate(reference, hypothesis string) (float64, error) {
	ref := dropSpace(reference)
	hyp := dropSpace(hypothesis)
	n := utf8.RuneCountInString(ref)
	if n == 0 {
		if hyp == "" {
			return 0, nil
		}
		return 0, &InvalidInputError{Reason: fmt.Sprintf("reference has no characters (hypothesis has %d); error rate is undefined", utf8.RuneCountInString(hyp))}
	}
	d := levenshtein.ComputeDistance(ref, hyp)
	return float64(d) / float64(n) * 100, nil
}

func dropSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
