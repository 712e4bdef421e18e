// Package tokenize turns transcript text into word tokens for scoring.
package tokenize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Options control the normalisation applied before whitespace splitting.
type Options struct {
	Lowercase  bool
	StripPunct bool
	NFC        bool
}

const edgePunct = " ,.!?;:\"'()[]{}«»“”‘’…"

// Split normalises text according to opts and splits it on whitespace.
// Tokens that become empty after punctuation stripping are dropped.
func Split(text string, opts Options) []string {
	if opts.NFC {
		text = norm.NFC.String(text)
	}
	if opts.Lowercase {
		text = cases.Lower(language.Und).String(text)
	}
	fields := strings.Fields(text)
	if !opts.StripPunct {
		return fields
	}
	out := fields[:0]
	for _, f := range fields {
		if f = stripPunct(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func stripPunct(s string) string {
	return strings.Trim(s, edgePunct)
}
