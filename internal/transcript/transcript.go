// Package transcript loads reference and hypothesis text, either plain or as
// recognizer JSON output with per-word timing.
package transcript

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"werdiff/internal/tokenize"

	"github.com/tidwall/gjson"
)

// Word is a recognized word with optional timing in seconds.
type Word struct {
	Text  string  `json:"word" yaml:"word"`
	Start float64 `json:"start,omitempty" yaml:"start,omitempty"`
	End   float64 `json:"end,omitempty" yaml:"end,omitempty"`
	Conf  float64 `json:"conf,omitempty" yaml:"conf,omitempty"`
}

// Transcript is the text of one side of a comparison. Words is only set when
// the source carried word-level results.
type Transcript struct {
	Text  string
	Words []Word
}

// Tokens splits the transcript text for scoring.
func (t *Transcript) Tokens(opts tokenize.Options) []string {
	return tokenize.Split(t.Text, opts)
}

// Load reads and parses a transcript file.
func Load(path string) (*Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	tr, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tr, nil
}

// Read parses a transcript from r.
func Read(r io.Reader) (*Transcript, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse accepts plain text, a recognizer result object, an array of result
// objects, or one result object per line.
func Parse(data []byte) (*Transcript, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return &Transcript{}, nil
	}
	if !looksLikeJSON(trimmed) {
		return &Transcript{Text: string(trimmed)}, nil
	}
	results, err := splitResults(string(trimmed))
	if err != nil {
		return nil, err
	}
	tr := &Transcript{}
	var parts []string
	for _, res := range results {
		words := res.Get("result")
		if words.IsArray() && len(words.Array()) > 0 {
			words.ForEach(func(_, w gjson.Result) bool {
				word := Word{
					Text:  w.Get("word").String(),
					Start: w.Get("start").Float(),
					End:   w.Get("end").Float(),
					Conf:  w.Get("conf").Float(),
				}
				if word.Text != "" {
					tr.Words = append(tr.Words, word)
					parts = append(parts, word.Text)
				}
				return true
			})
			continue
		}
		if text := strings.TrimSpace(res.Get("text").String()); text != "" {
			parts = append(parts, text)
		}
	}
	tr.Text = strings.Join(parts, " ")
	return tr, nil
}

// looksLikeJSON reports whether data is a JSON document or starts a JSON
// lines stream. Plain text may open with a bracketed note like "[noise]".
func looksLikeJSON(data []byte) bool {
	if data[0] != '{' && data[0] != '[' {
		return false
	}
	if gjson.ValidBytes(data) {
		return true
	}
	first, _, _ := bytes.Cut(data, []byte("\n"))
	return gjson.ValidBytes(bytes.TrimSpace(first))
}

func splitResults(doc string) ([]gjson.Result, error) {
	if gjson.Valid(doc) {
		parsed := gjson.Parse(doc)
		if parsed.IsArray() {
			return parsed.Array(), nil
		}
		return []gjson.Result{parsed}, nil
	}
	var out []gjson.Result
	for n, line := range strings.Split(doc, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !gjson.Valid(line) {
			return nil, fmt.Errorf("invalid recognizer JSON on line %d", n+1)
		}
		out = append(out, gjson.Parse(line))
	}
	return out, nil
}
