package report

import (
	"fmt"
	"io"

	"werdiff/internal/wer"
)

// Failure records a pair that could not be scored.
type Failure struct {
	Name  string `json:"name" yaml:"name"`
	Error string `json:"error" yaml:"error"`
}

// Corpus aggregates edit counts over all scored pairs.
type Corpus struct {
	Pairs           int     `json:"pairs" yaml:"pairs"`
	Scored          int     `json:"scored" yaml:"scored"`
	EditDistance    int     `json:"edit_distance" yaml:"edit_distance"`
	ReferenceLength int     `json:"reference_length" yaml:"reference_length"`
	ErrorRate       float64 `json:"error_rate" yaml:"error_rate"`
	WordErrorRate   string  `json:"word_error_rate" yaml:"word_error_rate"`
	WordAccuracy    string  `json:"word_accuracy" yaml:"word_accuracy"`
	wer.Counts      `yaml:",inline"`
}

// Batch is the report for a manifest run.
type Batch struct {
	Documents []Document `json:"pairs" yaml:"pairs"`
	Failures  []Failure  `json:"failures,omitempty" yaml:"failures,omitempty"`
	Corpus    Corpus     `json:"corpus" yaml:"corpus"`
}

func (b *Batch) writeText(w io.Writer) error {
	for _, d := range b.Documents {
		if _, err := fmt.Fprintf(w, "== %s\n", d.Name); err != nil {
			return err
		}
		if err := writeLines(w, d.Lines()); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	for _, f := range b.Failures {
		if _, err := fmt.Fprintf(w, "!! %s: %s\n", f.Name, f.Error); err != nil {
			return err
		}
	}
	c := b.Corpus
	_, err := fmt.Fprintf(w, "Corpus: %d/%d pairs scored, %d edits over %d reference words (S=%d I=%d D=%d)\nCorpus Word Error Rate: %s\nCorpus Word Accuracy: %s\n",
		c.Scored, c.Pairs, c.EditDistance, c.ReferenceLength, c.Substitutions, c.Insertions, c.Deletions, c.WordErrorRate, c.WordAccuracy)
	return err
}
