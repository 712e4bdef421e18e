// Package report renders scoring results as text, JSON or YAML.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"werdiff/internal/wer"

	"gopkg.in/yaml.v3"
)

// Rows are the joined alignment rows without labels.
type Rows struct {
	Reference  string `json:"reference" yaml:"reference"`
	Hypothesis string `json:"hypothesis" yaml:"hypothesis"`
	Evaluation string `json:"evaluation" yaml:"evaluation"`
}

// Document is the serialisable result for one pair.
type Document struct {
	Name          string     `json:"name,omitempty" yaml:"name,omitempty"`
	Result        wer.Result `json:"result" yaml:"result"`
	WordErrorRate string     `json:"word_error_rate" yaml:"word_error_rate"`
	WordAccuracy  string     `json:"word_accuracy" yaml:"word_accuracy"`
	CharErrorRate *float64   `json:"char_error_rate,omitempty" yaml:"char_error_rate,omitempty"`
	Alignment     Rows       `json:"alignment" yaml:"alignment"`
	Script        wer.Script `json:"script" yaml:"script"`
}

// New builds a document from an evaluation.
func New(name string, ev *wer.Evaluation) Document {
	return Document{
		Name:          name,
		Result:        ev.Result,
		WordErrorRate: ev.Result.ErrorRateString(),
		WordAccuracy:  ev.Result.AccuracyString(),
		Alignment: Rows{
			Reference:  strings.Join(ev.Alignment.ReferenceRow(), " "),
			Hypothesis: strings.Join(ev.Alignment.HypothesisRow(), " "),
			Evaluation: strings.Join(ev.Alignment.EvaluationRow(), " "),
		},
		Script: ev.Script,
	}
}

// SetCER attaches a character error rate (percent).
func (d *Document) SetCER(v float64) {
	d.CharErrorRate = &v
}

// Lines is the plain-text rendering of the document.
func (d *Document) Lines() []string {
	lines := []string{
		wer.Line(wer.LabelReference, d.Alignment.Reference),
		wer.Line(wer.LabelHypothesis, d.Alignment.Hypothesis),
		wer.Line(wer.LabelEvaluation, d.Alignment.Evaluation),
		"Word Error Rate: " + d.WordErrorRate,
		"Word Accuracy: " + d.WordAccuracy,
	}
	if d.CharErrorRate != nil {
		lines = append(lines, "Character Error Rate: "+wer.FormatPercent(*d.CharErrorRate))
	}
	return lines
}

// Write renders v in the given format. Text output needs a Document or Batch.
func Write(w io.Writer, format string, v any) error {
	switch strings.ToLower(format) {
	case "", "text":
		return writeText(w, v)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func writeText(w io.Writer, v any) error {
	switch doc := v.(type) {
	case Document:
		return writeLines(w, doc.Lines())
	case *Document:
		return writeLines(w, doc.Lines())
	case Batch:
		return doc.writeText(w)
	case *Batch:
		return doc.writeText(w)
	default:
		return fmt.Errorf("text output not supported for %T", v)
	}
}

func writeLines(w io.Writer, lines []string) error {
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}
