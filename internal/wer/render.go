package wer

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Cell is one column of the rendered alignment. Reference, Hypothesis and
// Evaluation always share the same width.
type Cell struct {
	Op         Op     `json:"op" yaml:"op"`
	RefIndex   int    `json:"ref_index" yaml:"ref_index"` // -1 for Insert
	HypIndex   int    `json:"hyp_index" yaml:"hyp_index"` // -1 for Delete
	Reference  string `json:"reference" yaml:"reference"`
	Hypothesis string `json:"hypothesis" yaml:"hypothesis"`
	Evaluation string `json:"evaluation" yaml:"evaluation"`
}

// Width is the display width of the column in code points.
func (c Cell) Width() int {
	return tokenWidth(c.Reference)
}

// Alignment holds one cell per edit script entry.
type Alignment struct {
	Cells []Cell `json:"cells" yaml:"cells"`
}

// Render turns an edit script into padded display cells. The script must
// consume exactly the given reference and hypothesis tokens.
func Render(script Script, reference, hypothesis []string) (*Alignment, error) {
	a := &Alignment{Cells: make([]Cell, 0, len(script))}
	// ri and hi are the prefix counts i-#Insert and i-#Delete for entry i.
	ri, hi := 0, 0
	for pos, op := range script {
		if op.consumesReference() && ri >= len(reference) {
			return nil, &InvalidInputError{Reason: fmt.Sprintf("script step %d (%s) runs past %d reference tokens", pos, op, len(reference))}
		}
		if op.consumesHypothesis() && hi >= len(hypothesis) {
			return nil, &InvalidInputError{Reason: fmt.Sprintf("script step %d (%s) runs past %d hypothesis tokens", pos, op, len(hypothesis))}
		}
		c := Cell{Op: op, RefIndex: -1, HypIndex: -1}
		switch op {
		case Match:
			tok := reference[ri]
			c.RefIndex, c.HypIndex = ri, hi
			c.Reference = tok
			c.Hypothesis = hypothesis[hi]
			c.Evaluation = pad("", tokenWidth(tok))
		case Substitute:
			ref, hyp := reference[ri], hypothesis[hi]
			w := max(tokenWidth(ref), tokenWidth(hyp), 1)
			c.RefIndex, c.HypIndex = ri, hi
			c.Reference = pad(ref, w)
			c.Hypothesis = pad(hyp, w)
			c.Evaluation = pad(op.Marker(), w)
		case Insert:
			hyp := hypothesis[hi]
			w := max(tokenWidth(hyp), 1)
			c.HypIndex = hi
			c.Reference = pad("", w)
			c.Hypothesis = pad(hyp, w)
			c.Evaluation = pad(op.Marker(), w)
		case Delete:
			ref := reference[ri]
			w := max(tokenWidth(ref), 1)
			c.RefIndex = ri
			c.Reference = pad(ref, w)
			c.Hypothesis = pad("", w)
			c.Evaluation = pad(op.Marker(), w)
		default:
			return nil, &InvalidInputError{Reason: fmt.Sprintf("script step %d has unknown %s", pos, op)}
		}
		if op.consumesReference() {
			ri++
		}
		if op.consumesHypothesis() {
			hi++
		}
		a.Cells = append(a.Cells, c)
	}
	if ri != len(reference) || hi != len(hypothesis) {
		return nil, &InvalidInputError{Reason: fmt.Sprintf("script consumed %d/%d reference and %d/%d hypothesis tokens", ri, len(reference), hi, len(hypothesis))}
	}
	return a, nil
}

func (a *Alignment) ReferenceRow() []string {
	return a.row(func(c Cell) string { return c.Reference })
}

func (a *Alignment) HypothesisRow() []string {
	return a.row(func(c Cell) string { return c.Hypothesis })
}

func (a *Alignment) EvaluationRow() []string {
	return a.row(func(c Cell) string { return c.Evaluation })
}

func (a *Alignment) row(pick func(Cell) string) []string {
	out := make([]string, len(a.Cells))
	for i, c := range a.Cells {
		out[i] = pick(c)
	}
	return out
}

const (
	LabelReference  = "REFERENCE:"
	LabelHypothesis = "HYPOTHESIS:"
	LabelEvaluation = "EVALUATION:"
)

// Lines joins the three rows with single spaces behind their labels.
func (a *Alignment) Lines() [3]string {
	return [3]string{
		Line(LabelReference, strings.Join(a.ReferenceRow(), " ")),
		Line(LabelHypothesis, strings.Join(a.HypothesisRow(), " ")),
		Line(LabelEvaluation, strings.Join(a.EvaluationRow(), " ")),
	}
}

// Line prefixes a joined row with its label, padded so that all three rows
// start in the same column. Trailing blanks are trimmed.
func Line(label, row string) string {
	w := max(len(LabelReference), len(LabelHypothesis), len(LabelEvaluation))
	return strings.TrimRight(fmt.Sprintf("%-*s %s", w, label, row), " ")
}

func tokenWidth(s string) int {
	return utf8.RuneCountInString(s)
}

func pad(s string, width int) string {
	if n := width - tokenWidth(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}
