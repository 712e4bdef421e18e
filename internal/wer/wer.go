package wer

import "fmt"

// Evaluation is the outcome of scoring one reference/hypothesis pair.
type Evaluation struct {
	Reference  []string
	Hypothesis []string
	Script     Script
	Alignment  *Alignment
	Result     Result
}

// Evaluate builds the cost matrix, recovers the edit script, renders the
// alignment and computes the rates. It fails with *InvalidInputError when the
// reference is empty and the hypothesis is not.
func Evaluate(reference, hypothesis []string) (*Evaluation, error) {
	if len(reference) == 0 && len(hypothesis) > 0 {
		return nil, &InvalidInputError{Reason: fmt.Sprintf("reference is empty (hypothesis has %d tokens); error rate is undefined", len(hypothesis))}
	}
	m := BuildMatrix(reference, hypothesis)
	script := Backtrace(reference, hypothesis, m)
	alignment, err := Render(script, reference, hypothesis)
	if err != nil {
		return nil, err
	}
	res, err := Rates(m.Distance(), len(reference))
	if err != nil {
		return nil, err
	}
	res.HypothesisLength = len(hypothesis)
	res.Counts = script.Counts()
	return &Evaluation{
		Reference:  reference,
		Hypothesis: hypothesis,
		Script:     script,
		Alignment:  alignment,
		Result:     res,
	}, nil
}

// Lines returns the three alignment rows followed by the rate lines.
func (e *Evaluation) Lines() []string {
	rows := e.Alignment.Lines()
	return []string{
		rows[0],
		rows[1],
		rows[2],
		"Word Error Rate: " + e.Result.ErrorRateString(),
		"Word Accuracy: " + e.Result.AccuracyString(),
	}
}
