package wer

import "fmt"

// Result holds the scoring numbers for one pair. ErrorRate and Accuracy are
// percentages.
type Result struct {
	EditDistance     int     `json:"edit_distance" yaml:"edit_distance"`
	ReferenceLength  int     `json:"reference_length" yaml:"reference_length"`
	HypothesisLength int     `json:"hypothesis_length" yaml:"hypothesis_length"`
	ErrorRate        float64 `json:"error_rate" yaml:"error_rate"`
	Accuracy         float64 `json:"accuracy" yaml:"accuracy"`
	Counts           `yaml:",inline"`
}

// Rates derives the error rate and accuracy from an edit distance.
// A zero-length reference is only valid when there is nothing to edit.
func Rates(editDistance, referenceLength int) (Result, error) {
	if referenceLength < 0 || editDistance < 0 {
		return Result{}, &InvalidInputError{Reason: fmt.Sprintf("negative length or distance (%d, %d)", referenceLength, editDistance)}
	}
	if referenceLength == 0 {
		if editDistance != 0 {
			return Result{}, &InvalidInputError{Reason: fmt.Sprintf("reference is empty but edit distance is %d; error rate is undefined", editDistance)}
		}
		return Result{Accuracy: 100}, nil
	}
	rate := float64(editDistance) / float64(referenceLength) * 100
	return Result{
		EditDistance:    editDistance,
		ReferenceLength: referenceLength,
		ErrorRate:       rate,
		Accuracy:        100 - rate,
	}, nil
}

// FormatPercent renders a percentage with two decimals, e.g. "33.33%".
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

func (r Result) ErrorRateString() string { return FormatPercent(r.ErrorRate) }

func (r Result) AccuracyString() string { return FormatPercent(r.Accuracy) }
