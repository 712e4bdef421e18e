package wer

// InvalidInputError reports a caller contract violation, such as scoring
// against an empty reference.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return "invalid input: " + e.Reason
}
