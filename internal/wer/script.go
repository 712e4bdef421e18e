package wer

import (
	"fmt"
	"slices"
)

// Op is a single step of an edit script.
type Op uint8

const (
	Match Op = iota
	Substitute
	Insert
	Delete
)

func (o Op) String() string {
	switch o {
	case Match:
		return "match"
	case Substitute:
		return "substitute"
	case Insert:
		return "insert"
	case Delete:
		return "delete"
	default:
		return fmt.Sprintf("op(%d)", uint8(o))
	}
}

// Marker is the evaluation-row letter for the op; empty for Match.
func (o Op) Marker() string {
	switch o {
	case Substitute:
		return "S"
	case Insert:
		return "I"
	case Delete:
		return "D"
	default:
		return ""
	}
}

// MarshalText lets scripts serialise as readable names.
func (o Op) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Op) UnmarshalText(b []byte) error {
	for _, cand := range []Op{Match, Substitute, Insert, Delete} {
		if cand.String() == string(b) {
			*o = cand
			return nil
		}
	}
	return fmt.Errorf("unknown edit op %q", b)
}

// consumesReference reports whether the op advances the reference cursor.
func (o Op) consumesReference() bool { return o != Insert }

// consumesHypothesis reports whether the op advances the hypothesis cursor.
func (o Op) consumesHypothesis() bool { return o != Delete }

// Script is an ordered edit script, left to right.
type Script []Op

// Counts tallies each op kind in a script.
type Counts struct {
	Matches       int `json:"matches" yaml:"matches"`
	Substitutions int `json:"substitutions" yaml:"substitutions"`
	Insertions    int `json:"insertions" yaml:"insertions"`
	Deletions     int `json:"deletions" yaml:"deletions"`
}

// Edits is the number of non-match steps.
func (c Counts) Edits() int {
	return c.Substitutions + c.Insertions + c.Deletions
}

func (s Script) Counts() Counts {
	var c Counts
	for _, op := range s {
		switch op {
		case Match:
			c.Matches++
		case Substitute:
			c.Substitutions++
		case Insert:
			c.Insertions++
		case Delete:
			c.Deletions++
		}
	}
	return c
}

// Backtrace walks the matrix from the bottom-right corner back to the origin
// and returns the edit script in reading order.
//
// When several predecessors are optimal the walk prefers, in order: match,
// insert, substitute, delete. The displayed alignment depends on this order;
// the distance does not.
func Backtrace(reference, hypothesis []string, m *Matrix) Script {
	x, y := len(reference), len(hypothesis)
	steps := make(Script, 0, max(x, y))
	for x > 0 || y > 0 {
		switch {
		case x >= 1 && y >= 1 && m.At(x, y) == m.At(x-1, y-1) && reference[x-1] == hypothesis[y-1]:
			steps = append(steps, Match)
			x--
			y--
		case y >= 1 && m.At(x, y) == m.At(x, y-1)+1:
			steps = append(steps, Insert)
			y--
		case x >= 1 && y >= 1 && m.At(x, y) == m.At(x-1, y-1)+1:
			steps = append(steps, Substitute)
			x--
			y--
		default:
			steps = append(steps, Delete)
			x--
		}
	}
	slices.Reverse(steps)
	return steps
}
