package wer

import (
	"slices"
	"testing"
)

func TestBacktrace(t *testing.T) {
	tests := []struct {
		name string
		r, h string
		want Script
	}{
		{"both_empty", "", "", Script{}},
		{"only_inserts", "", "x y", Script{Insert, Insert}},
		{"only_deletes", "a b", "", Script{Delete, Delete}},
		{"identical", "a b c", "a b c", Script{Match, Match, Match}},
		{"trailing_delete", "what is it", "what is", Script{Match, Match, Delete}},
		{"substitute", "cat", "bat", Script{Substitute}},
		{"substitute_then_delete", "he is here", "she is", Script{Substitute, Match, Delete}},
		{"inner_insert", "the cat sat", "the big cat sat", Script{Match, Insert, Match, Match}},
		// Two optimal scripts exist; the insert is taken at the right edge.
		{"insert_preferred_late", "a", "b c", Script{Substitute, Insert}},
		// Two optimal scripts exist; the substitute is taken at the right edge.
		{"substitute_preferred_late", "a b", "c", Script{Delete, Substitute}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, h := words(tt.r), words(tt.h)
			got := Backtrace(r, h, BuildMatrix(r, h))
			if !slices.Equal(got, tt.want) {
				t.Errorf("Backtrace() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScriptCounts(t *testing.T) {
	c := Script{Match, Substitute, Insert, Insert, Delete, Match}.Counts()
	want := Counts{Matches: 2, Substitutions: 1, Insertions: 2, Deletions: 1}
	if c != want {
		t.Fatalf("Counts() = %+v, want %+v", c, want)
	}
	if c.Edits() != 4 {
		t.Fatalf("Edits() = %d, want 4", c.Edits())
	}
}

func TestOpText(t *testing.T) {
	for op, want := range map[Op]string{Match: "match", Substitute: "substitute", Insert: "insert", Delete: "delete"} {
		b, err := op.MarshalText()
		if err != nil || string(b) != want {
			t.Errorf("MarshalText(%d) = %q, %v", op, b, err)
		}
	}
	if Match.Marker() != "" || Substitute.Marker() != "S" || Insert.Marker() != "I" || Delete.Marker() != "D" {
		t.Fatalf("unexpected markers")
	}
}

func TestOpUnmarshalText(t *testing.T) {
	var op Op
	if err := op.UnmarshalText([]byte("insert")); err != nil || op != Insert {
		t.Fatalf("UnmarshalText(insert) = %v, %v", op, err)
	}
	if err := op.UnmarshalText([]byte("swap")); err == nil {
		t.Fatalf("expected error for unknown op")
	}
}
