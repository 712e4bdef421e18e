package wer

import (
	"strings"
	"testing"
)

func words(s string) []string { return strings.Fields(s) }

func TestBuildMatrixBorders(t *testing.T) {
	r, h := words("a b c"), words("x y")
	m := BuildMatrix(r, h)
	if m.Rows() != 4 || m.Cols() != 3 {
		t.Fatalf("dims = %dx%d, want 4x3", m.Rows(), m.Cols())
	}
	for i := 0; i < m.Rows(); i++ {
		if m.At(i, 0) != i {
			t.Fatalf("At(%d,0) = %d", i, m.At(i, 0))
		}
	}
	for j := 0; j < m.Cols(); j++ {
		if m.At(0, j) != j {
			t.Fatalf("At(0,%d) = %d", j, m.At(0, j))
		}
	}
}

func TestBuildMatrixValues(t *testing.T) {
	// he is here / she is
	m := BuildMatrix(words("he is here"), words("she is"))
	want := [][]int{
		{0, 1, 2},
		{1, 1, 2},
		{2, 2, 1},
		{3, 3, 2},
	}
	for i, row := range want {
		for j, v := range row {
			if got := m.At(i, j); got != v {
				t.Errorf("At(%d,%d) = %d, want %d", i, j, got, v)
			}
		}
	}
	if m.Distance() != 2 {
		t.Fatalf("Distance = %d, want 2", m.Distance())
	}
}

func TestBuildMatrixDistance(t *testing.T) {
	tests := []struct {
		name string
		r, h string
		want int
	}{
		{"both_empty", "", "", 0},
		{"empty_reference", "", "x y z", 3},
		{"empty_hypothesis", "a b", "", 2},
		{"identical", "a b c", "a b c", 0},
		{"one_delete", "what is it", "what is", 1},
		{"one_insert", "the cat sat", "the big cat sat", 1},
		{"one_substitute", "cat", "bat", 1},
		{"all_different", "the cat sat", "a dog ran", 3},
		{"mixed", "the quick brown fox jumps over the lazy dog", "a quick brown cat jumps the lazy dog", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildMatrix(words(tt.r), words(tt.h)).Distance(); got != tt.want {
				t.Errorf("Distance() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBuildMatrixLargeValues(t *testing.T) {
	// Costs above 255 must not wrap.
	r := make([]string, 300)
	for i := range r {
		r[i] = "w"
	}
	if d := BuildMatrix(r, nil).Distance(); d != 300 {
		t.Fatalf("Distance = %d, want 300", d)
	}
}
