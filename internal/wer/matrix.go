// Package wer scores a hypothesis token sequence against a reference and
// renders the alignment between them.
package wer

// Matrix is the Levenshtein cost grid for a reference/hypothesis pair,
// stored row-major with (len(reference)+1) rows and (len(hypothesis)+1) columns.
type Matrix struct {
	rows  int
	cols  int
	cells []int
}

// BuildMatrix fills the edit distance grid using unit insert, delete and
// substitute costs.
func BuildMatrix(reference, hypothesis []string) *Matrix {
	m := &Matrix{
		rows: len(reference) + 1,
		cols: len(hypothesis) + 1,
	}
	m.cells = make([]int, m.rows*m.cols)
	for i := 0; i < m.rows; i++ {
		m.set(i, 0, i)
	}
	for j := 0; j < m.cols; j++ {
		m.set(0, j, j)
	}
	for i := 1; i < m.rows; i++ {
		for j := 1; j < m.cols; j++ {
			if reference[i-1] == hypothesis[j-1] {
				m.set(i, j, m.At(i-1, j-1))
				continue
			}
			sub := m.At(i-1, j-1) + 1
			ins := m.At(i, j-1) + 1
			del := m.At(i-1, j) + 1
			m.set(i, j, min(sub, ins, del))
		}
	}
	return m
}

// At returns the cost of turning the first i reference tokens into the first
// j hypothesis tokens.
func (m *Matrix) At(i, j int) int {
	return m.cells[i*m.cols+j]
}

func (m *Matrix) set(i, j, v int) {
	m.cells[i*m.cols+j] = v
}

// Rows is len(reference)+1.
func (m *Matrix) Rows() int { return m.rows }

// Cols is len(hypothesis)+1.
func (m *Matrix) Cols() int { return m.cols }

// Distance is the minimal edit distance between the two full sequences.
func (m *Matrix) Distance() int {
	return m.At(m.rows-1, m.cols-1)
}
