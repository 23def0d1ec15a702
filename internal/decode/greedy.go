package decode

import (
	"strings"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

func float32s(t *tensor.Dense) ([]float32, error) {
	data, ok := t.Data().([]float32)
	if !ok {
		return nil, errors.Wrapf(ErrShapeMismatch, "want float32 data, got %v", t.Dtype())
	}
	return data, nil
}

func dims(t *tensor.Dense) (n, steps, classes int, err error) {
	s := t.Shape()
	if len(s) != 3 {
		return 0, 0, 0, errors.Wrapf(ErrShapeMismatch, "got shape %v", s)
	}
	return s[0], s[1], s[2], nil
}

// Softmax normalizes t in place along its last axis.
func Softmax(t *tensor.Dense) error {
	data, err := float32s(t)
	if err != nil {
		return err
	}
	s := t.Shape()
	if len(s) == 0 || s[len(s)-1] == 0 {
		return nil
	}

	k := s[len(s)-1]
	for off := 0; off+k <= len(data); off += k {
		row := data[off : off+k]
		peak := row[0]
		for _, v := range row[1:] {
			if v > peak {
				peak = v
			}
		}
		var sum float32
		for i, v := range row {
			row[i] = math32.Exp(v - peak)
			sum += row[i]
		}
		for i := range row {
			row[i] /= sum
		}
	}
	return nil
}

// Argmax returns, for every row of a (N, T, K) tensor, the most likely class
// at each timestep. Ties go to the lowest index.
func Argmax(t *tensor.Dense) ([][]int, error) {
	n, steps, classes, err := dims(t)
	if err != nil {
		return nil, err
	}
	data, err := float32s(t)
	if err != nil {
		return nil, err
	}

	rows := make([][]int, n)
	if classes == 0 {
		return rows, nil
	}
	for i := range rows {
		rows[i] = make([]int, steps)
		for j := range rows[i] {
			off := (i*steps + j) * classes
			best := 0
			for k := 1; k < classes; k++ {
				if data[off+k] > data[off+best] {
					best = k
				}
			}
			rows[i][j] = best
		}
	}
	return rows, nil
}

// Collapse performs greedy CTC decoding of one row of class indices: runs of
// the same index emit once, the blank (0) separates runs and never emits, and
// indices the vocabulary cannot resolve are skipped.
func Collapse(classes []int, v *Vocabulary) string {
	var sb strings.Builder
	last := 0
	for _, p := range classes {
		if p != last && p != 0 {
			if label, ok := v.Label(p); ok {
				sb.WriteString(label)
			}
		}
		last = p
	}
	return sb.String()
}

// Decode turns a (N, T, K) probability tensor into N strings, in row order.
func Decode(t *tensor.Dense, v *Vocabulary) ([]string, error) {
	_, _, classes, err := dims(t)
	if err != nil {
		return nil, err
	}
	if classes < v.Classes() {
		return nil, errors.Wrapf(ErrIndexOutOfRange, "got %d classes, vocabulary needs %d", classes, v.Classes())
	}

	rows, err := Argmax(t)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(rows))
	for i, row := range rows {
		out[i] = Collapse(row, v)
	}
	return out, nil
}
