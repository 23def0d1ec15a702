// Package decode turns the recognition network's per-timestep class
// probabilities back into text.
package decode

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// Reserved is the number of class indices in front of the first label.
// Index 0 is the CTC blank; index 1 is never emitted either.
const Reserved = 2

// Vocabulary maps class indices to labels. It is immutable once loaded.
type Vocabulary struct {
	labels []string
}

// NewVocabulary returns a vocabulary whose i-th label is class i+Reserved.
func NewVocabulary(labels []string) *Vocabulary {
	l := make([]string, len(labels))
	copy(l, labels)
	return &Vocabulary{labels: l}
}

// LoadVocabulary reads one label per line. Every line must be valid UTF-8.
func LoadVocabulary(r io.Reader) (*Vocabulary, error) {
	var labels []string
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 4096), 1<<20)
	for s.Scan() {
		line := s.Text()
		if !utf8.ValidString(line) {
			return nil, wrap(ErrVocabularyLoad, errors.Errorf("line %d is not valid UTF-8", len(labels)+1))
		}
		labels = append(labels, line)
	}
	if err := s.Err(); err != nil {
		return nil, wrap(ErrVocabularyLoad, err)
	}
	return &Vocabulary{labels: labels}, nil
}

// LoadVocabularyBytes reads a vocabulary held in memory.
func LoadVocabularyBytes(data []byte) (*Vocabulary, error) {
	return LoadVocabulary(bytes.NewReader(data))
}

// LoadVocabularyFile reads the vocabulary file at path.
func LoadVocabularyFile(path string) (*Vocabulary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, wrap(ErrVocabularyLoad, err)
	}
	defer f.Close()
	return LoadVocabulary(f)
}

// Len is the number of labels.
func (v *Vocabulary) Len() int { return len(v.labels) }

// Classes is the number of classes the network must predict: every label
// plus the reserved indices.
func (v *Vocabulary) Classes() int { return len(v.labels) + Reserved }

// Label resolves a class index. Reserved and out of range indices do not
// resolve.
func (v *Vocabulary) Label(class int) (string, bool) {
	i := class - Reserved
	if i < 0 || i >= len(v.labels) {
		return "", false
	}
	return v.labels[i], true
}
