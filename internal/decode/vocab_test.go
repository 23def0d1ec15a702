package decode

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVocabularyOffset(t *testing.T) {
	v, err := LoadVocabulary(strings.NewReader("a\nb\nc\n"))
	require.NoError(t, err)
	assert.Equal(t, 3, v.Len())
	assert.Equal(t, 5, v.Classes())

	for class, want := range map[int]string{2: "a", 3: "b", 4: "c"} {
		got, ok := v.Label(class)
		assert.True(t, ok, "class %d", class)
		assert.Equal(t, want, got)
	}
	for _, class := range []int{-1, 0, 1, 5, 100} {
		_, ok := v.Label(class)
		assert.False(t, ok, "class %d must not resolve", class)
	}
}

func TestLoadVocabularyLines(t *testing.T) {
	v, err := LoadVocabularyBytes([]byte("x\r\ny\n\n z\nlast"))
	require.NoError(t, err)
	require.Equal(t, 5, v.Len())

	want := []string{"x", "y", "", " z", "last"}
	for i, w := range want {
		got, _ := v.Label(i + Reserved)
		assert.Equal(t, w, got, "line %d", i)
	}

	empty, err := LoadVocabularyBytes(nil)
	require.NoError(t, err)
	assert.Equal(t, Reserved, empty.Classes())
}

func TestLoadVocabularyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vocab.txt")
	require.NoError(t, os.WriteFile(path, []byte("的\n一\n"), 0o644))

	v, err := LoadVocabularyFile(path)
	require.NoError(t, err)
	label, ok := v.Label(3)
	assert.True(t, ok)
	assert.Equal(t, "一", label)

	_, err = LoadVocabularyFile(filepath.Join(dir, "nope.txt"))
	assert.ErrorIs(t, err, ErrVocabularyLoad)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLoadVocabularyInvalidUTF8(t *testing.T) {
	_, err := LoadVocabularyBytes([]byte("a\nb\xff\nc\n"))
	assert.ErrorIs(t, err, ErrVocabularyLoad)
	assert.Contains(t, err.Error(), "line 2")

	path := filepath.Join(t.TempDir(), "latin1.txt")
	require.NoError(t, os.WriteFile(path, []byte("caf\xe9\n"), 0o644))
	_, err = LoadVocabularyFile(path)
	assert.ErrorIs(t, err, ErrVocabularyLoad)
}

func TestNewVocabularyCopies(t *testing.T) {
	labels := []string{"a", "b"}
	v := NewVocabulary(labels)
	labels[0] = "changed"

	got, _ := v.Label(2)
	assert.Equal(t, "a", got)
}
