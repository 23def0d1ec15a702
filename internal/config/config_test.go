package config

import (
	"path/filepath"
	"testing"

	"github.com/Brownie44l1/ocr-api/internal/preprocess"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadDefaults(t *testing.T) {
	c, err := Load("/srv/ocr", env(nil))
	require.NoError(t, err)

	assert.Equal(t, "8080", c.Port)
	assert.Equal(t, filepath.Join("/srv/ocr", "models", "model.onnx"), c.ModelPath)
	assert.Equal(t, filepath.Join("/srv/ocr", "models", "vocab.txt"), c.VocabPath)
	assert.Equal(t, preprocess.Nearest, c.Interpolation)
	assert.Equal(t, int64(32<<20), c.MaxUploadBytes)
	assert.Positive(t, c.Workers)
}

func TestLoadOverrides(t *testing.T) {
	c, err := Load("/srv/ocr", env(map[string]string{
		"PORT":                 "9000",
		"MODEL_PATH":           "/models/rec.onnx",
		"VOCAB_PATH":           "dict.txt",
		"ORT_LIBRARY_PATH":     "/usr/lib/libonnxruntime.so",
		"OCR_WORKERS":          "3",
		"ORT_INTRA_OP_THREADS": "2",
		"OCR_INTERPOLATION":    "bilinear",
		"MAX_UPLOAD_MB":        "4",
	}))
	require.NoError(t, err)

	assert.Equal(t, "9000", c.Port)
	assert.Equal(t, "/models/rec.onnx", c.ModelPath)
	assert.Equal(t, filepath.Join("/srv/ocr", "dict.txt"), c.VocabPath)
	assert.Equal(t, int64(4<<20), c.MaxUploadBytes)

	opts := c.ModelOptions()
	assert.Equal(t, "/usr/lib/libonnxruntime.so", opts.SharedLibraryPath)
	assert.Equal(t, 2, opts.IntraOpThreads)
	assert.Equal(t, 3, opts.Preprocess.Workers)
	assert.Equal(t, preprocess.Bilinear, opts.Preprocess.Interpolation)
}

func TestLoadInvalid(t *testing.T) {
	for k, v := range map[string]string{
		"OCR_WORKERS":          "many",
		"ORT_INTRA_OP_THREADS": "-1",
		"MAX_UPLOAD_MB":        "1.5",
		"OCR_INTERPOLATION":    "sinc",
	} {
		_, err := Load("", env(map[string]string{k: v}))
		assert.Error(t, err, "%s=%s", k, v)
	}
}
