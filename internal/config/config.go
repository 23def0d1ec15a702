// Package config reads runtime settings from the environment.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/Brownie44l1/ocr-api/internal/model"
	"github.com/Brownie44l1/ocr-api/internal/preprocess"
	"github.com/pkg/errors"
)

type Config struct {
	Port              string
	ModelPath         string
	VocabPath         string
	SharedLibraryPath string
	Workers           int
	IntraOpThreads    int
	Interpolation     preprocess.Interpolation
	MaxUploadBytes    int64
}

// Load reads the configuration using getenv. Relative model and vocabulary
// paths are resolved against root.
func Load(root string, getenv func(string) string) (Config, error) {
	c := Config{
		Port:              getenv("PORT"),
		ModelPath:         getenv("MODEL_PATH"),
		VocabPath:         getenv("VOCAB_PATH"),
		SharedLibraryPath: getenv("ORT_LIBRARY_PATH"),
		Workers:           runtime.NumCPU(),
		MaxUploadBytes:    32 << 20,
	}
	if c.Port == "" {
		c.Port = "8080"
	}
	if c.ModelPath == "" {
		c.ModelPath = filepath.Join("models", "model.onnx")
	}
	if c.VocabPath == "" {
		c.VocabPath = filepath.Join("models", "vocab.txt")
	}
	c.ModelPath = resolve(root, c.ModelPath)
	c.VocabPath = resolve(root, c.VocabPath)

	var err error
	if c.Workers, err = intEnv(getenv, "OCR_WORKERS", c.Workers); err != nil {
		return c, err
	}
	if c.IntraOpThreads, err = intEnv(getenv, "ORT_INTRA_OP_THREADS", 0); err != nil {
		return c, err
	}
	upload, err := intEnv(getenv, "MAX_UPLOAD_MB", 32)
	if err != nil {
		return c, err
	}
	c.MaxUploadBytes = int64(upload) << 20
	if c.Interpolation, err = preprocess.ParseInterpolation(getenv("OCR_INTERPOLATION")); err != nil {
		return c, err
	}
	return c, nil
}

// FromEnv loads the configuration from the process environment, relative to
// the project root.
func FromEnv() (Config, error) {
	root, err := ProjectRoot()
	if err != nil {
		return Config{}, err
	}
	return Load(root, os.Getenv)
}

// ProjectRoot returns the working directory, stepping out of cmd/<name> when
// run from there with go run.
func ProjectRoot() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", errors.Wrap(err, "failed to get working directory")
	}
	if filepath.Base(filepath.Dir(wd)) == "cmd" {
		wd = filepath.Join(wd, "..", "..")
	}
	return filepath.Clean(wd), nil
}

// ModelOptions returns the options used to build the model server.
func (c Config) ModelOptions() model.Options {
	return model.Options{
		SharedLibraryPath: c.SharedLibraryPath,
		IntraOpThreads:    c.IntraOpThreads,
		Preprocess: preprocess.Options{
			Workers:       c.Workers,
			Interpolation: c.Interpolation,
		},
	}
}

func resolve(root, p string) string {
	if filepath.IsAbs(p) || root == "" {
		return p
	}
	return filepath.Join(root, p)
}

func intEnv(getenv func(string) string, key string, def int) (int, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errors.Errorf("%s must be a non-negative integer, got %q", key, v)
	}
	return n, nil
}
