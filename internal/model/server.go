package model

import (
	"context"
	"image"
	"sync"

	"github.com/Brownie44l1/ocr-api/internal/decode"
	"github.com/Brownie44l1/ocr-api/internal/preprocess"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// Server owns a loaded recognition model and its vocabulary. It is safe for
// concurrent use; Close waits for in-flight calls.
type Server struct {
	Metadata Metadata

	engine Engine
	vocab  *decode.Vocabulary
	opts   preprocess.Options

	mu     sync.RWMutex
	closed bool
}

// NewServer loads the ONNX model and the vocabulary from disk.
func NewServer(modelPath, vocabPath string, opts Options) (*Server, error) {
	vocab, err := decode.LoadVocabularyFile(vocabPath)
	if err != nil {
		return nil, errors.WithMessage(err, vocabPath)
	}
	return newOnnxServer(modelSource{path: modelPath}, vocab, opts)
}

// NewServerFromMemory builds a server from an in-memory model and vocabulary.
func NewServerFromMemory(modelData, vocabData []byte, opts Options) (*Server, error) {
	if len(modelData) == 0 {
		return nil, errors.New("empty model data")
	}
	vocab, err := decode.LoadVocabularyBytes(vocabData)
	if err != nil {
		return nil, err
	}
	return newOnnxServer(modelSource{data: modelData}, vocab, opts)
}

func newOnnxServer(src modelSource, vocab *decode.Vocabulary, opts Options) (*Server, error) {
	engine, meta, err := newOnnxEngine(src, opts)
	if err != nil {
		return nil, err
	}

	shape := meta.OutputShape
	if len(shape) == 3 && shape[2] > 0 && int(shape[2]) < vocab.Classes() {
		engine.Close()
		return nil, errors.Wrapf(decode.ErrIndexOutOfRange, "model predicts %d classes, vocabulary needs %d", shape[2], vocab.Classes())
	}

	meta.Classes = vocab.Classes()
	meta.ChunkCount = preprocess.ChunkCount
	return &Server{
		Metadata: meta,
		engine:   engine,
		vocab:    vocab,
		opts:     opts.Preprocess,
	}, nil
}

// NewServerWithEngine wraps an already constructed engine.
func NewServerWithEngine(engine Engine, vocab *decode.Vocabulary, opts Options) *Server {
	return &Server{
		Metadata: geometryMetadata(vocab.Classes()),
		engine:   engine,
		vocab:    vocab,
		opts:     opts.Preprocess,
	}
}

// Vocabulary returns the loaded vocabulary.
func (s *Server) Vocabulary() *decode.Vocabulary { return s.vocab }

// Forward runs the network on a packed batch and returns per-timestep class
// probabilities shaped (N, T, K).
func (s *Server) Forward(batch *tensor.Dense) (*tensor.Dense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrServerClosed
	}

	probs, err := s.engine.Forward(batch)
	if err != nil {
		return nil, wrap(ErrInference, err)
	}

	shape := probs.Shape()
	if len(shape) != 3 || shape[0] != batch.Shape()[0] {
		return nil, errors.Wrapf(ErrShapeMismatch, "batch %v produced %v", batch.Shape(), shape)
	}
	if err := decode.Softmax(probs); err != nil {
		return nil, err
	}
	return probs, nil
}

// Decode turns probabilities into one string per batch row.
func (s *Server) Decode(probs *tensor.Dense) ([]string, error) {
	return decode.Decode(probs, s.vocab)
}

// Recognize reads the text in each image. Every image yields ChunkCount
// strings, one per window, left to right.
func (s *Server) Recognize(ctx context.Context, images []image.Image) ([][]string, error) {
	batch, err := preprocess.Batch(ctx, images, s.opts)
	if err != nil {
		return nil, err
	}
	return s.recognize(batch)
}

// RecognizeBytes is Recognize over encoded images.
func (s *Server) RecognizeBytes(ctx context.Context, data [][]byte) ([][]string, error) {
	batch, err := preprocess.BatchBytes(ctx, data, s.opts)
	if err != nil {
		return nil, err
	}
	return s.recognize(batch)
}

// RecognizeFiles is Recognize over image files.
func (s *Server) RecognizeFiles(ctx context.Context, paths []string) ([][]string, error) {
	batch, err := preprocess.BatchFiles(ctx, paths, s.opts)
	if err != nil {
		return nil, err
	}
	return s.recognize(batch)
}

func (s *Server) recognize(batch *tensor.Dense) ([][]string, error) {
	probs, err := s.Forward(batch)
	if err != nil {
		return nil, err
	}
	texts, err := s.Decode(probs)
	if err != nil {
		return nil, err
	}

	out := make([][]string, 0, len(texts)/preprocess.ChunkCount)
	for i := 0; i+preprocess.ChunkCount <= len(texts); i += preprocess.ChunkCount {
		out = append(out, texts[i:i+preprocess.ChunkCount])
	}
	return out, nil
}

func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.engine.Close()
}
