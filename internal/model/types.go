package model

import "github.com/Brownie44l1/ocr-api/internal/preprocess"

type Metadata struct {
	InputName   string  `json:"input_name"`
	OutputName  string  `json:"output_name"`
	InputShape  []int64 `json:"input_shape"`
	OutputShape []int64 `json:"output_shape"`
	Classes     int     `json:"classes"`
	ChunkCount  int     `json:"chunk_count"`
}

// Options configures model construction. The zero value is usable.
type Options struct {
	// SharedLibraryPath points at the onnxruntime shared library. Empty uses
	// the onnxruntime_go default.
	SharedLibraryPath string

	IntraOpThreads int
	InterOpThreads int

	Preprocess preprocess.Options
}

func geometryMetadata(classes int) Metadata {
	return Metadata{
		InputShape:  []int64{-1, preprocess.Channels, preprocess.CanvasHeight, preprocess.ChunkWidth},
		OutputShape: []int64{-1, -1, int64(classes)},
		Classes:     classes,
		ChunkCount:  preprocess.ChunkCount,
	}
}

type DecodeRequest struct {
	Shape []int     `json:"shape"`
	Data  []float32 `json:"data"`
}

type DecodeResponse struct {
	Texts []string `json:"texts"`
}

type ImageResult struct {
	Filename string   `json:"filename"`
	Chunks   []string `json:"chunks"`
}

type RecognitionResponse struct {
	Results []ImageResult `json:"results"`
}

type HealthResponse struct {
	Status   string   `json:"status"`
	Metadata Metadata `json:"metadata"`
}
