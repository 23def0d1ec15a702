package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/Brownie44l1/ocr-api/internal/decode"
	"github.com/Brownie44l1/ocr-api/internal/model"
	"github.com/Brownie44l1/ocr-api/internal/preprocess"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

type Handler struct {
	modelServer    *model.Server
	maxUploadBytes int64
}

func NewHandler(modelServer *model.Server, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 32 << 20
	}
	return &Handler{
		modelServer:    modelServer,
		maxUploadBytes: maxUploadBytes,
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

// badImage reports whether a recognition error was caused by the uploaded
// images rather than the server.
func badImage(err error) bool {
	return errors.Is(err, preprocess.ErrImageDecode) ||
		errors.Is(err, preprocess.ErrInvalidImageDimensions) ||
		errors.Is(err, preprocess.ErrEmptyBatch)
}

// badTensor reports whether a decode error was caused by the submitted
// probability tensor.
func badTensor(err error) bool {
	return errors.Is(err, decode.ErrShapeMismatch) ||
		errors.Is(err, decode.ErrIndexOutOfRange)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, model.HealthResponse{
		Status:   "healthy",
		Metadata: h.modelServer.Metadata,
	})
}

// Recognize reads every "image" file of a multipart upload and returns the
// text of each chunk.
func (h *Handler) Recognize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}
	files := r.MultipartForm.File["image"]
	if len(files) == 0 {
		http.Error(w, "No image file provided. Use 'image' as the form field name", http.StatusBadRequest)
		return
	}

	images := make([][]byte, len(files))
	results := make([]model.ImageResult, len(files))
	for i, header := range files {
		f, err := header.Open()
		if err != nil {
			http.Error(w, "Failed to read upload", http.StatusBadRequest)
			return
		}
		images[i], err = io.ReadAll(f)
		f.Close()
		if err != nil {
			http.Error(w, "Failed to read upload", http.StatusBadRequest)
			return
		}
		results[i].Filename = header.Filename
		log.Printf("Received file: %s, size: %d bytes", header.Filename, header.Size)
	}

	texts, err := h.modelServer.RecognizeBytes(r.Context(), images)
	if err != nil {
		log.Printf("Recognition error: %v", err)
		if badImage(err) {
			http.Error(w, fmt.Sprintf("Invalid image: %v", err), http.StatusBadRequest)
			return
		}
		http.Error(w, "Recognition failed", http.StatusInternalServerError)
		return
	}
	for i := range results {
		results[i].Chunks = texts[i]
	}

	writeJSON(w, model.RecognitionResponse{Results: results})
}

// Decode decodes a raw (N, T, K) probability tensor sent as JSON.
func (h *Handler) Decode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req model.DecodeRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, h.maxUploadBytes)).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if len(req.Shape) != 3 {
		http.Error(w, fmt.Sprintf("Expected shape [batch, time, classes], got %v", req.Shape), http.StatusBadRequest)
		return
	}
	// The running product never exceeds len(req.Data), so it cannot overflow.
	expectedSize := 1
	for _, dim := range req.Shape {
		if dim <= 0 {
			http.Error(w, fmt.Sprintf("Invalid shape %v", req.Shape), http.StatusBadRequest)
			return
		}
		if dim > len(req.Data)/expectedSize {
			http.Error(w, fmt.Sprintf("Shape %v does not match %d values", req.Shape, len(req.Data)),
				http.StatusBadRequest)
			return
		}
		expectedSize *= dim
	}
	if len(req.Data) != expectedSize {
		http.Error(w, fmt.Sprintf("Expected %d values, got %d", expectedSize, len(req.Data)),
			http.StatusBadRequest)
		return
	}

	probs := tensor.New(tensor.WithShape(req.Shape...), tensor.WithBacking(req.Data))
	texts, err := h.modelServer.Decode(probs)
	if err != nil {
		log.Printf("Decode error: %v", err)
		if badTensor(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "Decode failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, model.DecodeResponse{Texts: texts})
}
