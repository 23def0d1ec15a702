package main

import (
	"log"
	"net/http"

	"github.com/Brownie44l1/ocr-api/internal/config"
	"github.com/Brownie44l1/ocr-api/internal/handlers"
	"github.com/Brownie44l1/ocr-api/internal/model"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	log.Printf("Loading model from: %s", cfg.ModelPath)
	log.Printf("Loading vocabulary from: %s", cfg.VocabPath)

	modelServer, err := model.NewServer(cfg.ModelPath, cfg.VocabPath, cfg.ModelOptions())
	if err != nil {
		log.Fatalf("Failed to initialize model server: %v", err)
	}
	defer modelServer.Close()

	handler := handlers.NewHandler(modelServer, cfg.MaxUploadBytes)

	meta := modelServer.Metadata
	log.Printf("Server starting on port %s", cfg.Port)
	log.Printf("Model input %q %v, output %q %v", meta.InputName, meta.InputShape, meta.OutputName, meta.OutputShape)
	log.Printf("Classes: %d (vocabulary %d + %d reserved)", meta.Classes, modelServer.Vocabulary().Len(), meta.Classes-modelServer.Vocabulary().Len())
	log.Printf("Preprocessing workers: %d, interpolation: %s", cfg.Workers, cfg.Interpolation)
	log.Println("Endpoints:")
	log.Println("  GET  /health    - Health check")
	log.Println("  POST /recognize - Recognize text in uploaded images")
	log.Println("  POST /decode    - Decode a raw probability tensor")
	log.Printf("Upload test: curl -X POST -F \"image=@line.png\" http://localhost:%s/recognize", cfg.Port)

	if err := http.ListenAndServe(":"+cfg.Port, handler.Routes()); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
