// Command recognize prints the text found in each image file.
//
// Usage:
//
//	recognize -model <model.onnx> -vocab <vocab.txt> image...
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/Brownie44l1/ocr-api/internal/config"
	"github.com/Brownie44l1/ocr-api/internal/model"
	"github.com/Brownie44l1/ocr-api/internal/preprocess"
)

func main() {
	defaults, err := config.Load("", os.Getenv)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	modelPath := flag.String("model", defaults.ModelPath, "Path to the ONNX recognition model")
	vocabPath := flag.String("vocab", defaults.VocabPath, "Path to the vocabulary, one label per line")
	libPath := flag.String("ort", defaults.SharedLibraryPath, "Path to the onnxruntime shared library")
	workers := flag.Int("workers", defaults.Workers, "Images preprocessed concurrently")
	interp := flag.String("interpolation", string(defaults.Interpolation), "Resize filter: nearest, bilinear, bicubic or lanczos3")
	chunks := flag.Bool("chunks", false, "Print each chunk on its own line")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: recognize -model <model.onnx> -vocab <vocab.txt> image...")
		os.Exit(1)
	}

	interpolation, err := preprocess.ParseInterpolation(*interp)
	if err != nil {
		log.Fatal(err)
	}

	start := time.Now()
	s, err := model.NewServer(*modelPath, *vocabPath, model.Options{
		SharedLibraryPath: *libPath,
		IntraOpThreads:    defaults.IntraOpThreads,
		Preprocess: preprocess.Options{
			Workers:       *workers,
			Interpolation: interpolation,
		},
	})
	if err != nil {
		log.Fatalf("Failed to load model: %v", err)
	}
	defer s.Close()
	log.Printf("Model loaded in %v", time.Since(start))

	start = time.Now()
	texts, err := s.RecognizeFiles(context.Background(), flag.Args())
	if err != nil {
		log.Fatalf("Recognition failed: %v", err)
	}
	log.Printf("Recognized %d images in %v", len(texts), time.Since(start))

	for i, path := range flag.Args() {
		if *chunks {
			for j, c := range texts[i] {
				fmt.Printf("%s[%d]\t%s\n", path, j, c)
			}
			continue
		}
		fmt.Printf("%s\t%s\n", path, strings.Join(texts[i], " "))
	}
}
