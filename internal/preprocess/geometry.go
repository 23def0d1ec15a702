// Package preprocess turns decoded images into the fixed-geometry batch
// tensor consumed by the text recognition network.
//
// Every image is resized onto an 804x32 black canvas, the canvas is cut into
// three overlapping 300px windows and all windows are packed into a single
// float32 NCHW tensor.
package preprocess

// Geometry of the network input. These are fixed by training.
const (
	CanvasWidth  = 804
	CanvasHeight = 32
	Channels     = 3

	ChunkWidth   = 300
	ChunkOverlap = 48
	ChunkStride  = ChunkWidth - ChunkOverlap
	ChunkCount   = 3
)

// targetRatio is the width/height ratio of the canvas.
const targetRatio = float32(CanvasWidth) / float32(CanvasHeight)

// ChunkLeft returns the left edge of the i-th chunk on the canvas.
func ChunkLeft(i int) int {
	left := i * ChunkStride
	if last := CanvasWidth - ChunkWidth; left > last {
		left = last
	}
	return left
}

// BatchShape returns the NCHW shape of a batch built from n images.
func BatchShape(n int) []int {
	return []int{n * ChunkCount, Channels, CanvasHeight, ChunkWidth}
}
