package preprocess

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
	"gorgonia.org/vecf32"
)

// Chunk is one horizontal window of a canvas.
type Chunk struct {
	// Left is the chunk's left edge on the canvas.
	Left int
	// Data holds the window as (CanvasHeight, ChunkWidth, Channels) float32
	// values in [0, 1].
	Data *tensor.Dense
}

type slicer struct {
	err error
}

func (s *slicer) slice(a *tensor.Dense, slices ...tensor.Slice) *tensor.Dense {
	if s.err != nil {
		return nil
	}
	v, err := a.Slice(slices...)
	if err != nil {
		s.err = errors.Wrapf(err, "slice %v", a.Shape())
		return nil
	}
	return v.Materialize().(*tensor.Dense)
}

// Scale converts bytes to float32 values in [0, 1].
func Scale(pix []uint8) []float32 {
	out := make([]float32, len(pix))
	for i, p := range pix {
		out[i] = float32(p)
	}
	vecf32.ScaleInv(out, 255)
	return out
}

// Split cuts the canvas into ChunkCount overlapping windows, left to right.
// The last window is clamped to the right edge of the canvas.
func Split(c *Canvas) ([ChunkCount]Chunk, error) {
	var chunks [ChunkCount]Chunk
	if len(c.Pix) != CanvasHeight*CanvasWidth*Channels {
		return chunks, errors.Wrapf(ErrShapeMismatch, "canvas has %d bytes", len(c.Pix))
	}

	frame := tensor.New(
		tensor.WithShape(CanvasHeight, CanvasWidth, Channels),
		tensor.WithBacking(Scale(c.Pix)),
	)

	var s slicer
	for i := range chunks {
		left := ChunkLeft(i)
		right := min(left+ChunkWidth, CanvasWidth)
		chunks[i] = Chunk{
			Left: left,
			Data: s.slice(frame, nil, tensor.S(left, right), nil),
		}
	}
	if s.err != nil {
		return chunks, s.err
	}
	return chunks, nil
}
