package preprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gradientCanvas writes x%256 into red, y into green and a constant into blue.
func gradientCanvas() *Canvas {
	c := &Canvas{Pix: make([]uint8, CanvasWidth*CanvasHeight*Channels), ContentWidth: CanvasWidth}
	for y := 0; y < CanvasHeight; y++ {
		for x := 0; x < CanvasWidth; x++ {
			i := (y*CanvasWidth + x) * Channels
			c.Pix[i] = uint8(x % 256)
			c.Pix[i+1] = uint8(y)
			c.Pix[i+2] = 0x42
		}
	}
	return c
}

func TestSplitGeometry(t *testing.T) {
	chunks, err := Split(gradientCanvas())
	require.NoError(t, err)
	require.Len(t, chunks, ChunkCount)

	for i, c := range chunks {
		assert.Equal(t, ChunkLeft(i), c.Left)
		assert.Equal(t, []int{CanvasHeight, ChunkWidth, Channels}, []int(c.Data.Shape()))
	}
	assert.Equal(t, []int{0, 252, 504}, []int{chunks[0].Left, chunks[1].Left, chunks[2].Left})
}

func TestSplitContent(t *testing.T) {
	canvas := gradientCanvas()
	chunks, err := Split(canvas)
	require.NoError(t, err)

	for _, c := range chunks {
		data := c.Data.Data().([]float32)
		for _, x := range []int{0, 1, 47, 48, 150, 299} {
			for _, y := range []int{0, 13, 31} {
				r, g, b := canvas.RGB(c.Left+x, y)
				i := (y*ChunkWidth + x) * Channels
				assert.InDelta(t, float32(r)/255, data[i], 1e-6, "chunk@%d (%d,%d) red", c.Left, x, y)
				assert.InDelta(t, float32(g)/255, data[i+1], 1e-6)
				assert.InDelta(t, float32(b)/255, data[i+2], 1e-6)
			}
		}
	}
}

func TestSplitOverlap(t *testing.T) {
	chunks, err := Split(gradientCanvas())
	require.NoError(t, err)

	// The last ChunkOverlap columns of a chunk are the first columns of the next.
	for i := 0; i < ChunkCount-1; i++ {
		a := chunks[i].Data.Data().([]float32)
		b := chunks[i+1].Data.Data().([]float32)
		for x := 0; x < ChunkOverlap; x++ {
			ai := (5*ChunkWidth + ChunkStride + x) * Channels
			bi := (5*ChunkWidth + x) * Channels
			require.Equal(t, a[ai], b[bi], "chunks %d/%d column %d", i, i+1, x)
		}
	}
}

func TestSplitRejectsBadCanvas(t *testing.T) {
	_, err := Split(&Canvas{Pix: make([]uint8, 10)})
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestScale(t *testing.T) {
	got := Scale([]uint8{0, 51, 255})
	assert.InDeltaSlice(t, []float32{0, 0.2, 1}, got, 1e-6)
}
