package preprocess

import (
	"image"
	"image/color"

	"github.com/chewxy/math32"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"
)

// Interpolation selects the resampling filter used when fitting an image
// onto the canvas. The recognition model was trained on Nearest.
type Interpolation string

const (
	Nearest  Interpolation = "nearest"
	Bilinear Interpolation = "bilinear"
	Bicubic  Interpolation = "bicubic"
	Lanczos3 Interpolation = "lanczos3"
)

// ParseInterpolation maps a filter name to an Interpolation. The empty string
// is Nearest.
func ParseInterpolation(s string) (Interpolation, error) {
	switch i := Interpolation(s); i {
	case "":
		return Nearest, nil
	case Nearest, Bilinear, Bicubic, Lanczos3:
		return i, nil
	}
	return "", errors.Errorf("unknown interpolation %q", s)
}

var smoothing = map[Interpolation]resize.InterpolationFunction{
	Bilinear: resize.Bilinear,
	Bicubic:  resize.Bicubic,
	Lanczos3: resize.Lanczos3,
}

var black = image.NewUniform(color.NRGBA{A: 0xff})

// Canvas is a fixed CanvasWidth x CanvasHeight RGB frame. Pix is row-major
// with Channels bytes per pixel.
type Canvas struct {
	Pix []uint8

	// ContentWidth is the number of leading columns covered by the resized
	// image. Columns past it are black.
	ContentWidth int
}

// RGB returns the pixel at (x, y).
func (c *Canvas) RGB(x, y int) (r, g, b uint8) {
	i := (y*CanvasWidth + x) * Channels
	return c.Pix[i], c.Pix[i+1], c.Pix[i+2]
}

// fitSize returns the size the image is resized to before it is placed on
// the canvas. Images relatively wider than the canvas are squeezed to fill it
// completely; the rest keep their aspect ratio at full canvas height.
func fitSize(width, height int) (w, h int) {
	ratio := float32(width) / float32(height)
	if ratio > targetRatio {
		return CanvasWidth, CanvasHeight
	}

	w = int(math32.Round(CanvasHeight * ratio))
	switch {
	case w < 1:
		w = 1
	case w > CanvasWidth:
		w = CanvasWidth
	}
	return w, CanvasHeight
}

// Normalize fits img onto a black canvas using nearest neighbour resampling.
func Normalize(img image.Image) (*Canvas, error) {
	return NormalizeWith(img, Nearest)
}

// NormalizeWith is Normalize with an explicit resampling filter.
func NormalizeWith(img image.Image, interp Interpolation) (*Canvas, error) {
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, errors.Wrapf(ErrInvalidImageDimensions, "got %dx%d", bounds.Dx(), bounds.Dy())
	}

	w, h := fitSize(bounds.Dx(), bounds.Dy())
	target := image.Rect(0, 0, w, h)

	mask := image.NewNRGBA(image.Rect(0, 0, CanvasWidth, CanvasHeight))
	draw.Draw(mask, mask.Bounds(), black, image.Point{}, draw.Src)

	if fn, ok := smoothing[interp]; ok {
		resized := resize.Resize(uint(w), uint(h), img, fn)
		draw.Draw(mask, target, resized, resized.Bounds().Min, draw.Src)
	} else {
		draw.NearestNeighbor.Scale(mask, target, img, bounds, draw.Src, nil)
	}

	canvas := &Canvas{
		Pix:          make([]uint8, CanvasWidth*CanvasHeight*Channels),
		ContentWidth: w,
	}
	for i, j := 0, 0; i < len(mask.Pix); i, j = i+4, j+Channels {
		canvas.Pix[j] = mask.Pix[i]
		canvas.Pix[j+1] = mask.Pix[i+1]
		canvas.Pix[j+2] = mask.Pix[i+2]
	}
	return canvas, nil
}
