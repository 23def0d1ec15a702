package preprocess

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decode decodes an encoded image. The format is sniffed from the data.
func Decode(data []byte) (image.Image, error) {
	return decodeReader(bytes.NewReader(data))
}

// DecodeFile opens and decodes the image at path.
func DecodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open %s", path)
	}
	defer f.Close()

	img, err := decodeReader(f)
	if err != nil {
		return nil, errors.WithMessage(err, path)
	}
	return img, nil
}

func decodeReader(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, wrap(ErrImageDecode, err)
	}
	return img, nil
}
