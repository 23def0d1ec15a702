package preprocess

import (
	"context"
	"image"
	"runtime"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gorgonia.org/tensor"
)

// Options controls how a batch is built.
type Options struct {
	// Workers bounds how many images are normalized concurrently.
	// Zero means runtime.NumCPU().
	Workers int

	Interpolation Interpolation
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.NumCPU()
}

var chunkShape = tensor.Shape{CanvasHeight, ChunkWidth, Channels}

// Pack stacks the chunks of every image into one (N, C, H, W) tensor, with
// N = ChunkCount * len(images). Row k holds chunk k%ChunkCount of image
// k/ChunkCount.
func Pack(images [][ChunkCount]Chunk) (*tensor.Dense, error) {
	if len(images) == 0 {
		return nil, ErrEmptyBatch
	}

	stacked := make([]*tensor.Dense, len(images))
	for i, chunks := range images {
		for j, c := range chunks {
			if c.Data == nil {
				return nil, errors.Wrapf(ErrShapeMismatch, "image %d chunk %d is empty", i, j)
			}
			if !c.Data.Shape().Eq(chunkShape) {
				return nil, errors.Wrapf(ErrShapeMismatch, "image %d chunk %d: got %v, want %v", i, j, c.Data.Shape(), chunkShape)
			}
		}

		others := make([]*tensor.Dense, 0, ChunkCount-1)
		for _, c := range chunks[1:] {
			others = append(others, c.Data)
		}
		s, err := chunks[0].Data.Stack(0, others...)
		if err != nil {
			return nil, errors.Wrapf(err, "stack image %d", i)
		}
		stacked[i] = s
	}

	batch := stacked[0]
	if len(stacked) > 1 {
		var err error
		if batch, err = stacked[0].Concat(0, stacked[1:]...); err != nil {
			return nil, errors.Wrap(err, "concat batch")
		}
	}

	// NHWC -> NCHW
	if err := batch.T(0, 3, 1, 2); err != nil {
		return nil, errors.Wrap(err, "permute batch")
	}
	if err := batch.Transpose(); err != nil {
		return nil, errors.Wrap(err, "permute batch")
	}
	return batch, nil
}

// Batch normalizes and splits every image, then packs them in input order.
func Batch(ctx context.Context, images []image.Image, opts Options) (*tensor.Dense, error) {
	return build(ctx, len(images), opts, func(i int) (image.Image, error) {
		return images[i], nil
	})
}

// BatchBytes decodes every buffer and builds a batch from the results.
func BatchBytes(ctx context.Context, data [][]byte, opts Options) (*tensor.Dense, error) {
	return build(ctx, len(data), opts, func(i int) (image.Image, error) {
		return Decode(data[i])
	})
}

// BatchFiles decodes every file and builds a batch from the results.
func BatchFiles(ctx context.Context, paths []string, opts Options) (*tensor.Dense, error) {
	return build(ctx, len(paths), opts, func(i int) (image.Image, error) {
		return DecodeFile(paths[i])
	})
}

func build(ctx context.Context, n int, opts Options, load func(int) (image.Image, error)) (*tensor.Dense, error) {
	if n == 0 {
		return nil, ErrEmptyBatch
	}

	sets := make([][ChunkCount]Chunk, n)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers())
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := load(i)
			if err != nil {
				return errors.WithMessagef(err, "image %d", i)
			}
			canvas, err := NormalizeWith(img, opts.Interpolation)
			if err != nil {
				return errors.WithMessagef(err, "image %d", i)
			}
			if sets[i], err = Split(canvas); err != nil {
				return errors.WithMessagef(err, "image %d", i)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return Pack(sets)
}
