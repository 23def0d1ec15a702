package model

import (
	"sync"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
	"gorgonia.org/tensor"
)

// Engine runs the recognition network: (N, 3, 32, 300) pixels in, (N, T, K)
// scores out.
type Engine interface {
	Forward(batch *tensor.Dense) (*tensor.Dense, error)
	Close() error
}

var envMu sync.Mutex

func initEnvironment(libPath string) error {
	envMu.Lock()
	defer envMu.Unlock()

	if ort.IsInitialized() {
		return nil
	}
	if libPath != "" {
		ort.SetSharedLibraryPath(libPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return errors.Wrap(err, "failed to initialize ONNX environment")
	}
	return nil
}

func destroyEnvironment() error {
	envMu.Lock()
	defer envMu.Unlock()

	if !ort.IsInitialized() {
		return nil
	}
	return ort.DestroyEnvironment()
}

type onnxEngine struct {
	session *ort.DynamicAdvancedSession
	options *ort.SessionOptions
}

// modelSource is either a path or an in-memory model.
type modelSource struct {
	path string
	data []byte
}

func (m modelSource) info() ([]ort.InputOutputInfo, []ort.InputOutputInfo, error) {
	if m.data != nil {
		return ort.GetInputOutputInfoWithONNXData(m.data)
	}
	return ort.GetInputOutputInfo(m.path)
}

func (m modelSource) session(inputs, outputs []string, opts *ort.SessionOptions) (*ort.DynamicAdvancedSession, error) {
	if m.data != nil {
		return ort.NewDynamicAdvancedSessionWithONNXData(m.data, inputs, outputs, opts)
	}
	return ort.NewDynamicAdvancedSession(m.path, inputs, outputs, opts)
}

func newOnnxEngine(src modelSource, opts Options) (*onnxEngine, Metadata, error) {
	var meta Metadata
	if err := initEnvironment(opts.SharedLibraryPath); err != nil {
		return nil, meta, err
	}

	inputs, outputs, err := src.info()
	if err != nil {
		return nil, meta, errors.Wrap(err, "failed to read model inputs and outputs")
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return nil, meta, errors.Errorf("model has %d inputs and %d outputs", len(inputs), len(outputs))
	}
	meta = Metadata{
		InputName:   inputs[0].Name,
		OutputName:  outputs[0].Name,
		InputShape:  inputs[0].Dimensions,
		OutputShape: outputs[0].Dimensions,
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, meta, errors.Wrap(err, "failed to create session options")
	}
	if opts.IntraOpThreads > 0 {
		if err := options.SetIntraOpNumThreads(opts.IntraOpThreads); err != nil {
			options.Destroy()
			return nil, meta, errors.Wrap(err, "failed to set intra-op threads")
		}
	}
	if opts.InterOpThreads > 0 {
		if err := options.SetInterOpNumThreads(opts.InterOpThreads); err != nil {
			options.Destroy()
			return nil, meta, errors.Wrap(err, "failed to set inter-op threads")
		}
	}

	session, err := src.session([]string{meta.InputName}, []string{meta.OutputName}, options)
	if err != nil {
		options.Destroy()
		return nil, meta, errors.Wrap(err, "failed to create ONNX session")
	}

	return &onnxEngine{session: session, options: options}, meta, nil
}

func (e *onnxEngine) Forward(batch *tensor.Dense) (*tensor.Dense, error) {
	data, ok := batch.Data().([]float32)
	if !ok {
		return nil, errors.Errorf("batch must be float32, got %v", batch.Dtype())
	}
	dims := make([]int64, 0, batch.Dims())
	for _, d := range batch.Shape() {
		dims = append(dims, int64(d))
	}

	input, err := ort.NewTensor(ort.NewShape(dims...), data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create input tensor")
	}
	defer input.Destroy()

	outputs := []ort.ArbitraryTensor{nil}
	if err := e.session.Run([]ort.ArbitraryTensor{input}, outputs); err != nil {
		return nil, err
	}
	defer outputs[0].Destroy()

	out, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, errors.Errorf("output is %T, want float32 tensor", outputs[0])
	}

	// The output tensor is freed on return, so copy it out.
	probs := make([]float32, len(out.GetData()))
	copy(probs, out.GetData())
	shape := make([]int, 0, len(out.GetShape()))
	for _, d := range out.GetShape() {
		shape = append(shape, int(d))
	}
	return tensor.New(tensor.WithShape(shape...), tensor.WithBacking(probs)), nil
}

func (e *onnxEngine) Close() error {
	if e.session != nil {
		e.session.Destroy()
	}
	if e.options != nil {
		e.options.Destroy()
	}
	return destroyEnvironment()
}
