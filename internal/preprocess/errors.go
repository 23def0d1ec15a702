package preprocess

type preprocessError string

func (e preprocessError) Error() string { return string(e) }

const (
	ErrImageDecode            = preprocessError("cannot decode image")
	ErrInvalidImageDimensions = preprocessError("image width and height must be non-zero")
	ErrShapeMismatch          = preprocessError("chunk shape mismatch")
	ErrEmptyBatch             = preprocessError("no images to pack")
)

// causeError tags cause with a sentinel. errors.Is matches both the sentinel
// and anything in the cause chain.
type causeError struct {
	kind  preprocessError
	cause error
}

func wrap(kind preprocessError, cause error) error {
	return &causeError{kind: kind, cause: cause}
}

func (e *causeError) Error() string        { return string(e.kind) + ": " + e.cause.Error() }
func (e *causeError) Cause() error         { return e.cause }
func (e *causeError) Unwrap() error        { return e.cause }
func (e *causeError) Is(target error) bool { return target == e.kind }
