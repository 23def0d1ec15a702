package model

type modelError string

func (e modelError) Error() string { return string(e) }

const (
	ErrInference     = modelError("inference failed")
	ErrShapeMismatch = modelError("unexpected output shape")
	ErrServerClosed  = modelError("server is closed")
)

// causeError tags cause with a sentinel. errors.Is matches both the sentinel
// and anything in the cause chain.
type causeError struct {
	kind  modelError
	cause error
}

func wrap(kind modelError, cause error) error {
	return &causeError{kind: kind, cause: cause}
}

func (e *causeError) Error() string        { return string(e.kind) + ": " + e.cause.Error() }
func (e *causeError) Cause() error         { return e.cause }
func (e *causeError) Unwrap() error        { return e.cause }
func (e *causeError) Is(target error) bool { return target == e.kind }
