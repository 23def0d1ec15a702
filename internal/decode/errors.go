package decode

type decodeError string

func (e decodeError) Error() string { return string(e) }

const (
	ErrVocabularyLoad  = decodeError("cannot load vocabulary")
	ErrShapeMismatch   = decodeError("probability tensor must be (batch, time, class)")
	ErrIndexOutOfRange = decodeError("probability tensor has fewer classes than the vocabulary")
)

// causeError tags cause with a sentinel. errors.Is matches both the sentinel
// and anything in the cause chain.
type causeError struct {
	kind  decodeError
	cause error
}

func wrap(kind decodeError, cause error) error {
	return &causeError{kind: kind, cause: cause}
}

func (e *causeError) Error() string        { return string(e.kind) + ": " + e.cause.Error() }
func (e *causeError) Cause() error         { return e.cause }
func (e *causeError) Unwrap() error        { return e.cause }
func (e *causeError) Is(target error) bool { return target == e.kind }
