package protocol

import (
	"errors"
	"fmt"
)

var (
	// ErrStructuralMismatch means a structural check failed, most visibly
	// a nonzero end-of-data sentinel at the end of a frame. Once the
	// cursor has drifted every previously decoded field is suspect, so
	// the whole message is rejected. The usual cause is decoding with
	// the wrong protocol version.
	ErrStructuralMismatch = errors.New("structural mismatch (likely protocol version mismatch)")

	// ErrTruncated means the source ran out of bytes in the middle of a
	// primitive. Distinct from ErrTransport because it usually signals a
	// version mismatch rather than a broken connection.
	ErrTruncated = errors.New("not enough bytes for complete message")

	// ErrTransport wraps I/O failures other than running out of input.
	ErrTransport = errors.New("transport failure")

	// ErrTextDecoding means a nul-terminated string field did not hold
	// valid UTF-8.
	ErrTextDecoding = errors.New("invalid text in string field")
)

// UnknownMessageTypeError is returned when the envelope carries a type
// code this decoder does not recognize.
type UnknownMessageTypeError struct {
	Code uint16
}

func (e *UnknownMessageTypeError) Error() string {
	return fmt.Sprintf("unknown message type %d", e.Code)
}

// UnknownDatasetTypeError is returned when a model definition entry
// carries an unrecognized discriminant. The entry length is unknowable,
// so decoding cannot skip it and must abort.
type UnknownDatasetTypeError struct {
	Code int32
}

func (e *UnknownDatasetTypeError) Error() string {
	return fmt.Sprintf("unknown model definition type %d", e.Code)
}

func (e *UnknownDatasetTypeError) Unwrap() error { return ErrStructuralMismatch }
