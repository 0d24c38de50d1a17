package codec

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Per-record errors are reported through a Report and never abort a batch.
// Structural errors (ErrFrameStructure, ErrTruncatedContainer) abort a decode.
var (
	ErrMalformedDate          = errors.New("codec: malformed date")
	ErrRecordTooLarge         = errors.New("codec: record exceeds frame payload limit")
	ErrFrameStructure         = errors.New("codec: unexpected frame guard bytes")
	ErrTruncatedContainer     = errors.New("codec: truncated container")
	ErrMalformedRecordPayload = errors.New("codec: malformed record payload")
)

// FrameError locates a structural decode failure within the container buffer.
type FrameError struct {
	Offset int   // absolute offset of the frame start
	Err    error // ErrFrameStructure or ErrTruncatedContainer
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("%v at offset %d", e.Err, e.Offset)
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

func frameError(offset int, err error) error {
	return &FrameError{Offset: offset, Err: err}
}

// IsFatal reports whether err is a structural error that invalidates the rest
// of a container.
func IsFatal(err error) bool {
	return errors.Is(err, ErrFrameStructure) || errors.Is(err, ErrTruncatedContainer)
}
