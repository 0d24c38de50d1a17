package codec

import (
	"bytes"
	"strings"

	"github.com/cockroachdb/errors"
)

const (
	// FramePrefixSize is the guarded length prefix: guard, length, guard.
	FramePrefixSize = 3
	// MaxPayloadSize is the largest payload a one-byte length slot can describe.
	MaxPayloadSize = 255

	guardByte      = 0x00
	fieldSeparator = '\t'
)

// Frame is a single length-prefixed record payload inside a container.
type Frame struct {
	Offset  int    // absolute offset of the prefix within the container
	Payload []byte // payload bytes, aliasing the container buffer
}

// Size returns the encoded size of the frame including its prefix.
func (f Frame) Size() int {
	return FramePrefixSize + len(f.Payload)
}

// JoinFields joins values with tabs and appends the trailing tab terminator.
func JoinFields(values ...string) []byte {
	var b bytes.Buffer
	for _, v := range values {
		b.WriteString(v)
		b.WriteByte(fieldSeparator)
	}
	return b.Bytes()
}

// EncodeFrame builds the frame for the given field values.
// Format: [0x00][len][0x00][payload]
func EncodeFrame(values ...string) ([]byte, error) {
	payload := JoinFields(values...)
	if len(payload) > MaxPayloadSize {
		return nil, errors.Wrapf(ErrRecordTooLarge, "payload is %d bytes, limit %d", len(payload), MaxPayloadSize)
	}

	buf := make([]byte, FramePrefixSize+len(payload))
	buf[0] = guardByte
	buf[1] = byte(len(payload))
	buf[2] = guardByte
	copy(buf[FramePrefixSize:], payload)
	return buf, nil
}

// DecodeFrame reads the frame starting at offset and returns it together with
// the offset of the next frame.
func DecodeFrame(buf []byte, offset int) (Frame, int, error) {
	if offset+FramePrefixSize > len(buf) {
		return Frame{}, offset, frameError(offset, ErrTruncatedContainer)
	}
	if buf[offset] != guardByte || buf[offset+2] != guardByte {
		return Frame{}, offset, frameError(offset, ErrFrameStructure)
	}

	length := int(buf[offset+1])
	start := offset + FramePrefixSize
	end := start + length
	if end > len(buf) {
		return Frame{}, offset, frameError(offset, ErrTruncatedContainer)
	}

	return Frame{Offset: offset, Payload: buf[start:end]}, end, nil
}

// SplitFields splits a frame payload into exactly FieldCount values. The
// trailing terminator tab is dropped before splitting; extra values are
// ignored.
func SplitFields(payload []byte) ([]string, error) {
	s := strings.TrimSuffix(string(payload), string(fieldSeparator))
	parts := strings.Split(s, string(fieldSeparator))
	if len(parts) < FieldCount {
		return nil, errors.Wrapf(ErrMalformedRecordPayload, "got %d fields, want %d", len(parts), FieldCount)
	}
	return parts[:FieldCount], nil
}

// FrameIterator walks the frames of a container buffer in order
type FrameIterator struct {
	buf    []byte
	offset int
	frame  Frame
	err    error
}

// NewFrameIterator returns an iterator positioned at offset.
func NewFrameIterator(buf []byte, offset int) *FrameIterator {
	return &FrameIterator{buf: buf, offset: offset}
}

// Next advances to the next frame. It returns false at the end of the buffer
// or on a structural error; check Err to tell them apart.
func (it *FrameIterator) Next() bool {
	if it.err != nil || it.offset >= len(it.buf) {
		return false
	}

	frame, next, err := DecodeFrame(it.buf, it.offset)
	if err != nil {
		it.err = err
		return false
	}

	it.frame = frame
	it.offset = next
	return true
}

// Frame returns the current frame.
func (it *FrameIterator) Frame() Frame {
	return it.frame
}

// Offset returns the offset of the next unread frame.
func (it *FrameIterator) Offset() int {
	return it.offset
}

// Err returns the structural error that stopped iteration, if any.
func (it *FrameIterator) Err() error {
	return it.err
}
