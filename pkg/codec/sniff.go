package codec

import (
	"bytes"
	"encoding/binary"
)

// Layout identifies how the frames of a container are prefixed.
type Layout int

const (
	LayoutUnknown Layout = iota
	// LayoutGuarded is the canonical [0x00][len][0x00] prefix.
	LayoutGuarded
	// LayoutLegacyU16 is an early draft: a 0x00 end marker after the field
	// preamble, then frames prefixed with a little-endian uint16 length. It is
	// recognized for diagnostics only and is never decoded.
	LayoutLegacyU16
)

func (l Layout) String() string {
	switch l {
	case LayoutGuarded:
		return "guarded"
	case LayoutLegacyU16:
		return "legacy-u16"
	default:
		return "unknown"
	}
}

// HasPreamble reports whether buf starts with the fixed container preamble.
func HasPreamble(buf []byte) bool {
	if len(buf) < PreambleSize {
		return false
	}
	off := 0
	for _, part := range [][]byte{Header, StartMarker, FieldPreamble} {
		if !bytes.Equal(buf[off:off+len(part)], part) {
			return false
		}
		off += len(part)
	}
	return true
}

// DetectLayout walks buf under each known layout and reports the first one
// that ends exactly on a frame boundary. The guarded layout wins ties.
func DetectLayout(buf []byte) Layout {
	if len(buf) < PreambleSize {
		return LayoutUnknown
	}
	if walksGuarded(buf) {
		return LayoutGuarded
	}
	if walksLegacyU16(buf) {
		return LayoutLegacyU16
	}
	return LayoutUnknown
}

func walksGuarded(buf []byte) bool {
	it := NewFrameIterator(buf, PreambleSize)
	for it.Next() {
	}
	return it.Err() == nil
}

func walksLegacyU16(buf []byte) bool {
	off := PreambleSize
	if off >= len(buf) || buf[off] != 0x00 {
		return false
	}
	off++
	for off < len(buf) {
		if off+2 > len(buf) {
			return false
		}
		off += 2 + int(binary.LittleEndian.Uint16(buf[off:]))
	}
	return off == len(buf)
}
