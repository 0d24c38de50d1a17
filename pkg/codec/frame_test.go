package codec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeFrame(t *testing.T) {
	frame, err := EncodeFrame("11252", "10/1/2013", "Fg", "", "")
	require.NoError(t, err)

	assert.Equal(t, byte(0x00), frame[0])
	assert.Equal(t, byte(21), frame[1])
	assert.Equal(t, byte(0x00), frame[2])
	assert.Equal(t, "11252\t10/1/2013\tFg\t\t\t", string(frame[FramePrefixSize:]))
}

func TestEncodeFrame_TooLarge(t *testing.T) {
	_, err := EncodeFrame(strings.Repeat("a", 255))
	assert.ErrorIs(t, err, ErrRecordTooLarge)

	frame, err := EncodeFrame(strings.Repeat("a", 254))
	require.NoError(t, err)
	assert.Equal(t, byte(255), frame[1])
}

func TestEncodeFrame_MultiByteLength(t *testing.T) {
	// 85 three-byte runes plus the terminator tab is 256 bytes
	_, err := EncodeFrame(strings.Repeat("가", 85))
	assert.ErrorIs(t, err, ErrRecordTooLarge)
}

func TestDecodeFrame(t *testing.T) {
	buf := []byte{0xAA, 0x00, 0x02, 0x00, 'h', 'i', 0x00, 0x00, 0x00}

	frame, next, err := DecodeFrame(buf, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, frame.Offset)
	assert.Equal(t, []byte("hi"), frame.Payload)
	assert.Equal(t, 5, frame.Size())
	assert.Equal(t, 6, next)

	frame, next, err = DecodeFrame(buf, next)
	require.NoError(t, err)
	assert.Empty(t, frame.Payload)
	assert.Equal(t, len(buf), next)
}

func TestDecodeFrame_Errors(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		want error
	}{
		{name: "first guard", buf: []byte{0x01, 0x00, 0x00}, want: ErrFrameStructure},
		{name: "second guard", buf: []byte{0x00, 0x00, 0x01}, want: ErrFrameStructure},
		{name: "no prefix", buf: []byte{0x00, 0x00}, want: ErrTruncatedContainer},
		{name: "short payload", buf: []byte{0x00, 0x03, 0x00, 'a', 'b'}, want: ErrTruncatedContainer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, next, err := DecodeFrame(tt.buf, 0)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, 0, next)

			var frameErr *FrameError
			require.ErrorAs(t, err, &frameErr)
			assert.Equal(t, 0, frameErr.Offset)
		})
	}
}

func TestSplitFields(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    []string
		wantErr bool
	}{
		{
			name:    "canonical",
			payload: "11252\t10/1/2013\tFg\t\t\t",
			want:    []string{"11252", "10/1/2013", "Fg", "", ""},
		},
		{
			name:    "no terminator",
			payload: "a\tb\tc\td\te",
			want:    []string{"a", "b", "c", "d", "e"},
		},
		{
			name:    "extra fields ignored",
			payload: "a\tb\tc\td\te\tf\t",
			want:    []string{"a", "b", "c", "d", "e"},
		},
		{
			name:    "four fields with terminator",
			payload: "a\tb\tc\td\t",
			wantErr: true,
		},
		{
			name:    "empty",
			payload: "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SplitFields([]byte(tt.payload))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedRecordPayload)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFrameIterator(t *testing.T) {
	var buf []byte
	for _, p := range []string{"one", "", "three"} {
		f, err := EncodeFrame(p)
		require.NoError(t, err)
		buf = append(buf, f...)
	}

	it := NewFrameIterator(buf, 0)
	var payloads []string
	for it.Next() {
		payloads = append(payloads, string(it.Frame().Payload))
	}
	require.NoError(t, it.Err())
	assert.Equal(t, []string{"one\t", "\t", "three\t"}, payloads)
	assert.Equal(t, len(buf), it.Offset())

	it = NewFrameIterator(append(buf, 0x00), 0)
	for it.Next() {
	}
	assert.ErrorIs(t, it.Err(), ErrTruncatedContainer)
	assert.False(t, it.Next())
}
