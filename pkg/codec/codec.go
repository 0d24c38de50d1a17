package codec

var (
	defaultEncoder = NewEncoder()
	defaultDecoder = NewDecoder()
)

// Encode builds a container with the default encoder.
func Encode(records []Transaction) *EncodeResult {
	return defaultEncoder.Encode(records)
}

// Decode reads a container with the default decoder.
func Decode(buf []byte) (*DecodeResult, error) {
	return defaultDecoder.Decode(buf)
}
