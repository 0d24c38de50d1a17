package codec

import (
	"bytes"

	"github.com/cockroachdb/errors"
)

// Fixed container preamble. The header and start marker are opaque and are
// copied verbatim; the decoder never interprets them.
var (
	Header        = []byte{0x00, 0x3D, 0x42, 0x04, 0x00, 0x00}
	StartMarker   = []byte{0x2F, 0x00}
	FieldPreamble = []byte("playerID\ttransactionDate1\tType\tFromTeam\tToTeam\t")
)

// PreambleSize is the offset of the first frame in every container.
const PreambleSize = 6 + 2 + len("playerID\ttransactionDate1\tType\tFromTeam\tToTeam\t")

// EncodeResult is the output of an encode batch.
type EncodeResult struct {
	Buffer []byte
	Report Report
}

// DecodeResult is the output of a decode. Complete is false when a structural
// error stopped the decode; Records then holds what was read before the fault.
type DecodeResult struct {
	Records  []Transaction
	Report   Report
	Complete bool
}

// Option configures an Encoder or Decoder.
type Option func(*options)

type options struct {
	reporter func(Outcome)
}

// WithReporter registers a callback invoked for every dropped or warned record
// as the batch runs.
func WithReporter(fn func(Outcome)) Option {
	return func(o *options) {
		o.reporter = fn
	}
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) record(r *Report, outcome Outcome) {
	r.add(outcome)
	if o.reporter != nil && outcome.Disposition != Kept {
		o.reporter(outcome)
	}
}

// Encoder turns transactions into ODB containers. It holds no mutable state
// and is safe for concurrent use.
type Encoder struct {
	opts options
}

// NewEncoder creates a new encoder instance
func NewEncoder(opts ...Option) *Encoder {
	return &Encoder{opts: newOptions(opts)}
}

// Encode builds a complete container from records. Records with malformed
// dates or oversized payloads are skipped and reported; order is preserved.
func (e *Encoder) Encode(records []Transaction) *EncodeResult {
	var buf bytes.Buffer
	buf.Grow(PreambleSize + len(records)*32)
	buf.Write(Header)
	buf.Write(StartMarker)
	buf.Write(FieldPreamble)

	res := &EncodeResult{}
	for i, rec := range records {
		frame, err := encodeTransaction(rec)
		if err != nil {
			e.opts.record(&res.Report, Outcome{Index: i, Offset: -1, Disposition: Dropped, Record: rec, Err: err})
			continue
		}
		buf.Write(frame)
		e.opts.record(&res.Report, Outcome{Index: i, Offset: -1, Disposition: Kept, Record: rec})
	}

	res.Buffer = buf.Bytes()
	return res
}

func encodeTransaction(rec Transaction) ([]byte, error) {
	date, err := ToContainerForm(rec.Date)
	if err != nil {
		return nil, err
	}
	return EncodeFrame(rec.PlayerID, date, rec.Type, rec.FromTeam, rec.ToTeam)
}

// Decoder turns ODB containers back into transactions. It holds no mutable
// state and is safe for concurrent use.
type Decoder struct {
	opts options
}

// NewDecoder creates a new decoder instance
func NewDecoder(opts ...Option) *Decoder {
	return &Decoder{opts: newOptions(opts)}
}

// Decode reads every frame of buf. Short payloads are dropped and unparseable
// dates are kept empty; both are reported. A guard byte mismatch or a frame
// running past the end of buf stops the decode with a *FrameError, returned
// alongside the incomplete result.
func (d *Decoder) Decode(buf []byte) (*DecodeResult, error) {
	res := &DecodeResult{}
	if len(buf) < PreambleSize {
		return res, errors.Wrapf(frameError(0, ErrTruncatedContainer),
			"container is %d bytes, preamble needs %d", len(buf), PreambleSize)
	}

	it := NewFrameIterator(buf, PreambleSize)
	for n := 0; it.Next(); n++ {
		out := decodeFrame(n, it.Frame())
		if out.Disposition != Dropped {
			res.Records = append(res.Records, out.Record)
		}
		d.opts.record(&res.Report, out)
	}
	if err := it.Err(); err != nil {
		return res, err
	}

	res.Complete = true
	return res, nil
}

func decodeFrame(n int, frame Frame) Outcome {
	out := Outcome{Index: n, Offset: frame.Offset, Disposition: Kept}

	fields, err := SplitFields(frame.Payload)
	if err != nil {
		out.Disposition = Dropped
		out.Err = err
		return out
	}

	out.Record = Transaction{
		PlayerID: fields[0],
		Date:     ToISOForm(fields[1]),
		Type:     fields[2],
		FromTeam: fields[3],
		ToTeam:   fields[4],
	}
	if out.Record.Date == "" {
		out.Disposition = KeptWithWarning
		out.Err = errors.Wrapf(ErrMalformedDate, "%q", fields[1])
	}
	return out
}
