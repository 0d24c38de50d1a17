// Package codec implements the ODB container format used for historical
// player transaction imports.
//
// The codec converts between a slice of Transaction values and a complete
// in-memory container buffer. It performs no I/O: callers read the whole file
// before decoding and write the whole buffer after encoding.
//
// # Container Format
//
// A container is a fixed preamble followed by zero or more frames:
//
//	[Header(6)][StartMarker(2)][FieldPreamble(47)][Frame]...[Frame]
//
// Fields:
//   - Header: opaque constant 00 3D 42 04 00 00
//   - StartMarker: opaque constant 2F 00
//   - FieldPreamble: "playerID\ttransactionDate1\tType\tFromTeam\tToTeam\t"
//     with no length prefix of its own
//
// There is no record count and no trailer. The buffer ends after the last
// frame; a buffer that ends inside a frame is malformed.
//
// # Frame Format
//
//	[0x00][Length(1)][0x00][Payload(Length)]
//
// The length slot is one byte, so a payload holds at most 255 bytes. The two
// zero guard bytes are checked on decode. The payload is the five fields of a
// transaction joined with tabs plus a trailing tab:
//
//	11252\t10/1/2013\tFg\t\t\t
//
// Inside the container dates use the M/D/YYYY form without zero padding.
// Outside it they use ISO YYYY-MM-DD.
//
// # Usage
//
//	res := codec.Encode([]codec.Transaction{
//	    {PlayerID: "11252", Date: "2013-10-01", Type: "Fg"},
//	})
//	if !res.Report.Clean() {
//	    // inspect res.Report.Issues
//	}
//
//	out, err := codec.Decode(res.Buffer)
//	if err != nil {
//	    return err // structural damage, out.Complete is false
//	}
//
// # Error Handling
//
// Problems with a single record never abort a batch:
//   - encode skips records with malformed dates (ErrMalformedDate) or
//     oversized payloads (ErrRecordTooLarge)
//   - decode drops frames whose payload has fewer than five fields
//     (ErrMalformedRecordPayload) and keeps records whose date cannot be
//     parsed, with an empty Date
//
// Every skipped, dropped or warned record appears in the Report of the result.
//
// Structural problems abort a decode and are returned as *FrameError:
//   - ErrFrameStructure when a guard byte is not zero
//   - ErrTruncatedContainer when a frame runs past the end of the buffer
//
// # Thread Safety
//
// Encoder and Decoder hold no mutable state and are safe for concurrent use.
package codec
