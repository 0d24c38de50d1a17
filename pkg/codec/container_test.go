package codec

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func preamble() []byte {
	var b []byte
	b = append(b, Header...)
	b = append(b, StartMarker...)
	b = append(b, FieldPreamble...)
	return b
}

func TestPreambleSize(t *testing.T) {
	if PreambleSize != 55 {
		t.Fatalf("PreambleSize = %d, want 55", PreambleSize)
	}
	if got := len(preamble()); got != PreambleSize {
		t.Fatalf("preamble is %d bytes, PreambleSize is %d", got, PreambleSize)
	}
}

func TestEncode_SingleRecordLayout(t *testing.T) {
	res := Encode([]Transaction{
		{PlayerID: "11252", Date: "2013-10-01", Type: "Fg", FromTeam: "", ToTeam: ""},
	})

	payload := "11252\t10/1/2013\tFg\t\t\t"
	if len(payload) != 0x15 {
		t.Fatalf("payload is %d bytes", len(payload))
	}

	want := append(preamble(), 0x00, 0x15, 0x00)
	want = append(want, payload...)
	if !bytes.Equal(res.Buffer, want) {
		t.Fatalf("buffer mismatch:\n got %x\nwant %x", res.Buffer, want)
	}

	if !res.Report.Clean() || res.Report.Kept != 1 {
		t.Errorf("unexpected report: %+v", res.Report)
	}

	out, err := Decode(res.Buffer)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !out.Complete {
		t.Error("expected complete decode")
	}
	if len(out.Records) != 1 {
		t.Fatalf("got %d records, want 1", len(out.Records))
	}
	wantRec := Transaction{PlayerID: "11252", Date: "2013-10-01", Type: "Fg"}
	if out.Records[0] != wantRec {
		t.Errorf("record mismatch: got %+v, want %+v", out.Records[0], wantRec)
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	testCases := []struct {
		name    string
		records []Transaction
	}{
		{
			name:    "empty set",
			records: nil,
		},
		{
			name: "single record",
			records: []Transaction{
				{PlayerID: "1", Date: "2001-01-01", Type: "T", FromTeam: "BOS", ToTeam: "NYY"},
			},
		},
		{
			name: "order preserved with duplicates",
			records: []Transaction{
				{PlayerID: "3", Date: "1999-12-31", Type: "Fg", FromTeam: "", ToTeam: "LAD"},
				{PlayerID: "1", Date: "2020-02-29", Type: "Tr", FromTeam: "SEA", ToTeam: ""},
				{PlayerID: "3", Date: "1999-12-31", Type: "Fg", FromTeam: "", ToTeam: "LAD"},
				{PlayerID: "2", Date: "1901-07-04", Type: "Rl", FromTeam: "CHC", ToTeam: "CHW"},
			},
		},
		{
			name: "unicode fields",
			records: []Transaction{
				{PlayerID: "선수-77", Date: "2013-10-01", Type: "Fg", FromTeam: "Águilas", ToTeam: "東京"},
			},
		},
		{
			name: "all optional fields empty",
			records: []Transaction{
				{PlayerID: "", Date: "2010-05-05", Type: "", FromTeam: "", ToTeam: ""},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res := Encode(tc.records)
			if !res.Report.Clean() {
				t.Fatalf("encode reported issues: %+v", res.Report.Issues)
			}

			out, err := Decode(res.Buffer)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}

			if len(out.Records) != len(tc.records) {
				t.Fatalf("got %d records, want %d", len(out.Records), len(tc.records))
			}
			for i := range tc.records {
				if out.Records[i] != tc.records[i] {
					t.Errorf("record %d: got %+v, want %+v", i, out.Records[i], tc.records[i])
				}
			}
		})
	}
}

func TestEncode_LengthBoundary(t *testing.T) {
	// payload = len(playerID) + len("10/1/2013") + len("Fg") + 5 tabs
	atLimit := Transaction{PlayerID: strings.Repeat("x", 239), Date: "2013-10-01", Type: "Fg"}
	overLimit := Transaction{PlayerID: strings.Repeat("x", 240), Date: "2013-10-01", Type: "Fg"}

	t.Run("255 bytes encodes", func(t *testing.T) {
		res := Encode([]Transaction{atLimit})
		if res.Report.Kept != 1 {
			t.Fatalf("expected record to be kept: %+v", res.Report)
		}
		if got := len(res.Buffer); got != PreambleSize+FramePrefixSize+255 {
			t.Errorf("buffer is %d bytes", got)
		}
		if res.Buffer[PreambleSize+1] != 0xFF {
			t.Errorf("length byte = %#x, want 0xff", res.Buffer[PreambleSize+1])
		}
	})

	t.Run("256 bytes is skipped", func(t *testing.T) {
		res := Encode([]Transaction{atLimit, overLimit, atLimit})
		if res.Report.Dropped != 1 || res.Report.Kept != 2 {
			t.Fatalf("unexpected report: %+v", res.Report)
		}
		issue := res.Report.Issues[0]
		if issue.Index != 1 || !errors.Is(issue.Err, ErrRecordTooLarge) {
			t.Errorf("unexpected issue: %+v", issue)
		}
		if got := len(res.Buffer); got != PreambleSize+2*(FramePrefixSize+255) {
			t.Errorf("oversized record leaked into buffer: %d bytes", got)
		}
	})
}

func TestEncode_MalformedDateSkipped(t *testing.T) {
	var reported []Outcome
	enc := NewEncoder(WithReporter(func(o Outcome) { reported = append(reported, o) }))

	res := enc.Encode([]Transaction{
		{PlayerID: "1", Date: "2013-10-01", Type: "A"},
		{PlayerID: "2", Date: "10/01/2013", Type: "B"},
		{PlayerID: "3", Date: "2013-10", Type: "C"},
		{PlayerID: "4", Date: "2013-11-02", Type: "D"},
	})

	if res.Report.Kept != 2 || res.Report.Dropped != 2 {
		t.Fatalf("unexpected report: %+v", res.Report)
	}
	if len(reported) != 2 {
		t.Fatalf("reporter called %d times, want 2", len(reported))
	}
	for _, o := range reported {
		if !errors.Is(o.Err, ErrMalformedDate) || o.Disposition != Dropped {
			t.Errorf("unexpected outcome: %+v", o)
		}
	}

	out, err := Decode(res.Buffer)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(out.Records) != 2 || out.Records[0].PlayerID != "1" || out.Records[1].PlayerID != "4" {
		t.Errorf("unexpected records: %+v", out.Records)
	}
}

func TestDecode_GuardBytes(t *testing.T) {
	good := Encode([]Transaction{
		{PlayerID: "1", Date: "2013-10-01", Type: "A"},
		{PlayerID: "2", Date: "2013-10-02", Type: "B"},
	}).Buffer
	second := PreambleSize + FramePrefixSize + len("1\t10/1/2013\tA\t\t\t")

	testCases := []struct {
		name     string
		position int
	}{
		{name: "first guard of first frame", position: PreambleSize},
		{name: "second guard of first frame", position: PreambleSize + 2},
		{name: "first guard of second frame", position: second},
		{name: "second guard of second frame", position: second + 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			corrupted := append([]byte(nil), good...)
			corrupted[tc.position] = 0x01

			out, err := Decode(corrupted)
			if !errors.Is(err, ErrFrameStructure) {
				t.Fatalf("expected ErrFrameStructure, got %v", err)
			}

			var frameErr *FrameError
			if !errors.As(err, &frameErr) {
				t.Fatalf("expected *FrameError, got %T", err)
			}
			wantOffset := PreambleSize
			if tc.position >= second {
				wantOffset = second
			}
			if frameErr.Offset != wantOffset {
				t.Errorf("offset = %d, want %d", frameErr.Offset, wantOffset)
			}

			if out.Complete {
				t.Error("result must be marked incomplete")
			}
			if wantOffset == second && len(out.Records) != 1 {
				t.Errorf("expected the record before the fault, got %+v", out.Records)
			}
		})
	}
}

func TestDecode_Truncation(t *testing.T) {
	full := Encode([]Transaction{{PlayerID: "1", Date: "2013-10-01", Type: "A"}}).Buffer

	testCases := []struct {
		name string
		data []byte
	}{
		{name: "short preamble", data: full[:PreambleSize-1]},
		{name: "partial prefix", data: full[:PreambleSize+2]},
		{name: "partial payload", data: full[:len(full)-1]},
		{name: "length beyond end", data: append(preamble(), 0x00, 0x10, 0x00, 'a')},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := Decode(tc.data)
			if !errors.Is(err, ErrTruncatedContainer) {
				t.Fatalf("expected ErrTruncatedContainer, got %v", err)
			}
			if !IsFatal(err) {
				t.Error("truncation must be fatal")
			}
			if out == nil || out.Complete {
				t.Error("expected incomplete result")
			}
		})
	}
}

func TestDecode_PreambleOnly(t *testing.T) {
	out, err := Decode(preamble())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !out.Complete || len(out.Records) != 0 || out.Report.Total != 0 {
		t.Errorf("unexpected result: %+v", out)
	}
}

func TestDecode_MalformedPayloadDropped(t *testing.T) {
	buf := preamble()
	for _, payload := range []string{"1\t10/1/2013\tA\t\t\t", "short\tpayload\t", "2\t10/2/2013\tB\tX\tY\t"} {
		buf = append(buf, 0x00, byte(len(payload)), 0x00)
		buf = append(buf, payload...)
	}

	out, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(out.Records) != 2 {
		t.Fatalf("got %d records, want 2", len(out.Records))
	}
	if out.Report.Dropped != 1 || !errors.Is(out.Report.Issues[0].Err, ErrMalformedRecordPayload) {
		t.Errorf("unexpected report: %+v", out.Report)
	}
	if out.Report.Issues[0].Index != 1 {
		t.Errorf("dropped frame index = %d, want 1", out.Report.Issues[0].Index)
	}
}

func TestDecode_UnparseableDateKept(t *testing.T) {
	payload := "9\tnot-a-date\tFg\tA\tB\t"
	buf := append(preamble(), 0x00, byte(len(payload)), 0x00)
	buf = append(buf, payload...)

	out, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(out.Records) != 1 {
		t.Fatalf("got %d records, want 1", len(out.Records))
	}
	want := Transaction{PlayerID: "9", Date: "", Type: "Fg", FromTeam: "A", ToTeam: "B"}
	if out.Records[0] != want {
		t.Errorf("got %+v, want %+v", out.Records[0], want)
	}
	if out.Report.Warnings != 1 || out.Report.Issues[0].Disposition != KeptWithWarning {
		t.Errorf("unexpected report: %+v", out.Report)
	}
}

func TestDecode_HeaderNotInterpreted(t *testing.T) {
	buf := Encode([]Transaction{{PlayerID: "1", Date: "2013-10-01", Type: "A"}}).Buffer
	for i := 0; i < PreambleSize; i++ {
		buf[i] = 0xEE
	}

	out, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(out.Records) != 1 {
		t.Errorf("got %d records, want 1", len(out.Records))
	}
}
