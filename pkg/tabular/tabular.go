// Package tabular reads and writes transaction records as delimited text with
// a header row.
package tabular

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"io"
	"unicode/utf8"

	"github.com/cockroachdb/errors"

	"github.com/ssargent/odbconv/pkg/codec"
)

var (
	ErrMissingHeader = errors.New("tabular: missing header row")
	ErrMissingColumn = errors.New("tabular: missing required column")
	ErrInvalidUTF8   = errors.New("tabular: invalid UTF-8")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteOptions controls how records are written
type WriteOptions struct {
	BOM   bool // prefix output with a UTF-8 byte-order mark
	Comma rune // field delimiter, ',' when zero
	LF    bool // end rows with \n instead of \r\n
}

// ReadOptions controls how records are read
type ReadOptions struct {
	Comma rune // field delimiter, ',' when zero
}

// Read parses records from r. The header row is required and must name every
// column in codec.Columns, in any order; extra columns are ignored. A leading
// UTF-8 byte-order mark is stripped. Input must be UTF-8: a row holding any
// other encoding fails the read with ErrInvalidUTF8.
func Read(r io.Reader) ([]codec.Transaction, error) {
	return ReadWithOptions(r, ReadOptions{})
}

// ReadWithOptions is Read with a configurable delimiter.
func ReadWithOptions(r io.Reader, opts ReadOptions) ([]codec.Transaction, error) {
	br := bufio.NewReader(r)
	if lead, _ := br.Peek(len(utf8BOM)); bytes.Equal(lead, utf8BOM) {
		if _, err := br.Discard(len(utf8BOM)); err != nil {
			return nil, errors.Wrap(err, "failed to skip byte-order mark")
		}
	}

	cr := csv.NewReader(br)
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read header")
	}
	if err := checkUTF8(cr, header); err != nil {
		return nil, err
	}

	index, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var records []codec.Transaction
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to read row")
		}
		if err := checkUTF8(cr, row); err != nil {
			return nil, err
		}

		records = append(records, codec.Transaction{
			PlayerID: row[index[codec.ColumnPlayerID]],
			Date:     row[index[codec.ColumnDate]],
			Type:     row[index[codec.ColumnType]],
			FromTeam: row[index[codec.ColumnFromTeam]],
			ToTeam:   row[index[codec.ColumnToTeam]],
		})
	}

	return records, nil
}

func checkUTF8(cr *csv.Reader, row []string) error {
	for i, field := range row {
		if !utf8.ValidString(field) {
			line, col := cr.FieldPos(i)
			return errors.Wrapf(ErrInvalidUTF8, "line %d, column %d", line, col)
		}
	}
	return nil
}

func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		if _, seen := index[name]; !seen {
			index[name] = i
		}
	}

	for _, col := range codec.Columns {
		if _, ok := index[col]; !ok {
			return nil, errors.Wrapf(ErrMissingColumn, "%q", col)
		}
	}
	return index, nil
}

// Write emits a header row followed by one row per record in canonical
// column order. Rows end with \r\n unless opts.LF is set.
func Write(w io.Writer, records []codec.Transaction, opts WriteOptions) error {
	bw := bufio.NewWriter(w)
	if opts.BOM {
		if _, err := bw.Write(utf8BOM); err != nil {
			return errors.Wrap(err, "failed to write byte-order mark")
		}
	}

	cw := csv.NewWriter(bw)
	if opts.Comma != 0 {
		cw.Comma = opts.Comma
	}
	cw.UseCRLF = !opts.LF

	if err := cw.Write(codec.Columns); err != nil {
		return errors.Wrap(err, "failed to write header")
	}
	for i, rec := range records {
		if err := cw.Write(rec.Fields()); err != nil {
			return errors.Wrapf(err, "failed to write record %d", i)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrap(err, "failed to flush records")
	}
	return bw.Flush()
}
