// Package convert connects file and byte sources to the codec. It reads the
// whole input, runs the codec, writes the whole output and then logs, counts
// and archives the run.
package convert

import (
	"bytes"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/odbconv/pkg/codec"
	"github.com/ssargent/odbconv/pkg/metrics"
	"github.com/ssargent/odbconv/pkg/storage"
	"github.com/ssargent/odbconv/pkg/store"
	"github.com/ssargent/odbconv/pkg/tabular"
)

// Archive persists finished runs. *storage.DefaultStorage satisfies it.
type Archive interface {
	Put(run *storage.Run) (ksuid.KSUID, error)
}

// Options controls tabular formatting and input limits
type Options struct {
	Comma         rune        // tabular delimiter, ',' when zero
	WriteBOM      bool        // prefix decoded CSV with a UTF-8 BOM
	LF            bool        // end decoded CSV rows with \n instead of \r\n
	MaxInputBytes int64       // file inputs larger than this are rejected
	FilePerm      os.FileMode // mode of written files, 0644 when zero
}

// Summary describes one finished conversion
type Summary struct {
	RunID       ksuid.KSUID // ksuid.Nil when the run was not archived
	Direction   storage.Direction
	Source      string
	Destination string
	StartedAt   time.Time
	Duration    time.Duration
	Bytes       int // container size, produced on encode or consumed on decode
	Complete    bool
	Report      codec.Report
}

// Converter runs conversions. It is safe for concurrent use.
type Converter struct {
	opts    Options
	logger  zerolog.Logger
	metrics *metrics.Metrics
	archive Archive
}

// New creates a converter. A nil archive disables run archiving and nil
// metrics get a private registry.
func New(opts Options, logger zerolog.Logger, m *metrics.Metrics, archive Archive) *Converter {
	if opts.MaxInputBytes <= 0 {
		opts.MaxInputBytes = store.DefaultMaxSize
	}
	if opts.FilePerm == 0 {
		opts.FilePerm = 0644
	}
	if m == nil {
		m = metrics.New()
	}
	return &Converter{
		opts:    opts,
		logger:  logger,
		metrics: m,
		archive: archive,
	}
}

// EncodeFile reads CSV from src and writes an ODB container to dst. Nothing
// is written to dst when an error is returned.
func (c *Converter) EncodeFile(src, dst string) (*Summary, error) {
	sum := c.begin(storage.DirectionEncode, src, dst)

	out, err := c.readFile(src)
	if err == nil {
		out, err = c.encode(out, sum)
	}
	if err == nil {
		err = c.writeFile(dst, out)
	}

	return c.finish(sum, out, err)
}

// DecodeFile reads an ODB container from src and writes CSV to dst. Nothing
// is written to dst when an error is returned.
func (c *Converter) DecodeFile(src, dst string) (*Summary, error) {
	sum := c.begin(storage.DirectionDecode, src, dst)

	in, err := c.readFile(src)
	var out []byte
	if err == nil {
		sum.Bytes = len(in)
		out, err = c.decode(in, sum)
	}
	if err == nil {
		err = c.writeFile(dst, out)
	}

	return c.finish(sum, in, err)
}

// EncodeBytes encodes CSV input held in memory. source labels the run.
func (c *Converter) EncodeBytes(source string, input []byte) ([]byte, *Summary, error) {
	sum := c.begin(storage.DirectionEncode, source, "")

	out, err := c.encode(input, sum)
	sum, err = c.finish(sum, out, err)
	if err != nil {
		return nil, sum, err
	}
	return out, sum, nil
}

// DecodeBytes decodes an ODB container held in memory. source labels the run.
func (c *Converter) DecodeBytes(source string, input []byte) ([]byte, *Summary, error) {
	sum := c.begin(storage.DirectionDecode, source, "")
	sum.Bytes = len(input)

	out, err := c.decode(input, sum)
	sum, err = c.finish(sum, input, err)
	if err != nil {
		return nil, sum, err
	}
	return out, sum, nil
}

func (c *Converter) begin(direction storage.Direction, src, dst string) *Summary {
	return &Summary{
		Direction:   direction,
		Source:      src,
		Destination: dst,
		StartedAt:   time.Now(),
	}
}

func (c *Converter) encode(input []byte, sum *Summary) ([]byte, error) {
	records, err := tabular.ReadWithOptions(bytes.NewReader(input), tabular.ReadOptions{Comma: c.opts.Comma})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read records from %s", sum.Source)
	}

	res := codec.NewEncoder(codec.WithReporter(c.reporter(sum))).Encode(records)
	sum.Report = res.Report
	sum.Complete = true
	return res.Buffer, nil
}

func (c *Converter) decode(input []byte, sum *Summary) ([]byte, error) {
	res, err := codec.NewDecoder(codec.WithReporter(c.reporter(sum))).Decode(input)
	sum.Report = res.Report
	sum.Complete = res.Complete
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s after %d records", sum.Source, len(res.Records))
	}

	var buf bytes.Buffer
	opts := tabular.WriteOptions{BOM: c.opts.WriteBOM, Comma: c.opts.Comma, LF: c.opts.LF}
	if err := tabular.Write(&buf, res.Records, opts); err != nil {
		return nil, errors.Wrap(err, "failed to write records")
	}
	return buf.Bytes(), nil
}

func (c *Converter) readFile(path string) ([]byte, error) {
	data, err := store.ReadFile(path, c.opts.MaxInputBytes)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	return data, nil
}

func (c *Converter) writeFile(path string, data []byte) error {
	if err := store.WriteFileAtomic(path, data, c.opts.FilePerm); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

// reporter logs each dropped or warned record as the codec reports it
func (c *Converter) reporter(sum *Summary) func(codec.Outcome) {
	direction := string(sum.Direction)
	return func(o codec.Outcome) {
		reason := Reason(o.Err)
		c.metrics.RecordIssue(direction, reason)

		event := c.logger.Warn().
			Str("direction", direction).
			Str("source", sum.Source).
			Int("index", o.Index).
			Str("disposition", string(o.Disposition)).
			Str("reason", reason).
			Str("player_id", o.Record.PlayerID)
		if o.Offset >= 0 {
			event = event.Int("offset", o.Offset)
		}
		event.Err(o.Err).Msg("record needs attention")
	}
}

func (c *Converter) finish(sum *Summary, container []byte, err error) (*Summary, error) {
	sum.Duration = time.Since(sum.StartedAt)
	if sum.Direction == storage.DirectionEncode && err == nil {
		sum.Bytes = len(container)
	}

	direction := string(sum.Direction)
	c.metrics.RecordRecords(direction, string(codec.Kept), sum.Report.Kept-sum.Report.Warnings)
	c.metrics.RecordRecords(direction, string(codec.KeptWithWarning), sum.Report.Warnings)
	c.metrics.RecordRecords(direction, string(codec.Dropped), sum.Report.Dropped)
	c.metrics.RecordConversion(direction, err == nil, sum.Bytes, sum.Duration)

	if c.archive != nil {
		run := sum.run(err)
		if id, archiveErr := c.archive.Put(run); archiveErr != nil {
			c.logger.Warn().Err(archiveErr).Msg("failed to archive run")
		} else {
			sum.RunID = id
		}
	}

	event := c.logger.Info()
	if err != nil {
		event = c.logger.Error().Err(err)
	}
	event.
		Str("direction", direction).
		Str("source", sum.Source).
		Str("destination", sum.Destination).
		Int("total", sum.Report.Total).
		Int("kept", sum.Report.Kept).
		Int("dropped", sum.Report.Dropped).
		Int("warnings", sum.Report.Warnings).
		Int("bytes", sum.Bytes).
		Dur("duration", sum.Duration).
		Msg("conversion finished")

	return sum, err
}

func (s *Summary) run(err error) *storage.Run {
	run := &storage.Run{
		Direction:   s.Direction,
		Source:      s.Source,
		Destination: s.Destination,
		StartedAt:   s.StartedAt,
		Duration:    s.Duration,
		Total:       s.Report.Total,
		Kept:        s.Report.Kept,
		Dropped:     s.Report.Dropped,
		Warnings:    s.Report.Warnings,
		Bytes:       s.Bytes,
	}
	if err != nil {
		run.Error = err.Error()
	}

	for _, o := range s.Report.Issues {
		issue := storage.Issue{
			Index:       o.Index,
			Offset:      o.Offset,
			Disposition: string(o.Disposition),
			PlayerID:    o.Record.PlayerID,
		}
		if o.Err != nil {
			issue.Reason = o.Err.Error()
		}
		run.Issues = append(run.Issues, issue)
	}
	return run
}

// Reason maps a per-record codec error to a short metric label
func Reason(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, codec.ErrMalformedDate):
		return "malformed_date"
	case errors.Is(err, codec.ErrRecordTooLarge):
		return "record_too_large"
	case errors.Is(err, codec.ErrMalformedRecordPayload):
		return "malformed_payload"
	default:
		return "other"
	}
}
