// Package storage archives conversion runs in a local pebble database keyed by
// KSUID, so runs iterate in creation order.
package storage

import (
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"
)

var ErrRunNotFound = errors.New("storage: run not found")

// Direction of a conversion run
type Direction string

const (
	DirectionEncode Direction = "encode"
	DirectionDecode Direction = "decode"
)

// Issue is a single dropped or warned record captured from a batch report
type Issue struct {
	Index       int    `json:"index"`
	Offset      int    `json:"offset"`
	Disposition string `json:"disposition"`
	PlayerID    string `json:"player_id,omitempty"`
	Reason      string `json:"reason"`
}

// Run is the archived summary of one conversion
type Run struct {
	ID          ksuid.KSUID   `json:"id"`
	Direction   Direction     `json:"direction"`
	Source      string        `json:"source"`
	Destination string        `json:"destination"`
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration"`
	Total       int           `json:"total"`
	Kept        int           `json:"kept"`
	Dropped     int           `json:"dropped"`
	Warnings    int           `json:"warnings"`
	Bytes       int           `json:"bytes"`
	Issues      []Issue       `json:"issues,omitempty"`
	Error       string        `json:"error,omitempty"`
}

// Failed reports whether the run ended with a terminal error
func (r *Run) Failed() bool {
	return r.Error != ""
}

type DefaultStorage struct {
	db *pebble.DB
}

func NewDefaultStorage(path string) (*DefaultStorage, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open run archive at %s", path)
	}
	return &DefaultStorage{db: db}, nil
}

// Put stores run, assigning a new ID when it has none
func (s *DefaultStorage) Put(run *Run) (ksuid.KSUID, error) {
	if run.ID == ksuid.Nil {
		id, err := ksuid.NewRandomWithTime(run.StartedAt)
		if err != nil {
			return ksuid.Nil, err
		}
		run.ID = id
	}

	data, err := json.Marshal(run)
	if err != nil {
		return ksuid.Nil, errors.Wrap(err, "failed to marshal run")
	}
	if err := s.db.Set(run.ID.Bytes(), data, pebble.Sync); err != nil {
		return ksuid.Nil, err
	}

	return run.ID, nil
}

func (s *DefaultStorage) Get(id ksuid.KSUID) (*Run, error) {
	data, closer, err := s.db.Get(id.Bytes())
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, errors.Wrapf(ErrRunNotFound, "%s", id)
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal run %s", id)
	}
	return &run, nil
}

// List returns up to limit runs, newest first. A non-positive limit returns
// every run.
func (s *DefaultStorage) List(limit int) ([]*Run, error) {
	iter, err := s.db.NewIter(nil)
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var runs []*Run
	for valid := iter.Last(); valid; valid = iter.Prev() {
		if limit > 0 && len(runs) >= limit {
			break
		}

		var run Run
		if err := json.Unmarshal(iter.Value(), &run); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal run at key %x", iter.Key())
		}
		runs = append(runs, &run)
	}

	return runs, iter.Error()
}

func (s *DefaultStorage) Delete(id ksuid.KSUID) error {
	return s.db.Delete(id.Bytes(), pebble.Sync)
}

func (s *DefaultStorage) Close() error {
	return s.db.Close()
}
