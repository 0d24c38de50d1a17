package store

import (
	"bufio"
	"os"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/errors"
)

// AtomicWriter writes to a temporary file next to the destination and renames
// it into place on Commit. Readers of the destination never see a partial file.
type AtomicWriter struct {
	file   *os.File
	writer *bufio.Writer
	config AtomicWriterConfig
	mutex  sync.Mutex
	size   int64
	closed bool
}

// NewAtomicWriter creates the temporary file for config.FilePath
func NewAtomicWriter(config AtomicWriterConfig) (*AtomicWriter, error) {
	if config.Perm == 0 {
		config.Perm = 0644
	}
	if config.BufferSize <= 0 {
		config.BufferSize = 64 << 10
	}

	dir := filepath.Dir(config.FilePath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, err
	}

	file, err := os.CreateTemp(dir, "."+filepath.Base(config.FilePath)+".tmp-*")
	if err != nil {
		return nil, err
	}

	return &AtomicWriter{
		file:   file,
		writer: bufio.NewWriterSize(file, config.BufferSize),
		config: config,
	}, nil
}

// Write appends p to the pending file
func (w *AtomicWriter) Write(p []byte) (int, error) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.closed {
		return 0, ErrClosed
	}

	n, err := w.writer.Write(p)
	w.size += int64(n)
	return n, err
}

// Commit flushes, fsyncs and renames the pending file over the destination
func (w *AtomicWriter) Commit() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.closed {
		return ErrClosed
	}
	w.closed = true

	tmp := w.file.Name()
	if err := w.finish(); err != nil {
		os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, w.config.FilePath); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "failed to move %s into place", w.config.FilePath)
	}

	return syncDir(filepath.Dir(w.config.FilePath))
}

func (w *AtomicWriter) finish() error {
	if err := w.writer.Flush(); err != nil {
		w.file.Close()
		return err
	}
	if err := w.file.Sync(); err != nil {
		w.file.Close()
		return err
	}
	if err := w.file.Chmod(w.config.Perm); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}

// Abort discards the pending file. It is safe to call after Commit.
func (w *AtomicWriter) Abort() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	w.file.Close()
	return os.Remove(w.file.Name())
}

// Size returns the number of bytes written so far
func (w *AtomicWriter) Size() int64 {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.size
}

// Path returns the destination path
func (w *AtomicWriter) Path() string {
	return w.config.FilePath
}

// WriteFileAtomic replaces path with data in a single rename.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	w, err := NewAtomicWriter(AtomicWriterConfig{FilePath: path, Perm: perm, BufferSize: len(data)})
	if err != nil {
		return err
	}
	defer w.Abort()

	if _, err := w.Write(data); err != nil {
		return err
	}
	return w.Commit()
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()

	// Some platforms cannot fsync a directory; the rename already happened.
	_ = d.Sync()
	return nil
}
