package store

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"
)

// FileReader loads a whole file into memory
type FileReader struct {
	file   *os.File
	size   int64
	config FileReaderConfig
}

// NewFileReader opens the file and checks it against the size limit
func NewFileReader(config FileReaderConfig) (*FileReader, error) {
	if config.MaxSize <= 0 {
		config.MaxSize = DefaultMaxSize
	}

	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, err
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if !stat.Mode().IsRegular() {
		file.Close()
		return nil, errors.Wrapf(ErrNotRegular, "%s", config.FilePath)
	}
	if stat.Size() > config.MaxSize {
		file.Close()
		return nil, errors.Wrapf(ErrTooLarge, "%s is %d bytes, limit %d", config.FilePath, stat.Size(), config.MaxSize)
	}

	return &FileReader{
		file:   file,
		size:   stat.Size(),
		config: config,
	}, nil
}

// ReadAll returns the complete file content
func (r *FileReader) ReadAll() ([]byte, error) {
	if _, err := r.file.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	// Read one byte past the limit so growth after Stat is still caught.
	data, err := io.ReadAll(io.LimitReader(r.file, r.config.MaxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > r.config.MaxSize {
		return nil, errors.Wrapf(ErrTooLarge, "%s grew past %d bytes", r.config.FilePath, r.config.MaxSize)
	}
	return data, nil
}

// Size returns the file size observed when the reader was opened
func (r *FileReader) Size() int64 {
	return r.size
}

// Path returns the file path
func (r *FileReader) Path() string {
	return r.config.FilePath
}

// Close closes the file reader
func (r *FileReader) Close() error {
	return r.file.Close()
}

// ReadFile reads the whole file at path, refusing files larger than maxSize.
func ReadFile(path string, maxSize int64) ([]byte, error) {
	r, err := NewFileReader(FileReaderConfig{FilePath: path, MaxSize: maxSize})
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return r.ReadAll()
}
