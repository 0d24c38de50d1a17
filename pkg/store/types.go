package store

import "os"

// DefaultMaxSize caps whole-file reads. A container of 255-byte frames this
// size holds roughly 250k transactions.
const DefaultMaxSize int64 = 64 << 20

// AtomicWriterConfig holds configuration for the atomic writer
type AtomicWriterConfig struct {
	FilePath   string      // Destination path, replaced on Commit
	BufferSize int         // Write buffer size
	Perm       os.FileMode // Permissions of the committed file, 0644 when zero
}

// FileReaderConfig holds configuration for the file reader
type FileReaderConfig struct {
	FilePath string // Path to the container or tabular file
	MaxSize  int64  // Largest file accepted, DefaultMaxSize when zero
}

// Errors
var (
	ErrTooLarge   = &StoreError{"file exceeds size limit"}
	ErrNotRegular = &StoreError{"not a regular file"}
	ErrClosed     = &StoreError{"writer already committed or aborted"}
)

// StoreError represents a file store error
type StoreError struct {
	Message string
}

func (e *StoreError) Error() string {
	return e.Message
}
