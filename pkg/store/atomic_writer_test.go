package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAtomicWriter(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "atomic_writer_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	filePath := filepath.Join(tmpDir, "out.odb")

	writer, err := NewAtomicWriter(AtomicWriterConfig{FilePath: filePath, BufferSize: 4096})
	require.NoError(t, err)
	assert.NotNil(t, writer)
	assert.Equal(t, filePath, writer.Path())
	assert.Equal(t, int64(0), writer.Size())

	// Destination must not exist until Commit
	assert.NoFileExists(t, filePath)

	require.NoError(t, writer.Abort())
}

func TestNewAtomicWriter_DirectoryCreation(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "atomic_writer_dir_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	nestedDir := filepath.Join(tmpDir, "nested", "deep", "path")
	filePath := filepath.Join(nestedDir, "out.odb")

	writer, err := NewAtomicWriter(AtomicWriterConfig{FilePath: filePath})
	require.NoError(t, err)
	defer writer.Abort()

	assert.DirExists(t, nestedDir)
}

func TestAtomicWriter_Commit(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "atomic_writer_commit_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	filePath := filepath.Join(tmpDir, "out.odb")
	require.NoError(t, os.WriteFile(filePath, []byte("previous content"), 0600))

	writer, err := NewAtomicWriter(AtomicWriterConfig{FilePath: filePath, Perm: 0600})
	require.NoError(t, err)

	_, err = writer.Write([]byte("new "))
	require.NoError(t, err)
	_, err = writer.Write([]byte("content"))
	require.NoError(t, err)
	assert.Equal(t, int64(11), writer.Size())

	// Old content survives until Commit
	data, err := os.ReadFile(filePath)
	require.NoError(t, err)
	assert.Equal(t, "previous content", string(data))

	require.NoError(t, writer.Commit())

	data, err = os.ReadFile(filePath)
	require.NoError(t, err)
	assert.Equal(t, "new content", string(data))

	// No temporary files are left behind
	entries, err := os.ReadDir(tmpDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	assert.ErrorIs(t, writer.Commit(), ErrClosed)
	assert.NoError(t, writer.Abort())
	_, err = writer.Write([]byte("late"))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestAtomicWriter_Abort(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "atomic_writer_abort_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	filePath := filepath.Join(tmpDir, "out.odb")

	writer, err := NewAtomicWriter(AtomicWriterConfig{FilePath: filePath})
	require.NoError(t, err)

	_, err = writer.Write([]byte("partial"))
	require.NoError(t, err)
	require.NoError(t, writer.Abort())

	assert.NoFileExists(t, filePath)
	entries, err := os.ReadDir(tmpDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWriteFileAtomic(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "write_file_atomic_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	filePath := filepath.Join(tmpDir, "out.odb")
	payload := []byte{0x00, 0x3D, 0x42, 0x04, 0x00, 0x00}

	require.NoError(t, WriteFileAtomic(filePath, payload, 0644))

	data, err := os.ReadFile(filePath)
	require.NoError(t, err)
	assert.Equal(t, payload, data)

	require.NoError(t, WriteFileAtomic(filePath, nil, 0644))
	data, err = os.ReadFile(filePath)
	require.NoError(t, err)
	assert.Empty(t, data)
}
