package hashing

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const helloSum = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"

func TestBytesDeterministic(t *testing.T) {
	h := SHA256{}
	assert.Equal(t, helloSum, h.Bytes([]byte("hello")))
	assert.Equal(t, h.Bytes([]byte("hello")), h.Bytes([]byte("hello")))
	assert.NotEqual(t, h.Bytes([]byte("hello")), h.Bytes([]byte("hello!")))
}

func TestFileMatchesBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arc.dll")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	got, err := SHA256{}.File(path)
	require.NoError(t, err)
	assert.Equal(t, helloSum, got)
}

func TestFileMissing(t *testing.T) {
	_, err := SHA256{}.File(filepath.Join(t.TempDir(), "missing.dll"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func TestReader(t *testing.T) {
	got, err := Reader(bytes.NewReader([]byte("hello")))
	require.NoError(t, err)
	assert.Equal(t, helloSum, got)

	_, err = Reader(failingReader{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}
