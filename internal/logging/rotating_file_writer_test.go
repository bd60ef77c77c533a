package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestRotatingFileWriter_Rotates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "server.log")

	w, err := NewRotatingFileWriter(path, 10, 2)
	require.NoError(t, err)
	defer w.Close()

	for _, line := range []string{"aaaaaa\n", "bbbbbb\n", "cccccc\n", "dddddd\n"} {
		_, err := w.Write([]byte(line))
		require.NoError(t, err)
	}

	assert.Equal(t, "dddddd\n", readFile(t, path))
	assert.Equal(t, "cccccc\n", readFile(t, path+".1"))
	assert.Equal(t, "bbbbbb\n", readFile(t, path+".2"))
	_, err = os.Stat(path + ".3")
	assert.True(t, os.IsNotExist(err))
}

func TestRotatingFileWriter_NoBackups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")

	w, err := NewRotatingFileWriter(path, 4, 0)
	require.NoError(t, err)

	_, err = w.Write([]byte("one\n"))
	require.NoError(t, err)
	_, err = w.Write([]byte("two\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.Equal(t, "two\n", readFile(t, path))
	_, err = os.Stat(path + ".1")
	assert.True(t, os.IsNotExist(err))

	_, err = w.Write([]byte("late"))
	assert.ErrorIs(t, err, os.ErrClosed)
}

func TestRotatingFileWriter_OversizedAtStartup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", 32)), 0o644))

	w, err := NewRotatingFileWriter(path, 16, 1)
	require.NoError(t, err)
	defer w.Close()

	assert.Empty(t, readFile(t, path))
	assert.Len(t, readFile(t, path+".1"), 32)
}

func TestNewRotatingFileWriter_Validation(t *testing.T) {
	_, err := NewRotatingFileWriter("", 10, 1)
	assert.Error(t, err)
	_, err = NewRotatingFileWriter(filepath.Join(t.TempDir(), "x.log"), 0, 1)
	assert.Error(t, err)
}

func TestSetup(t *testing.T) {
	c, err := Setup("", 0, 0)
	require.NoError(t, err)
	assert.NoError(t, c.Close())

	path := filepath.Join(t.TempDir(), "app.log")
	c, err = Setup(path, 1024, 1)
	require.NoError(t, err)
	defer func() {
		_ = c.Close()
		_, _ = Setup("", 0, 0)
	}()
	_, err = os.Stat(path)
	assert.NoError(t, err)
}
