package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_Download(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "graph.mtx"), []byte("2 2 1\n1 2\n"), 0644))

	s, err := NewLocalStorage(dir)
	require.NoError(t, err)

	rc, err := s.Download(context.Background(), "graph.mtx")
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "2 2 1\n1 2\n", string(data))
}

func TestLocalStorage_DownloadFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "graph.mtx"), []byte("payload"), 0644))

	s, err := NewLocalStorage(dir)
	require.NoError(t, err)

	dst := filepath.Join(t.TempDir(), "staged", "graph.mtx")
	require.NoError(t, s.DownloadFile(context.Background(), "graph.mtx", dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestLocalStorage_Exists(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "present.mtx"), []byte("x"), 0644))

	s, err := NewLocalStorage(dir)
	require.NoError(t, err)

	ok, err := s.Exists(context.Background(), "present.mtx")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Exists(context.Background(), "absent.mtx")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLocalStorage_KeyEscapeConfined(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(dir)
	require.NoError(t, err)

	// Path traversal in keys must stay inside the base directory.
	assert.Equal(t, "file://"+filepath.Join(dir, "secret"), s.GetURL("../../secret"))
}

func TestNewLocalStorage_BadPath(t *testing.T) {
	_, err := NewLocalStorage("/nonexistent/path/for/storage")
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "plain")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	_, err = NewLocalStorage(file)
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	assert.Error(t, ValidateConfig(nil))
}
