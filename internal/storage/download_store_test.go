package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDownloadStore_SaveFile(t *testing.T) {
	dir := t.TempDir()
	store := NewDownloadStore(dir, zap.NewNop())

	path, err := store.SaveFile("expenses-2026-08-29.pdf", []byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "expenses-2026-08-29.pdf"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(content))
}

func TestDownloadStore_CreatesNestedDirectories(t *testing.T) {
	dir := t.TempDir()
	store := NewDownloadStore(dir, zap.NewNop())

	path, err := store.SaveFile("reports/august/summary.xlsx", []byte("data"))
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestDownloadStore_RejectsEmptyContent(t *testing.T) {
	dir := t.TempDir()
	store := NewDownloadStore(dir, zap.NewNop())

	_, err := store.SaveFile("empty.pdf", nil)
	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "empty.pdf"))
}

func TestDownloadStore_RejectsPathEscape(t *testing.T) {
	dir := t.TempDir()
	store := NewDownloadStore(filepath.Join(dir, "downloads"), zap.NewNop())

	tests := []string{
		"../outside.pdf",
		"../../etc/passwd",
		"reports/../../outside.pdf",
	}
	for _, name := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := store.SaveFile(name, []byte("data"))
			assert.Error(t, err)
		})
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "nothing may be written outside the base directory")
}
