package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// DownloadStore writes exported reports and downloaded receipts under a
// single downloads directory, the client-side equivalent of the browser's
// object-URL download. Paths are validated so a crafted filename cannot
// escape the base directory.
type DownloadStore struct {
	baseDir string
	logger  *zap.Logger
}

// NewDownloadStore creates a store rooted at baseDir.
func NewDownloadStore(baseDir string, logger *zap.Logger) *DownloadStore {
	return &DownloadStore{baseDir: baseDir, logger: logger}
}

// SaveFile writes content under the downloads directory and returns the
// absolute path of the written file. Empty content is rejected: a
// zero-byte download is always a caller bug.
func (s *DownloadStore) SaveFile(name string, content []byte) (string, error) {
	if len(content) == 0 {
		return "", fmt.Errorf("refusing to write empty file: %s", name)
	}

	fullPath := filepath.Join(s.baseDir, name)
	if err := s.validatePath(fullPath); err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directories: %w", err)
	}
	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		s.logger.Error("Failed to write download",
			zap.String("path", fullPath), zap.Error(err))
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	s.logger.Debug("Download saved",
		zap.String("path", fullPath),
		zap.Int("size", len(content)))
	return fullPath, nil
}

// validatePath ensures the resolved path stays within the base directory.
func (s *DownloadStore) validatePath(fullPath string) error {
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base path: %w", err)
	}
	if absPath != absBase && !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return fmt.Errorf("path escapes downloads directory: %s", fullPath)
	}
	return nil
}
