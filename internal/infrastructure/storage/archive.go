package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/garyjia/opsflow/internal/application/port"
)

// LocalArchive implements port.FileArchive on the local filesystem
type LocalArchive struct {
	baseDir string
	logger  *zap.Logger
}

// NewLocalArchive creates an archive rooted at baseDir
func NewLocalArchive(baseDir string, logger *zap.Logger) *LocalArchive {
	return &LocalArchive{
		baseDir: baseDir,
		logger:  logger,
	}
}

// Store writes content under relativePath, creating parent directories
func (a *LocalArchive) Store(ctx context.Context, relativePath string, content []byte) (string, error) {
	fullPath, err := a.resolve(relativePath)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		a.logger.Error("Failed to create archive directory",
			zap.String("path", fullPath),
			zap.Error(err))
		return "", fmt.Errorf("failed to create directories: %w", err)
	}

	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		a.logger.Error("Failed to write archive file",
			zap.String("path", fullPath),
			zap.Error(err))
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	a.logger.Debug("File archived",
		zap.String("path", fullPath),
		zap.Int("size", len(content)))

	return filepath.ToSlash(filepath.Clean(relativePath)), nil
}

// Read returns the content stored under relativePath
func (a *LocalArchive) Read(ctx context.Context, relativePath string) ([]byte, error) {
	fullPath, err := a.resolve(relativePath)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return content, nil
}

// Exists reports whether a file is stored under relativePath
func (a *LocalArchive) Exists(ctx context.Context, relativePath string) bool {
	fullPath, err := a.resolve(relativePath)
	if err != nil {
		return false
	}
	_, err = os.Stat(fullPath)
	return err == nil
}

// resolve joins relativePath to the base directory and refuses paths that escape it
func (a *LocalArchive) resolve(relativePath string) (string, error) {
	if relativePath == "" || filepath.IsAbs(relativePath) {
		return "", fmt.Errorf("invalid archive path: %q", relativePath)
	}

	absBase, err := filepath.Abs(a.baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base path: %w", err)
	}
	absPath, err := filepath.Abs(filepath.Join(a.baseDir, relativePath))
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes archive directory: %s", relativePath)
	}
	return absPath, nil
}

var _ port.FileArchive = (*LocalArchive)(nil)
