// Package storage persists generated report files on the local filesystem.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bobmcallan/vire-valuation/internal/common"
	"github.com/bobmcallan/vire-valuation/internal/interfaces"
)

// ErrReportNotFound is returned when a named report does not exist.
var ErrReportNotFound = errors.New("report not found")

// FileReportStore stores reports as files under a base directory.
// Names map to "{basePath}/{name}".
type FileReportStore struct {
	basePath string
	logger   *common.Logger
}

// NewFileReportStore creates the store, creating the directory if needed.
func NewFileReportStore(logger *common.Logger, basePath string) (*FileReportStore, error) {
	if basePath == "" {
		return nil, fmt.Errorf("report store path is required")
	}
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create report directory %s: %w", basePath, err)
	}

	logger.Debug().Str("path", basePath).Msg("FileReportStore initialized")
	return &FileReportStore{basePath: basePath, logger: logger}, nil
}

// sanitizeName keeps names inside the base directory.
func sanitizeName(name string) string {
	clean := filepath.Clean("/" + name)
	clean = strings.TrimPrefix(clean, "/")
	return strings.ReplaceAll(clean, "..", "__")
}

func (s *FileReportStore) path(name string) string {
	return filepath.Join(s.basePath, sanitizeName(name))
}

// Save writes the report atomically using temp file + rename.
func (s *FileReportStore) Save(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if sanitizeName(name) == "" {
		return "", fmt.Errorf("report name is required")
	}

	path := s.path(name)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := io.Copy(tmpFile, bytes.NewReader(data)); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to rename temp file: %w", err)
	}

	s.logger.Info().Str("path", path).Int("bytes", len(data)).Msg("Report saved")
	return path, nil
}

// Load reads a saved report.
func (s *FileReportStore) Load(ctx context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to read report %s: %w", name, err)
	}
	return data, nil
}

// List returns report names, newest first. Temp files are skipped.
func (s *FileReportStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	type named struct {
		name string
		mod  int64
	}
	var files []named
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".tmp-") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, named{name: e.Name(), mod: info.ModTime().UnixNano()})
	}
	sort.Slice(files, func(i, j int) bool {
		if files[i].mod != files[j].mod {
			return files[i].mod > files[j].mod
		}
		return files[i].name > files[j].name
	})

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.name
	}
	return names, nil
}

var _ interfaces.ReportStore = (*FileReportStore)(nil)
