package certificates

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Source hands out the current Table for a data file and reloads it when the
// file's modification time or size changes.
type Source struct {
	path string

	mu      sync.RWMutex
	table   *Table
	modTime time.Time
	size    int64
}

// NewSource creates a Source for path. The file is read lazily.
func NewSource(path string) *Source {
	return &Source{path: path}
}

// Path returns the data file path.
func (s *Source) Path() string {
	return s.path
}

// Table returns the loaded table, reloading it if the file changed on disk.
func (s *Source) Table() (*Table, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat certificates file %s: %w", s.path, err)
	}

	s.mu.RLock()
	if s.fresh(info) {
		table := s.table
		s.mu.RUnlock()
		return table, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fresh(info) {
		return s.table, nil
	}

	table, err := Load(s.path)
	if err != nil {
		return nil, err
	}
	if s.table != nil {
		slog.Info("certificates: data file changed, reloaded", "path", s.path, "rows", table.Len())
	}
	s.table = table
	s.modTime = info.ModTime()
	s.size = info.Size()
	return table, nil
}

func (s *Source) fresh(info os.FileInfo) bool {
	return s.table != nil && s.modTime.Equal(info.ModTime()) && s.size == info.Size()
}

// ModTime is the modification time of the data file as of the last load.
func (s *Source) ModTime() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modTime
}
