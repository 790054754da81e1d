package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Marker tracks the last successful project write as unix seconds in a small
// text file. An absent file reads as zero, meaning never updated.
type Marker struct {
	mu   sync.Mutex
	path string
}

// NewMarker returns a marker backed by the file at path.
func NewMarker(path string) *Marker {
	return &Marker{path: path}
}

// Value returns the current marker value. Missing or unreadable content
// reads as zero rather than failing the caller.
func (m *Marker) Value() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.read()
}

func (m *Marker) read() int64 {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return 0
	}
	value, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil || value < 0 {
		return 0
	}
	return value
}

// Touch records a write at the given time. The stored value strictly
// increases even when touches land within the same second.
func (m *Marker) Touch(now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	value := now.Unix()
	if last := m.read(); value <= last {
		value = last + 1
	}
	if err := writeFileAtomic(m.path, []byte(strconv.FormatInt(value, 10))); err != nil {
		return 0, fmt.Errorf("write sync marker: %w", err)
	}
	return value, nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil && !errors.Is(err, fs.ErrExist) {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
