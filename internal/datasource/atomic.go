// Package datasource persists seed-pool artifacts: the JSON summary, the
// rows CSV and an optional SQLite mirror. All file writes are atomic so a
// concurrent reader only ever observes a complete prior or complete new
// file.
package datasource

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// WriteFileAtomic writes data to path via a temp file in the same
// directory followed by a rename.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		// os.Rename doesn't replace existing files on Windows. The artifacts
		// are rebuildable, so fall back to removing the destination and
		// retrying.
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(path); statErr == nil {
				if rmErr := os.Remove(path); rmErr != nil {
					return fmt.Errorf("remove existing file: %w", rmErr)
				}
				if err2 := os.Rename(tmpPath, path); err2 == nil {
					return nil
				} else {
					return fmt.Errorf("rename: %w", err2)
				}
			}
		}
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
