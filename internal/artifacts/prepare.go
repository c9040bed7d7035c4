package artifacts

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"zest/internal/logging"
)

// ErrIO marks failures to create or clean the coverage directory.
var ErrIO = errors.New("coverage directory")

// Prepare makes sure dir exists as a directory and removes profile data left
// over from a previous run. Only direct entries whose extension is one of
// exts are removed; everything else in dir is kept. With no exts, .profraw
// files are removed.
func Prepare(dir string, exts ...string) error {
	if len(exts) == 0 {
		exts = []string{ProfrawExt}
	}

	if err := ensureDir(dir); err != nil {
		return err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", ErrIO, dir, err)
	}
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !hasExt(entry.Name(), exts) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: remove %s: %v", ErrIO, path, err)
		}
		removed++
	}
	logging.ArtifactsDebug("prepared %s, removed %d stale profile files", dir, removed)
	return nil
}

// ensureDir creates dir. Something other than a directory occupying the
// path is removed and creation retried once.
func ensureDir(dir string) error {
	err := os.MkdirAll(dir, 0o755)
	if err == nil {
		return nil
	}
	info, statErr := os.Lstat(dir)
	if statErr != nil || info.IsDir() {
		return fmt.Errorf("%w: create %s: %v", ErrIO, dir, err)
	}

	logging.ArtifactsWarn("%s already exists, attempting to remove", dir)
	if err := os.Remove(dir); err != nil {
		return fmt.Errorf("%w: remove %s: %v", ErrIO, dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrIO, dir, err)
	}
	return nil
}

func hasExt(name string, exts []string) bool {
	ext := filepath.Ext(name)
	for _, e := range exts {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}
