// Package generate writes starter files for Solana program tests.
package generate

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"text/template"

	"zest/internal/logging"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var singleTest = template.Must(template.ParseFS(templateFS, "templates/single_test.rs.tmpl"))

// ErrExists is returned when the destination file is already present.
var ErrExists = errors.New("file already exists")

// DefaultProgram names the program referenced by the template when none is
// given.
const DefaultProgram = "program"

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// TestTemplate holds the values substituted into the single-test template.
type TestTemplate struct {
	Program string
}

// Render returns the template text.
func (t TestTemplate) Render() ([]byte, error) {
	if t.Program == "" {
		t.Program = DefaultProgram
	}
	if !identifier.MatchString(t.Program) {
		return nil, fmt.Errorf("program name %q is not a Rust identifier", t.Program)
	}
	var buf bytes.Buffer
	if err := singleTest.Execute(&buf, t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Realise writes the rendered template to dest, creating parent
// directories. An existing file is never overwritten.
func (t TestTemplate) Realise(dest string) error {
	content, err := t.Render()
	if err != nil {
		return err
	}

	if dir := filepath.Dir(dest); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w at the specified path: %s", ErrExists, dest)
		}
		return err
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	logging.GenerateDebug("wrote %d bytes to %s", len(content), dest)
	return nil
}
