// Package artifacts owns the on-disk layout of a coverage run and the
// preparation of its output directory.
package artifacts

import "path/filepath"

// Paths relative to the project root.
const (
	TargetDir   = "target"
	CoverageDir = "target/coverage"

	HTMLReport = "target/coverage/html/index.html"
	LCOVReport = "target/coverage/lcov"
)

// Profile data extensions removed before each run.
const (
	ProfrawExt = ".profraw"
	GcdaExt    = ".gcda"
)

// Layout resolves the run layout against a project root.
type Layout struct {
	Root string
}

// NewLayout returns the layout for root.
func NewLayout(root string) Layout {
	return Layout{Root: root}
}

// Coverage is the profile data and report directory.
func (l Layout) Coverage() string { return filepath.Join(l.Root, filepath.FromSlash(CoverageDir)) }

// HTMLIndex is the entry page of the HTML report.
func (l Layout) HTMLIndex() string { return filepath.Join(l.Root, filepath.FromSlash(HTMLReport)) }

// LCOV is the lcov report file.
func (l Layout) LCOV() string { return filepath.Join(l.Root, filepath.FromSlash(LCOVReport)) }
