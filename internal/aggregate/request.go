// Package aggregate turns profile data into coverage reports through grcov.
package aggregate

import (
	"fmt"
	"regexp"

	"zest/internal/artifacts"
	"zest/internal/config"
)

// IgnoredGlobs keeps build output and test code out of the report.
var IgnoredGlobs = []string{"target/*", "*tests*"}

// Request is everything the engine needs for one aggregation. Paths are
// relative to WorkingDir, which is the project root.
type Request struct {
	WorkingDir string
	RequestID  string

	ProfilePaths []string
	BinaryPath   string
	SourceDir    string
	OutputDir    string

	Formats    []config.OutputFormat
	SortOutput []config.OutputFormat

	IgnoreGlobs       []string
	IgnoreNotExisting bool
	Branch            bool
	LLVM              bool
	LogLevel          string
	ExcludeLine       *regexp.Regexp
}

// NewRequest derives the aggregation request for a validated run config.
func NewRequest(cfg config.Coverage, layout artifacts.Layout) (Request, error) {
	re, err := ExclusionRegexp(cfg.ContractStyle)
	if err != nil {
		return Request{}, err
	}
	formats := config.DedupeFormats(cfg.OutputFormats)
	if len(formats) == 0 {
		return Request{}, fmt.Errorf("no output formats requested")
	}

	req := Request{
		WorkingDir:        layout.Root,
		ProfilePaths:      []string{artifacts.CoverageDir},
		BinaryPath:        artifacts.TargetDir,
		SourceDir:         ".",
		OutputDir:         artifacts.CoverageDir,
		Formats:           formats,
		IgnoreGlobs:       append([]string(nil), IgnoredGlobs...),
		IgnoreNotExisting: true,
		Branch:            cfg.Branch,
		LLVM:              true,
		LogLevel:          "ERROR",
		ExcludeLine:       re,
	}
	for _, f := range formats {
		if f == config.FormatHTML {
			req.SortOutput = []config.OutputFormat{config.FormatHTML}
		}
	}
	return req, nil
}
