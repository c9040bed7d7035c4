package aggregate

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"zest/internal/config"
	"zest/internal/logging"
	"zest/internal/tactile"
)

// ErrAggregationFailed wraps any failure of the aggregation engine.
var ErrAggregationFailed = errors.New("coverage aggregation failed")

// Engine merges profile data into reports.
type Engine interface {
	Aggregate(ctx context.Context, req Request) error
}

// Grcov runs the grcov CLI.
type Grcov struct {
	exec   tactile.Executor
	binary string
}

// NewGrcov creates an engine that runs grcov from PATH.
func NewGrcov(exec tactile.Executor) *Grcov {
	return &Grcov{exec: exec, binary: "grcov"}
}

// Aggregate implements Engine. It invokes grcov exactly once.
func (g *Grcov) Aggregate(ctx context.Context, req Request) error {
	timer := logging.StartTimer(logging.CategoryAggregate, "grcov")
	defer timer.Stop()

	cmd := tactile.Command{
		Binary:           g.binary,
		Arguments:        Args(req),
		WorkingDirectory: req.WorkingDir,
		RequestID:        req.RequestID,
	}
	logging.AggregateDebug("running %s", cmd.CommandString())

	res, err := g.exec.Execute(ctx, cmd)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAggregationFailed, err)
	}
	if err := tactile.CheckExit(res); err != nil {
		logging.AggregateError("grcov exited %d", res.ExitCode)
		return fmt.Errorf("%w: %w", ErrAggregationFailed, err)
	}
	logging.Aggregate("coverage aggregated into %s", req.OutputDir)
	return nil
}

// Args renders req as grcov arguments. With a single format grcov writes
// to the output path itself, so the path is pinned to
// <output dir>/<format> to keep report locations independent of how many
// formats were requested.
func Args(req Request) []string {
	args := append([]string(nil), req.ProfilePaths...)
	if req.BinaryPath != "" {
		args = append(args, "--binary-path", req.BinaryPath)
	}
	if req.SourceDir != "" {
		args = append(args, "--source-dir", req.SourceDir)
	}

	args = append(args, "--output-types", joinFormats(req.Formats))

	outputPath := req.OutputDir
	if len(req.Formats) == 1 {
		outputPath = path.Join(req.OutputDir, reportName(req.Formats[0]))
	}
	args = append(args, "--output-path", outputPath)

	if len(req.SortOutput) > 0 {
		args = append(args, "--sort-output-types", joinFormats(req.SortOutput))
	}

	if req.IgnoreNotExisting {
		args = append(args, "--ignore-not-existing")
	}
	for _, glob := range req.IgnoreGlobs {
		args = append(args, "--ignore", glob)
	}
	if req.Branch {
		args = append(args, "--branch")
	}
	if req.LLVM {
		args = append(args, "--llvm")
	}
	if req.ExcludeLine != nil {
		args = append(args, "--excl-line", req.ExcludeLine.String())
	}
	if req.LogLevel != "" {
		args = append(args, "--log-level", req.LogLevel)
	}
	return args
}

func joinFormats(formats []config.OutputFormat) string {
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = f.String()
	}
	return strings.Join(names, ",")
}

// reportName is the entry grcov creates for format inside a multi-format
// output directory.
func reportName(format config.OutputFormat) string {
	switch format {
	case config.FormatHTML:
		return "html"
	case config.FormatLCOV:
		return "lcov"
	default:
		return format.String()
	}
}
