// Package report tells the user where the generated reports are.
package report

import (
	"context"
	"fmt"
	"io"

	"zest/internal/artifacts"
	"zest/internal/config"
	"zest/internal/logging"
)

// Dispatcher echoes report locations and opens browsable reports.
type Dispatcher struct {
	out    io.Writer
	opener Opener

	// OpenHTML controls whether the HTML report is opened after its path
	// is echoed.
	OpenHTML bool
}

// NewDispatcher creates a Dispatcher writing to out.
func NewDispatcher(out io.Writer, opener Opener) *Dispatcher {
	return &Dispatcher{out: out, opener: opener, OpenHTML: true}
}

// Dispatch handles each distinct format once, in first-seen order.
func (d *Dispatcher) Dispatch(ctx context.Context, formats []config.OutputFormat, layout artifacts.Layout) error {
	for _, format := range config.DedupeFormats(formats) {
		switch format {
		case config.FormatHTML:
			path := layout.HTMLIndex()
			if !d.OpenHTML {
				fmt.Fprintf(d.out, "Successfully generated html report at %s\n", path)
				continue
			}
			fmt.Fprintf(d.out, "Successfully generated html report at %s, opening...\n", path)
			logging.ReportDebug("opening %s", path)
			if err := d.opener.Open(ctx, path); err != nil {
				return fmt.Errorf("html report: %w", err)
			}
		case config.FormatLCOV:
			fmt.Fprintf(d.out, "Successfully generated lcov report, you can find it at %s\n", layout.LCOV())
		default:
			return fmt.Errorf("unknown output format %q", format)
		}
	}
	return nil
}
