package report

import (
	"context"
	"fmt"
	"runtime"

	"zest/internal/tactile"
)

// Opener shows a report file to the user.
type Opener interface {
	Open(ctx context.Context, path string) error
}

// SystemOpener hands files to the platform's default viewer.
type SystemOpener struct {
	exec tactile.Executor
	goos string
}

// NewSystemOpener creates an opener for the running platform.
func NewSystemOpener(exec tactile.Executor) *SystemOpener {
	return &SystemOpener{exec: exec, goos: runtime.GOOS}
}

// Open implements Opener.
func (o *SystemOpener) Open(ctx context.Context, path string) error {
	cmd := viewerCommand(o.goos, path)
	res, err := o.exec.Execute(ctx, cmd)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	if err := tactile.CheckExit(res); err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	return nil
}

func viewerCommand(goos, path string) tactile.Command {
	switch goos {
	case "darwin":
		return tactile.Command{Binary: "open", Arguments: []string{path}}
	case "windows":
		return tactile.Command{Binary: "rundll32", Arguments: []string{"url.dll,FileProtocolHandler", path}}
	default:
		return tactile.Command{Binary: "xdg-open", Arguments: []string{path}}
	}
}
