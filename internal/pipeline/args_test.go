package pipeline

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"zest/internal/config"
)

func TestCargoBuildArgs(t *testing.T) {
	tests := []struct {
		name string
		cfg  func(*config.Coverage)
		want []string
	}{
		{
			name: "default",
			cfg:  func(*config.Coverage) {},
			want: []string{"build", "--color", "always", "--tests", "--target-dir", "target"},
		},
		{
			name: "sbf with version",
			cfg: func(c *config.Coverage) {
				c.WithSBF = true
				c.CompilerVersion = "nightly"
			},
			want: []string{"+nightly", "build-sbf", "--", "--color", "always", "--tests", "--target-dir", "target"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultCoverage()
			tt.cfg(&cfg)
			if diff := cmp.Diff(tt.want, CargoBuildArgs(cfg)); diff != "" {
				t.Errorf("CargoBuildArgs mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCargoTestArgs(t *testing.T) {
	tests := []struct {
		name   string
		cfg    func(*config.Coverage)
		filter string
		want   []string
	}{
		{
			name: "all tests",
			cfg:  func(*config.Coverage) {},
			want: []string{"test", "--color", "always", "--target-dir", "target", "--"},
		},
		{
			name:   "filter and skips",
			cfg:    func(c *config.Coverage) { c.Skips = []string{"slow", "flaky"} },
			filter: "initialize",
			want: []string{"test", "--color", "always", "initialize", "--target-dir", "target",
				"--", "--skip", "slow", "--skip", "flaky"},
		},
		{
			name: "sbf",
			cfg: func(c *config.Coverage) {
				c.WithSBF = true
				c.CompilerVersion = "1.79.0"
				c.Skips = []string{"x"}
			},
			filter: "a",
			want: []string{"+1.79.0", "test-sbf", "--", "--color", "always", "a", "--target-dir", "target",
				"--", "--skip", "x"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultCoverage()
			tt.cfg(&cfg)
			if diff := cmp.Diff(tt.want, CargoTestArgs(cfg, tt.filter)); diff != "" {
				t.Errorf("CargoTestArgs mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
