package toolchain

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zest/internal/config"
	"zest/internal/tactile"
	"zest/internal/tactile/tactiletest"
)

func noEnv(string) (string, bool) { return "", false }

func envWith(keys ...string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		for _, key := range keys {
			if key == k {
				return "/opt/rust", true
			}
		}
		return "", false
	}
}

func newTestGuard(rec *tactiletest.Recorder, lookup func(string) (string, bool)) *Guard {
	g := NewGuard(rec)
	g.lookupEnv = lookup
	return g
}

func TestIsNightly(t *testing.T) {
	tests := []struct {
		version string
		want    bool
	}{
		{"", true},
		{"nightly", true},
		{"nightly-2024-11-01", true},
		{"stable", false},
		{"1.79.0", false},
		{"beta", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsNightly(tt.version), tt.version)
	}
}

func TestGuard_BranchWithoutNightlySpawnsNothing(t *testing.T) {
	for _, version := range []string{"stable", "1.79.0", "beta-2024-01-01"} {
		rec := &tactiletest.Recorder{}
		g := newTestGuard(rec, noEnv)

		cfg := config.DefaultCoverage()
		cfg.Branch = true
		cfg.CompilerVersion = version

		err := g.Check(context.Background(), cfg)
		require.Error(t, err, version)
		assert.True(t, errors.Is(err, ErrNightlyRequired), version)
		assert.Empty(t, rec.Calls(), "guard must reject before spawning anything")
	}
}

func TestGuard_ZProfileWithoutNightly(t *testing.T) {
	rec := &tactiletest.Recorder{}
	cfg := config.DefaultCoverage()
	cfg.Strategy = config.StrategyZProfile
	cfg.CompilerVersion = "stable"

	err := newTestGuard(rec, noEnv).Check(context.Background(), cfg)
	assert.ErrorIs(t, err, ErrNightlyRequired)
	assert.Empty(t, rec.Calls())
}

func TestGuard_DefaultsPassWithoutProbing(t *testing.T) {
	rec := &tactiletest.Recorder{}
	cfg := config.DefaultCoverage()
	cfg.Branch = true

	require.NoError(t, newTestGuard(rec, noEnv).Check(context.Background(), cfg))
	assert.Empty(t, rec.Calls())
}

func TestGuard_VersionRequiresRustup(t *testing.T) {
	rec := &tactiletest.Recorder{
		Respond: func(_ context.Context, cmd tactile.Command) (*tactile.ExecutionResult, error) {
			return nil, errors.New("executable file not found")
		},
	}
	cfg := config.DefaultCoverage()
	cfg.CompilerVersion = "nightly-2024-11-01"

	err := newTestGuard(rec, noEnv).Check(context.Background(), cfg)
	assert.ErrorIs(t, err, ErrToolchainManagerRequired)
	assert.Equal(t, []string{"rustup"}, rec.Binaries())
}

func TestGuard_RustupProbeExitCode(t *testing.T) {
	rec := &tactiletest.Recorder{
		Respond: func(_ context.Context, cmd tactile.Command) (*tactile.ExecutionResult, error) {
			return tactiletest.Exit(cmd, 1, "", "broken"), nil
		},
	}
	cfg := config.DefaultCoverage()
	cfg.CompilerVersion = "stable"

	err := newTestGuard(rec, noEnv).Check(context.Background(), cfg)
	assert.ErrorIs(t, err, ErrToolchainManagerRequired)
}

func TestGuard_RustupProbeSucceeds(t *testing.T) {
	rec := &tactiletest.Recorder{}
	cfg := config.DefaultCoverage()
	cfg.CompilerVersion = "stable"

	require.NoError(t, newTestGuard(rec, noEnv).Check(context.Background(), cfg))
	require.Len(t, rec.Calls(), 1)
	if diff := cmp.Diff([]string{"--version"}, rec.Calls()[0].Arguments); diff != "" {
		t.Errorf("probe args mismatch (-want +got):\n%s", diff)
	}
}

func TestGuard_RustupHomeSkipsProbe(t *testing.T) {
	for _, key := range []string{"RUSTUP_HOME", "CARGO_HOME"} {
		rec := &tactiletest.Recorder{}
		cfg := config.DefaultCoverage()
		cfg.CompilerVersion = "1.79.0"

		require.NoError(t, newTestGuard(rec, envWith(key)).Check(context.Background(), cfg), key)
		assert.Empty(t, rec.Calls(), key)
	}
}
