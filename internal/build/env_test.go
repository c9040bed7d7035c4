package build

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zest/internal/config"
)

func TestNewOverlay_InstrumentCoverage(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultCoverage()

	o, err := NewOverlay(cfg, dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "zest-%p-%m.profraw"), o["LLVM_PROFILE_FILE"])
	assert.Equal(t, "-C instrument-coverage", o["RUSTFLAGS"])
	assert.Equal(t, "1", o["RUST_BACKTRACE"])
	assert.Equal(t, "8388608", o["RUST_MIN_STACK"])
	assert.NotContains(t, o, "CARGO_INCREMENTAL")
}

func TestNewOverlay_Branch(t *testing.T) {
	cfg := config.DefaultCoverage()
	cfg.Branch = true

	o, err := NewOverlay(cfg, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "-C instrument-coverage -Z coverage-options=mcdc", o["RUSTFLAGS"])
}

func TestNewOverlay_ZProfile(t *testing.T) {
	cfg := config.DefaultCoverage()
	cfg.Strategy = config.StrategyZProfile

	o, err := NewOverlay(cfg, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "-Z profile", o["RUSTFLAGS"])
	assert.Equal(t, "0", o["CARGO_INCREMENTAL"])
}

func TestNewOverlay_RelativeDirIsResolved(t *testing.T) {
	o, err := NewOverlay(config.DefaultCoverage(), "target/coverage")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(o["LLVM_PROFILE_FILE"]))
}

func TestNewOverlay_UnknownStrategy(t *testing.T) {
	cfg := config.DefaultCoverage()
	cfg.Strategy = "gcov"

	_, err := NewOverlay(cfg, t.TempDir())
	assert.Error(t, err)
}

func TestOverlay_PairsSorted(t *testing.T) {
	o := Overlay{"B": "2", "A": "1", "C": "x=y"}
	assert.Equal(t, []string{"A=1", "B=2", "C=x=y"}, o.Pairs())
}
