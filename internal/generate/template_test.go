package generate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealise_WritesTemplate(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "tests", "integration", "counter.rs")

	require.NoError(t, TestTemplate{Program: "counter"}.Realise(dest))

	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(content), "async fn test_counter()")
	assert.Contains(t, string(content), "#[tokio::test]")
	assert.Contains(t, string(content), "fn add_account(")
}

func TestRealise_RefusesToOverwrite(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "test.rs")
	require.NoError(t, os.WriteFile(dest, []byte("// mine"), 0o644))

	err := TestTemplate{}.Realise(dest)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExists)

	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "// mine", string(content))
}

func TestRender_DefaultProgram(t *testing.T) {
	content, err := TestTemplate{}.Render()
	require.NoError(t, err)
	assert.Contains(t, string(content), "async fn test_program()")
}

func TestRender_RejectsBadProgramName(t *testing.T) {
	_, err := TestTemplate{Program: "my-program"}.Render()
	assert.Error(t, err)
}
