package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateValidDocuments(t *testing.T) {
	jsonIn, yamlIn := sampleDocs(t, t.TempDir())

	for _, path := range []string{jsonIn, yamlIn} {
		out, _, err := execute(t, "validate", path)
		require.NoError(t, err, path)
		assert.Equal(t, "✓ "+path+" valid\n", out)
	}
}

func TestValidateReportsViolations(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.json", []byte(`{
  "VENDOR_ID": "0xFFF1",
  "COLOUR": "red"
}`))

	out, _, err := execute(t, "validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, ErrCodeSchema+": COLOUR")
}

func TestValidateJSONOutput(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.yaml", []byte("VENDOR_ID: [1, 2]\n"))

	out, _, err := execute(t, "--format", "json", "validate", path)
	require.Error(t, err)

	resp := decodeResponse(t, out)
	assert.Equal(t, "error", resp["status"])
	assert.Equal(t, ErrCodeSchema, resp["error"].(map[string]any)["code"])

	data := resp["data"].(map[string]any)
	assert.Equal(t, false, data["valid"])
	assert.NotEmpty(t, data["violations"])
}

func TestValidateMalformedDocument(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.json", []byte(`{"VENDOR_ID": `))

	out, _, err := execute(t, "validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error ["+ErrCodeFormat+"]")
}

func TestValidateMissingFile(t *testing.T) {
	out, _, err := execute(t, "validate", filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error ["+ErrCodeNotFound+"]")
}

func TestValidateRequiresOneArg(t *testing.T) {
	_, _, err := execute(t, "validate")
	require.Error(t, err)
}
