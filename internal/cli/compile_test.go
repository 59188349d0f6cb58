package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tokenManifest = "../manifest/testdata/token.yaml"

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	color.NoColor = true

	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCoqCommand(t *testing.T) {
	stdout, stderr, err := execute(t, "", "coq", tokenManifest)
	require.NoError(t, err)

	want, err := os.ReadFile("../coq/testdata/golden/token.golden")
	require.NoError(t, err)
	assert.Equal(t, string(want), stdout)
	assert.Contains(t, stderr, "Successfully processed "+tokenManifest)
}

func TestCoqCommandOutputFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "Token.v")

	stdout, _, err := execute(t, "", "coq", tokenManifest, "-o", out)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Inductive reachable")
}

func TestCoqCommandReportsErrors(t *testing.T) {
	stdout, stderr, err := execute(t, "", "coq", "../manifest/testdata/broken.yaml")
	assert.ErrorIs(t, err, ErrFailed)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "error[E0101]")
	assert.Contains(t, stderr, "behaviours[0].iff[0]")
	assert.Contains(t, stderr, "Compilation failed after")
}

func TestJSONCommand(t *testing.T) {
	stdout, _, err := execute(t, "", "json", tokenManifest)
	require.NoError(t, err)

	var claims []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &claims))
	require.Len(t, claims, 6)
	assert.Equal(t, "Storages", claims[0]["kind"])
}

func TestMissingArgument(t *testing.T) {
	_, _, err := execute(t, "", "coq")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrFailed)
}
