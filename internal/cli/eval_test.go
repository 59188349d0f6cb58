package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvalCommand(t *testing.T) {
	stdout, _, err := execute(t, "", "eval", "uintmax(8)", "+", "1")
	require.NoError(t, err)
	assert.Equal(t, "256 : int\n", stdout)

	stdout, _, err = execute(t, "", "eval", "--", "-7 % 3")
	require.NoError(t, err)
	assert.Equal(t, "2 : int\n", stdout)
}

func TestReplCommand(t *testing.T) {
	stdout, _, err := execute(t, "post(totalSupply) >= 0\n", "repl", "--manifest", tokenManifest)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Welcome to the claimc REPL")
	assert.Contains(t, stdout, "<symbolic> (post(totalSupply) >= 0) : bool\n")
}

func TestReplCommandBadManifest(t *testing.T) {
	_, stderr, err := execute(t, "", "repl", "--manifest", "../manifest/testdata/invalid.yaml")
	assert.ErrorIs(t, err, ErrFailed)
	assert.Contains(t, stderr, "E0103")
}
