package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "claimc", cmd.Use)
	assert.Contains(t, cmd.Long, "Coq")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"coq", "json", "eval", "repl"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestFlags(t *testing.T) {
	cmd := NewRootCommand()

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
	assert.Equal(t, "0", verbose.DefValue)

	coqCmd, _, err := cmd.Find([]string{"coq"})
	require.NoError(t, err)
	output := coqCmd.Flags().Lookup("output")
	require.NotNil(t, output)
	assert.Equal(t, "o", output.Shorthand)

	replCmd, _, err := cmd.Find([]string{"repl"})
	require.NoError(t, err)
	assert.NotNil(t, replCmd.Flags().Lookup("manifest"))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "500ns", formatDuration(500*time.Nanosecond))
	assert.Equal(t, "1.5μs", formatDuration(1500*time.Nanosecond))
	assert.Equal(t, "2.0ms", formatDuration(2*time.Millisecond))
	assert.Equal(t, "1.50s", formatDuration(1500*time.Millisecond))
	assert.Equal(t, "2.00min", formatDuration(2*time.Minute))
}
