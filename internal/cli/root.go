// Package cli implements the claimc command line.
package cli

import (
	stderrors "errors"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

// ErrFailed is returned by a command whose failure was already reported.
var ErrFailed = stderrors.New("claimc: failed")

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose int
}

// NewRootCommand creates the root command for the claimc CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "claimc",
		Short: "claimc - contract claims to Coq",
		Long: `Type the claims of a contract manifest and lower them to a Coq model
of the contract as a state machine.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			commonlog.Configure(opts.Verbose, nil)
		},
	}

	cmd.PersistentFlags().CountVarP(&opts.Verbose, "verbose", "v", "log verbosity, repeat for more")

	cmd.AddCommand(NewCoqCommand(opts))
	cmd.AddCommand(NewJSONCommand(opts))
	cmd.AddCommand(NewEvalCommand(opts))
	cmd.AddCommand(NewReplCommand(opts))

	return cmd
}
