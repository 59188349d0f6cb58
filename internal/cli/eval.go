package cli

import (
	"fmt"
	"os/user"
	"strings"

	"github.com/spf13/cobra"

	"claimc/internal/manifest"
	"claimc/internal/semantic"
	"claimc/repl"
)

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "eval <expression>",
		Short: "Type and evaluate a closed expression",
		Example: `  claimc eval 'uintmax(8) + 1'
  claimc eval -- '-7 % 3'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), repl.Eval(semantic.Closed(), strings.Join(args, " ")))
			return nil
		},
	}
}

// NewReplCommand creates the repl command.
func NewReplCommand(rootOpts *RootOptions) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Evaluate expressions interactively",
		Long: `Read one expression per line and print its value. With --manifest the
storage slots of the manifest's contract are in scope.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := semantic.Closed()
			if path != "" {
				var err error
				if ctx, err = storageContext(path); err != nil {
					fmt.Fprint(cmd.ErrOrStderr(), manifest.Report(path, err))
					return ErrFailed
				}
			}

			name := "there"
			if currentUser, err := user.Current(); err == nil {
				name = currentUser.Username
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome to the claimc REPL, %s!\n", name)
			repl.Start(cmd.InOrStdin(), cmd.OutOrStdout(), ctx)
			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "manifest", "m", "", "bring the storage of a manifest into scope")

	return cmd
}

// storageContext brings the storage slots of the manifest at path into
// scope.
func storageContext(path string) (*semantic.Context, error) {
	m, err := manifest.Load(path)
	if err != nil {
		return nil, err
	}
	layout, err := m.Layout()
	if err != nil {
		return nil, err
	}
	return semantic.NewContext(layout[0], nil), nil
}
