package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/cobra"

	"claimc/internal/coq"
	"claimc/internal/ir"
	"claimc/internal/manifest"
)

// NewCoqCommand creates the coq command.
func NewCoqCommand(rootOpts *RootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "coq <manifest>",
		Short: "Generate the Coq model of a manifest",
		Long: `Load a YAML or CUE manifest, type and refine its claims and print the
Coq state machine of the contract.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], func(w io.Writer, layout ir.Layout, claims []ir.Claim[ir.Timed]) error {
				out, err := coq.Generate(layout, claims)
				if err != nil {
					return err
				}
				if output == "" {
					_, err = io.WriteString(w, out)
					return err
				}
				return pkgerrors.Wrap(os.WriteFile(output, []byte(out), 0o644), "failed to write output")
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the model to a file instead of stdout")

	return cmd
}

// NewJSONCommand creates the json command.
func NewJSONCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "json <manifest>",
		Short: "Print the timed claims of a manifest as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], func(w io.Writer, _ ir.Layout, claims []ir.Claim[ir.Timed]) error {
				data, err := ir.MarshalClaims(claims)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(w, "%s\n", data)
				return err
			})
		},
	}
}

// run loads the manifest at path, refines its claims and hands them to
// emit. Failures are reported on the command's error stream.
func run(cmd *cobra.Command, path string, emit func(io.Writer, ir.Layout, []ir.Claim[ir.Timed]) error) error {
	startTime := time.Now()
	stderr := cmd.ErrOrStderr()

	err := compile(path, func(layout ir.Layout, claims []ir.Claim[ir.Timed]) error {
		return emit(cmd.OutOrStdout(), layout, claims)
	})

	formattedDuration := formatDuration(time.Since(startTime))
	if err != nil {
		fmt.Fprint(stderr, manifest.Report(path, err))
		color.New(color.FgRed).Fprintf(stderr, "Compilation failed after %s\n", formattedDuration)
		return ErrFailed
	}
	color.New(color.FgGreen).Fprintf(stderr, "Successfully processed %s in %s\n", path, formattedDuration)
	return nil
}

func compile(path string, emit func(ir.Layout, []ir.Claim[ir.Timed]) error) error {
	m, err := manifest.Load(path)
	if err != nil {
		return err
	}
	layout, claims, err := m.Claims()
	if err != nil {
		return err
	}
	return emit(layout, ir.RefineClaims(claims))
}

func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Minute:
		return fmt.Sprintf("%.2fmin", d.Minutes())
	case d >= time.Second:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d >= time.Millisecond:
		return fmt.Sprintf("%.1fms", float64(d.Nanoseconds())/1000000.0)
	case d >= time.Microsecond:
		return fmt.Sprintf("%.1fμs", float64(d.Nanoseconds())/1000.0)
	default:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	}
}
