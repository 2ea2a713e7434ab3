package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/pyrs/internal/idiom"
	"github.com/roach88/pyrs/internal/store"
)

// IdiomsResult lists the active idiom table.
type IdiomsResult struct {
	Hash   string        `json:"hash" yaml:"hash"`
	Idioms []idiom.Idiom `json:"idioms" yaml:"idioms"`
}

// NewIdiomsCommand creates the idioms command.
func NewIdiomsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "idioms",
		Short: "List the active idiom table",
		Long: `List the Python names that have a Rust mapping.

The table is the built-in set with any --idioms overlays layered on top;
later overlays win. The hash identifies the table in the cache.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIdioms(rootOpts, cmd)
		},
	}

	return cmd
}

func runIdioms(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	table, err := opts.Table()
	if err != nil {
		return setupError(formatter, "", err)
	}
	hash, err := store.IdiomsHash(table)
	if err != nil {
		return setupError(formatter, "", err)
	}

	entries := table.Entries()
	if formatter.Structured() {
		return formatter.Success(IdiomsResult{Hash: hash, Idioms: entries})
	}

	tw := tabwriter.NewWriter(formatter.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTARGET\tKIND\tDOC")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Name, e.Target, e.Kind, e.Doc)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	formatter.VerboseLog("Idiom table hash: %s", hash)
	return nil
}
