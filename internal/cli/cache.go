package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/pyrs/internal/store"
)

// CacheListResult lists cached transpilations.
type CacheListResult struct {
	Path    string         `json:"path" yaml:"path"`
	Records []store.Record `json:"records" yaml:"records"`
}

// CacheClearResult reports a cleared cache.
type CacheClearResult struct {
	Path    string `json:"path" yaml:"path"`
	Removed int64  `json:"removed" yaml:"removed"`
}

// NewCacheCommand creates the cache command and its subcommands.
func NewCacheCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the transpilation cache",
		Long: `Inspect or clear the SQLite transpilation cache used by
"pyrs transpile --cache". The database path comes from --cache, the
PYRS_CACHE environment variable or the cache key in .pyrs.yaml.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&rootOpts.Cache, "cache", "", "transpilation cache database path")

	var program string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List cached transpilations in insertion order",
		Long: `List cached transpilations in insertion order. With --program, list
only the sources that lowered to the given program hash (as printed by
"pyrs lower").`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCacheList(rootOpts, cmd, program)
		},
	}
	listCmd.Flags().StringVar(&program, "program", "", "only list records with this program hash")
	cmd.AddCommand(listCmd)
	cmd.AddCommand(&cobra.Command{
		Use:           "clear",
		Short:         "Remove every cached transpilation",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCacheClear(rootOpts, cmd)
		},
	})

	return cmd
}

// openCache opens the configured cache, reporting failures through formatter.
func openCache(opts *RootOptions, formatter *OutputFormatter) (*store.Store, error) {
	if opts.Cache == "" {
		message := "no cache database configured (use --cache or PYRS_CACHE)"
		_ = formatter.Error(ErrCodeCache, message, nil)
		return nil, NewExitError(ExitCommandError, message)
	}
	st, err := store.Open(opts.Cache)
	if err != nil {
		_ = formatter.Error(ErrCodeCache, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "opening cache", err)
	}
	return st, nil
}

func runCacheList(opts *RootOptions, cmd *cobra.Command, program string) error {
	formatter := opts.formatter(cmd)

	st, err := openCache(opts, formatter)
	if err != nil {
		return err
	}
	defer st.Close()

	var records []store.Record
	if program != "" {
		records, err = st.ByProgram(cmd.Context(), program)
	} else {
		records, err = st.List(cmd.Context())
	}
	if err != nil {
		_ = formatter.Error(ErrCodeCache, err.Error(), nil)
		return WrapExitError(ExitCommandError, "listing cache", err)
	}

	if formatter.Structured() {
		return formatter.Success(CacheListResult{Path: opts.Cache, Records: records})
	}

	if len(records) == 0 {
		fmt.Fprintln(formatter.Writer, "Cache is empty.")
		return nil
	}
	tw := tabwriter.NewWriter(formatter.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tSOURCE\tPROGRAM\tSTATEMENTS\tHITS")
	for _, r := range records {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\n", r.Seq, short(r.SourceHash), short(r.ProgramHash), r.Statements, r.Hits)
	}
	return tw.Flush()
}

func runCacheClear(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	st, err := openCache(opts, formatter)
	if err != nil {
		return err
	}
	defer st.Close()

	n, err := st.Clear(cmd.Context())
	if err != nil {
		_ = formatter.Error(ErrCodeCache, err.Error(), nil)
		return WrapExitError(ExitCommandError, "clearing cache", err)
	}

	if formatter.Structured() {
		return formatter.Success(CacheClearResult{Path: opts.Cache, Removed: n})
	}
	formatter.Pass("Removed %d cached transpilation(s)", n)
	return nil
}

// short abbreviates a hex digest for tables.
func short(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
