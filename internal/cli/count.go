package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// CountOptions holds flags for the count command.
type CountOptions struct {
	*RootOptions
	Exact bool
}

// CountResult is the output of the count command.
type CountResult struct {
	Count int64 `json:"count"`
	Exact bool  `json:"exact"`
}

func (r CountResult) String() string {
	return fmt.Sprint(r.Count)
}

// NewCountCommand creates the count command.
func NewCountCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CountOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "count",
		Short: "Print the number of stored documents",
		Long: `Print the number of stored documents.

By default this is the highest id handed out, which overstates the count once
rows have been deleted. --exact counts the rows instead.

Example:
  sqlitejson count --db ./docs.db
  sqlitejson count --db ./docs.db --exact`,
		Args: commandArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCount(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Exact, "exact", false, "count rows instead of reading the highest id")

	return cmd
}

func runCount(opts *CountOptions, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	ctx := contextOf(cmd)

	cfg, err := opts.resolveConfig(cmd)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeConfig, "failed to load config", err)
	}

	st, err := opts.openStore(ctx, opts.storeConfig(cfg))
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeOpen, "failed to open database", err)
	}
	defer opts.closeStore(st)

	count := st.Count
	if opts.Exact {
		count = st.ExactCount
	}
	n, err := count(ctx)
	if err != nil {
		return out.Fail(ExitFailure, ErrCodeQuery, "failed to count documents", err)
	}

	return out.Success(CountResult{Count: n, Exact: opts.Exact})
}
