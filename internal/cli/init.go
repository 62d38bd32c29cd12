package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sqlitejson/internal/store"
)

// InitResult is the output of the init command.
type InitResult struct {
	Path   string `json:"path"`
	Table  string `json:"table"`
	Column string `json:"column"`
}

func (r InitResult) String() string {
	return fmt.Sprintf("table %s (id, %s) ready in %s", r.Table, r.Column, r.Path)
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the document table",
		Long: `Create the document table if it does not exist.

Example:
  sqlitejson init --db ./docs.db
  sqlitejson init --db ./docs.db --table events --column payload`,
		Args: commandArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(rootOpts, cmd)
		},
	}
}

func runInit(opts *RootOptions, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	ctx := contextOf(cmd)

	cfg, err := opts.resolveConfig(cmd)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeConfig, "failed to load config", err)
	}

	sc := opts.storeConfig(cfg)
	sc.CreateTable = store.Bool(false)
	st, err := opts.openStore(ctx, sc)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeOpen, "failed to open database", err)
	}
	defer opts.closeStore(st)

	if err := st.CreateTable(ctx); err != nil {
		return out.Fail(ExitFailure, ErrCodeWrite, "failed to create table", err)
	}

	return out.Success(InitResult{Path: st.Path(), Table: st.Table(), Column: st.Column()})
}
