package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/sqlitejson/internal/export"
)

// DumpOptions holds flags for the dump command.
type DumpOptions struct {
	*RootOptions
	OutputFormat string
	Output       string
}

// DumpResult summarizes a dump written to a file.
type DumpResult struct {
	Output    string `json:"output"`
	Format    string `json:"format"`
	Documents int    `json:"documents"`
}

func (r DumpResult) String() string {
	return fmt.Sprintf("wrote %d documents to %s (%s)", r.Documents, r.Output, r.Format)
}

// NewDumpCommand creates the dump command.
func NewDumpCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DumpOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Write every document out in id order",
		Long: `Write every stored document in id order.

Without --output the documents go to stdout and nothing else is printed.

Example:
  sqlitejson dump --db ./docs.db > docs.jsonl
  sqlitejson dump --db ./docs.db --output-format cbor -o docs.cbor`,
		Args: commandArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.OutputFormat, "output-format", "jsonl", "output format (jsonl|yaml|cbor)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (default: stdout)")

	return cmd
}

func runDump(opts *DumpOptions, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	ctx := contextOf(cmd)

	format, err := export.ParseFormat(opts.OutputFormat)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeConfig, "invalid --output-format", err)
	}

	cfg, err := opts.resolveConfig(cmd)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeConfig, "failed to load config", err)
	}

	st, err := opts.openStore(ctx, opts.storeConfig(cfg))
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeOpen, "failed to open database", err)
	}
	defer opts.closeStore(st)

	var w io.Writer = cmd.OutOrStdout()
	var file *os.File
	if opts.Output != "" {
		file, err = os.Create(opts.Output)
		if err != nil {
			return out.Fail(ExitCommandError, ErrCodeWrite, "failed to create output file", err)
		}
		defer file.Close() // closed explicitly on success
		w = file
	}

	enc, err := export.NewEncoder(format, w)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeConfig, "invalid --output-format", err)
	}

	n := 0
	for body, err := range st.IterateAll(ctx) {
		if err != nil {
			return out.Fail(ExitFailure, ErrCodeQuery, "failed to read documents", err)
		}
		if err := enc.Encode(body); err != nil {
			return out.Fail(ExitFailure, ErrCodeWrite, fmt.Sprintf("failed to write document %d", n), err)
		}
		n++
	}
	if err := enc.Close(); err != nil {
		return out.Fail(ExitFailure, ErrCodeWrite, "failed to flush output", err)
	}
	if file != nil {
		if err := closeOutput(file); err != nil {
			return out.Fail(ExitFailure, ErrCodeWrite, "failed to close output file", err)
		}
	}
	opts.Logger.Debug("dump finished", "documents", n, "format", format)

	if opts.Output == "" {
		return nil
	}
	return out.Success(DumpResult{Output: opts.Output, Format: string(format), Documents: n})
}

// closeOutput syncs f to disk and closes it.
var closeOutput = func(f *os.File) error {
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
