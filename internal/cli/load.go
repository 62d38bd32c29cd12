package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/sqlitejson/internal/codec"
	"github.com/roach88/sqlitejson/internal/ingest"
	"github.com/roach88/sqlitejson/internal/schema"
	"github.com/roach88/sqlitejson/internal/store"
)

// LoadOptions holds flags for the load command.
type LoadOptions struct {
	*RootOptions
	InputFormat string
	BatchSize   int
	NoProgress  bool
	NFC         bool
	SchemaPath  string
	Definition  string
}

// LoadResult is the output of the load command.
type LoadResult struct {
	LoadID    string `json:"load_id"`
	Documents int    `json:"documents"`
	Chunks    int    `json:"chunks"`
	FirstID   int64  `json:"first_id,omitempty"`
	LastID    int64  `json:"last_id,omitempty"`
}

func (r LoadResult) String() string {
	if r.Documents == 0 {
		return "loaded 0 documents"
	}
	chunks := "chunks"
	if r.Chunks == 1 {
		chunks = "chunk"
	}
	return fmt.Sprintf("loaded %d documents in %d %s (ids %d-%d)", r.Documents, r.Chunks, chunks, r.FirstID, r.LastID)
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoadOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "load [file|-]",
		Short: "Bulk load documents",
		Long: `Load documents from a file or stdin.

Documents are committed in chunks of --batch. If loading stops part way, every
chunk committed before the failure stays in the table; the chunk that was
being filled when the failure happened is not written.

The input format is taken from --input-format, or guessed from the file
extension (.jsonl, .json, .jsonc, .yaml). Stdin defaults to JSON Lines.

Example:
  sqlitejson load --db ./docs.db people.jsonl
  cat people.yaml | sqlitejson load --db ./docs.db --input-format yaml -
  sqlitejson load --db ./docs.db --schema person.cue --definition '#Person' people.json`,
		Args: commandArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := "-"
			if len(args) == 1 {
				input = args[0]
			}
			return runLoad(opts, input, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.InputFormat, "input-format", "", "input format (jsonl|json|jsonc|yaml); default from file extension")
	cmd.Flags().IntVar(&opts.BatchSize, "batch", 0, "documents per committed chunk (default from config, 1000)")
	cmd.Flags().BoolVar(&opts.NoProgress, "no-progress", false, "disable progress reporting")
	cmd.Flags().BoolVar(&opts.NFC, "nfc", false, "normalize strings to Unicode NFC before storing")
	cmd.Flags().StringVar(&opts.SchemaPath, "schema", "", "CUE file every document must satisfy")
	cmd.Flags().StringVar(&opts.Definition, "definition", "", "CUE definition to validate against, e.g. #Person (default: whole file)")

	return cmd
}

func runLoad(opts *LoadOptions, input string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	ctx := contextOf(cmd)

	cfg, err := opts.resolveConfig(cmd)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeConfig, "failed to load config", err)
	}
	if opts.BatchSize < 0 {
		return out.Fail(ExitCommandError, ErrCodeConfig, fmt.Sprintf("invalid --batch %d", opts.BatchSize), nil)
	}
	if opts.BatchSize > 0 {
		cfg.BatchSize = opts.BatchSize
	}

	format := ingest.DetectFormat(input)
	if opts.InputFormat != "" {
		format, err = ingest.ParseFormat(opts.InputFormat)
		if err != nil {
			return out.Fail(ExitCommandError, ErrCodeConfig, "invalid --input-format", err)
		}
	}

	var readerOpts []ingest.ReaderOption
	if opts.SchemaPath != "" {
		validator, err := loadSchema(opts.SchemaPath, opts.Definition)
		if err != nil {
			return out.Fail(ExitCommandError, ErrCodeConfig, "failed to load schema", err)
		}
		readerOpts = append(readerOpts, ingest.WithValidator(validator))
	}

	src, closeSrc, err := openInput(input, cmd.InOrStdin())
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeInput, "failed to open input", err)
	}
	defer closeSrc()

	reader, err := ingest.NewReader(src, format, readerOpts...)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeInput, "failed to read input", err)
	}

	sc := opts.storeConfig(cfg)
	sc.Codec = codec.Encoder{NormalizeNFC: opts.NFC}
	st, err := opts.openStore(ctx, sc)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeOpen, "failed to open database", err)
	}
	defer opts.closeStore(st)

	writeOpts := store.WriteOptions{
		BatchSize:       cfg.BatchSize,
		DisableProgress: opts.NoProgress,
	}
	if !opts.NoProgress && isTerminal(cmd.ErrOrStderr()) {
		writeOpts.Progress = NewTermProgress(cmd.ErrOrStderr())
	}

	opts.Logger.Debug("loading documents", "input", input, "format", format, "batch_size", cfg.BatchSize)
	report, err := st.WriteStream(ctx, reader.Documents(), writeOpts)
	if err != nil {
		msg := fmt.Sprintf("load stopped after %d committed documents", report.Documents)
		if reader.Err() != nil {
			return out.Fail(ExitFailure, ErrCodeInput, msg, err)
		}
		return out.Fail(ExitFailure, ErrCodeWrite, msg, err)
	}

	return out.Success(LoadResult{
		LoadID:    report.LoadID,
		Documents: report.Documents,
		Chunks:    report.Chunks,
		FirstID:   report.FirstID,
		LastID:    report.LastID,
	})
}

func loadSchema(path, definition string) (*schema.Validator, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return schema.Compile(src, definition)
}

// openInput opens path for reading; "-" is stdin, which is never closed.
func openInput(path string, stdin io.Reader) (io.Reader, func(), error) {
	if path == "-" {
		return stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}
