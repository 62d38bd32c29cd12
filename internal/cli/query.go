package cli

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/roach88/sqlitejson/internal/store"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	NoHeader bool
}

// QueryResult is the output of the query command.
type QueryResult struct {
	Columns []string `json:"columns,omitempty"`
	Rows    [][]any  `json:"rows"`

	width    int
	noHeader bool
}

// String renders the result as a bordered table.
func (r QueryResult) String() string {
	if r.width == 0 {
		return "(no columns)"
	}

	rows := make([][]string, len(r.Rows))
	for i, row := range r.Rows {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = formatCell(v)
		}
		rows[i] = cells
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Rows(rows...)
	if !r.noHeader {
		t = t.Headers(r.Columns...)
	}
	return t.String()
}

// formatCell renders one SQLite value for the text table.
func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return val
	case []byte:
		return "x'" + hex.EncodeToString(val) + "'"
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	}
	return fmt.Sprint(v)
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <sql>",
		Short: "Run SQL against the document table",
		Long: `Run a SQL statement and print the rows it returns.

The statement is passed to SQLite unchanged. The JSON functions and
json_array_contains, json_array_dropdup and json_array_randelem are available.

Example:
  sqlitejson query --db ./docs.db "SELECT json_extract(body, '$.name') FROM docs"
  sqlitejson query --db ./docs.db --format json "SELECT count(*) FROM docs"`,
		Args: commandArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.NoHeader, "no-header", false, "omit the column header")

	return cmd
}

func runQuery(opts *QueryOptions, sqlText string, cmd *cobra.Command) error {
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

	result, err := st.Query(ctx, sqlText)
	if err != nil {
		return out.Fail(ExitFailure, ErrCodeQuery, "query failed", err)
	}
	opts.Logger.Debug("query finished", "rows", len(result.Rows))

	return out.Success(newQueryResult(result, opts.NoHeader))
}

func newQueryResult(r *store.Result, noHeader bool) QueryResult {
	qr := QueryResult{Rows: r.Rows, width: len(r.Columns), noHeader: noHeader}
	if !noHeader {
		qr.Columns = r.Columns
	}
	return qr
}
