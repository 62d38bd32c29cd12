package cli

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sqlitejson/internal/testutil"
)

// cliResult captures one command execution.
type cliResult struct {
	Stdout string
	Stderr string
	Err    error
}

// execute runs the CLI with args, feeding stdin when non-empty. Load ids
// are fixed to "load-test" and logs are discarded.
func execute(t *testing.T, stdin string, args ...string) cliResult {
	t.Helper()

	opts := &RootOptions{
		IDGenerator: testutil.NewFixedIDGenerator("load-test"),
		Logger:      slog.New(slog.DiscardHandler),
	}
	cmd := newRootCommand(opts)

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return cliResult{Stdout: stdout.String(), Stderr: stderr.String(), Err: err}
}

// mustExecute runs the CLI and fails the test on error.
func mustExecute(t *testing.T, stdin string, args ...string) cliResult {
	t.Helper()
	res := execute(t, stdin, args...)
	require.NoError(t, res.Err, "stdout: %s\nstderr: %s", res.Stdout, res.Stderr)
	return res
}

// tempDB returns a database path in a per-test directory.
func tempDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "docs.db")
}

// writeTemp writes content to name inside a per-test directory.
func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// assertGolden compares output with testdata/golden/<name>.golden.
func assertGolden(t *testing.T, name string, output string) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(output))
}

const peopleJSONL = `{"name":"ada","tags":["math","code"]}
{"name":"grace","tags":["navy","code"]}
{"name":"alan","tags":["math"]}
`
