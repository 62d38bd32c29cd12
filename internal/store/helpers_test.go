package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/sqlitejson/internal/testutil"
)

// openTestStore opens an in-memory store with a fixed load id and a fixed
// random seed.
func openTestStore(t *testing.T, cfg Config) *Store {
	t.Helper()
	if cfg.IDGenerator == nil {
		cfg.IDGenerator = testutil.NewFixedIDGenerator("")
	}
	s, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// tempDBPath returns a database path inside a per-test directory.
func tempDBPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.db")
}

// numberedDocs returns n documents of the form {"n": i}.
func numberedDocs(n int) []any {
	docs := make([]any, n)
	for i := range docs {
		docs[i] = map[string]any{"n": i}
	}
	return docs
}

// bodies collects IterateAll into a slice.
func bodies(t *testing.T, s *Store) []string {
	t.Helper()
	var out []string
	for body, err := range s.IterateAll(context.Background()) {
		require.NoError(t, err)
		out = append(out, body)
	}
	return out
}

// quiet disables progress so tests don't log.
var quiet = WriteOptions{DisableProgress: true}
