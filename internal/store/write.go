package store

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/roach88/sqlitejson/internal/chunk"
)

// DefaultBatchSize is the number of documents committed per transaction.
const DefaultBatchSize = 1000

// maxStatementParams is SQLite's default SQLITE_MAX_VARIABLE_NUMBER. A chunk
// larger than this is inserted with several statements in one transaction.
var maxStatementParams = 32766

// WriteOptions tunes a single WriteDocuments call.
type WriteOptions struct {
	// BatchSize is the number of documents per committed chunk. Values
	// below 1 mean DefaultBatchSize.
	BatchSize int

	// Total is the expected document count, passed to Progress.Start.
	// 0 means unknown.
	Total int

	// DisableProgress turns progress reporting off.
	DisableProgress bool

	// Progress receives progress updates. Defaults to a LogProgress on the
	// store's logger.
	Progress Progress
}

// WriteReport summarizes a load, including a failed one: Documents and
// Chunks count what was committed before the failure.
type WriteReport struct {
	LoadID    string
	Documents int
	Chunks    int

	// FirstID and LastID are the ids of the first and last committed
	// documents, 0 when nothing was committed.
	FirstID int64
	LastID  int64
}

// WriteDocuments inserts docs in chunks of opts.BatchSize, one transaction
// per chunk. The sequence is consumed once, lazily.
//
// If a document cannot be encoded the error wraps a *codec.EncodingError
// and names the document's position in docs. The chunk holding it is not
// written; earlier chunks stay committed.
func (s *Store) WriteDocuments(ctx context.Context, docs iter.Seq[any], opts WriteOptions) (WriteReport, error) {
	return s.write(ctx, docs, nil, opts)
}

// WriteStream is WriteDocuments for a source that can fail part way, such
// as a file being parsed. When docs yields an error the chunk being filled
// is dropped, earlier chunks stay committed, and the error is returned
// wrapped.
func (s *Store) WriteStream(ctx context.Context, docs iter.Seq2[any, error], opts WriteOptions) (WriteReport, error) {
	var srcErr error
	seq := func(yield func(any) bool) {
		for doc, err := range docs {
			if err != nil {
				srcErr = err
				return
			}
			if !yield(doc) {
				return
			}
		}
	}
	return s.write(ctx, seq, func() error { return srcErr }, opts)
}

// write runs a load. sourceErr, when set, reports a failure of docs; it is
// checked before every commit so a group cut short by it is never written.
func (s *Store) write(ctx context.Context, docs iter.Seq[any], sourceErr func() error, opts WriteOptions) (WriteReport, error) {
	if s.closed {
		return WriteReport{}, ErrClosed
	}

	batchSize := opts.BatchSize
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}

	report := WriteReport{LoadID: s.cfg.IDGenerator.Generate()}
	logger := s.logger.With("load_id", report.LoadID)

	progress := opts.Progress
	switch {
	case opts.DisableProgress:
		progress = nopProgress{}
	case progress == nil:
		progress = &LogProgress{Logger: s.logger, LoadID: report.LoadID}
	}
	progress.Start(opts.Total)
	defer progress.Finish()

	failed := func() error {
		if sourceErr == nil {
			return nil
		}
		if err := sourceErr(); err != nil {
			logger.Warn("load stopped", "error", err, "committed", report.Documents)
			return fmt.Errorf("read documents: %w", err)
		}
		return nil
	}

	index := 0
	for group := range chunk.Chunk(docs, batchSize) {
		if err := failed(); err != nil {
			return report, err
		}
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("write documents: %w", err)
		}

		values, err := s.encodeChunk(group, index)
		if err != nil {
			logger.Warn("load stopped", "error", err, "committed", report.Documents)
			return report, err
		}
		index += len(group)

		lastID, err := s.insertChunk(ctx, values)
		if err != nil {
			logger.Warn("load stopped", "error", err, "committed", report.Documents)
			return report, fmt.Errorf("write documents: chunk %d: %w", report.Chunks+1, err)
		}

		if report.FirstID == 0 {
			report.FirstID = lastID - int64(len(values)) + 1
		}
		report.LastID = lastID
		report.Documents += len(values)
		report.Chunks++
		progress.Add(len(values))
	}
	if err := failed(); err != nil {
		return report, err
	}

	logger.Debug("documents written",
		"documents", report.Documents,
		"chunks", report.Chunks,
	)
	return report, nil
}

// WriteSlice is WriteDocuments over a slice, with Total set to its length
// unless opts already sets one.
func (s *Store) WriteSlice(ctx context.Context, docs []any, opts WriteOptions) (WriteReport, error) {
	if opts.Total == 0 {
		opts.Total = len(docs)
	}
	return s.WriteDocuments(ctx, chunk.Slice(docs), opts)
}

// encodeChunk serializes every document of a chunk. offset is the index of
// the chunk's first document in the whole load.
func (s *Store) encodeChunk(group []any, offset int) ([]any, error) {
	values := make([]any, len(group))
	for i, doc := range group {
		v, err := s.cfg.Codec.Encode(doc)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", offset+i, err)
		}
		values[i] = v
	}
	return values, nil
}

// insertChunk writes values in one transaction and returns the id of the
// last row inserted.
func (s *Store) insertChunk(ctx context.Context, values []any) (int64, error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op after commit

	var lastID int64
	for start := 0; start < len(values); start += maxStatementParams {
		end := min(start+maxStatementParams, len(values))
		part := values[start:end]

		res, err := tx.ExecContext(ctx, s.insertSQL(len(part)), part...)
		if err != nil {
			return 0, fmt.Errorf("insert: %w", err)
		}
		lastID, err = res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("last insert id: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return lastID, nil
}

func (s *Store) insertSQL(rows int) string {
	var b strings.Builder
	b.Grow(32 + len(s.table) + len(s.column) + rows*4)
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES ", s.table, s.column)
	for i := range rows {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString("(?)")
	}
	return b.String()
}
