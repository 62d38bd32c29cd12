// Package ingest turns files of JSON Lines, JSON, JSONC or YAML into a
// lazy sequence of documents for the store.
package ingest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/roach88/sqlitejson/internal/codec"
)

// Format names an input encoding.
type Format string

const (
	FormatJSONL Format = "jsonl"
	FormatJSON  Format = "json"
	FormatJSONC Format = "jsonc"
	FormatYAML  Format = "yaml"
)

// Formats lists the supported input formats.
func Formats() []Format {
	return []Format{FormatJSONL, FormatJSON, FormatJSONC, FormatYAML}
}

// ParseFormat validates a format name. Matching is case-insensitive and
// "yml" and "ndjson" are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "jsonl", "ndjson":
		return FormatJSONL, nil
	case "json":
		return FormatJSON, nil
	case "jsonc":
		return FormatJSONC, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown input format %q (want one of jsonl, json, jsonc, yaml)", s)
}

// DetectFormat guesses the format from a file extension. Unknown extensions
// and "-" (stdin) are read as JSON Lines.
func DetectFormat(path string) Format {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if f, err := ParseFormat(ext); err == nil {
		return f
	}
	return FormatJSONL
}

// maxLineSize bounds a single JSON Lines record.
const maxLineSize = 64 << 20

// Validator checks a document before it is handed to the store.
type Validator interface {
	Validate(doc any) error
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithValidator runs v on every document. The first failure ends the
// sequence and is reported by Err.
func WithValidator(v Validator) ReaderOption {
	return func(r *Reader) {
		r.validator = v
	}
}

// Reader streams documents from an input. Like bufio.Scanner it reports
// the error that stopped the stream through Err once the sequence ends.
//
// A Reader is single-pass: ranging over All a second time yields nothing.
type Reader struct {
	src       io.Reader
	format    Format
	validator Validator

	count int
	used  bool
	err   error
}

// NewReader returns a Reader decoding src as format.
func NewReader(src io.Reader, format Format, opts ...ReaderOption) (*Reader, error) {
	if _, err := ParseFormat(string(format)); err != nil {
		return nil, err
	}
	r := &Reader{src: src, format: format}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// All returns the documents in input order.
func (r *Reader) All() iter.Seq[any] {
	return func(yield func(any) bool) {
		if r.used {
			return
		}
		r.used = true

		var values iter.Seq2[any, error]
		switch r.format {
		case FormatJSONL:
			values = readJSONL(r.src)
		case FormatJSON:
			values = readJSON(r.src)
		case FormatJSONC:
			values = readJSONC(r.src)
		case FormatYAML:
			values = readYAML(r.src)
		}

		for doc, err := range values {
			if err == nil {
				doc, err = topLevel(doc)
			}
			if err != nil {
				r.err = fmt.Errorf("%s input: %w", r.format, err)
				return
			}
			if r.validator != nil {
				if err := r.validator.Validate(doc); err != nil {
					r.err = fmt.Errorf("document %d: %w", r.count, err)
					return
				}
			}
			r.count++
			if !yield(doc) {
				return
			}
		}
	}
}

// Documents is All with the stopping error delivered in-band: after the
// last good document it yields (nil, err) when the input failed.
func (r *Reader) Documents() iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		for doc := range r.All() {
			if !yield(doc, nil) {
				return
			}
		}
		if r.err != nil {
			yield(nil, r.err)
		}
	}
}

// Err returns the first error that ended All early, or nil.
func (r *Reader) Err() error {
	return r.err
}

// Count returns the number of documents yielded so far.
func (r *Reader) Count() int {
	return r.count
}

// topLevel keeps mappings and sequences as decoded values and turns a
// top-level scalar back into JSON text, so the record "hello" is stored as
// a JSON string and not as the bare word.
func topLevel(doc any) (any, error) {
	switch doc.(type) {
	case map[string]any, []any:
		return doc, nil
	}
	text, err := codec.Encoder{}.EncodeText(doc)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(text), nil
}

func readJSONL(src io.Reader) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		scanner := bufio.NewScanner(src)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

		line := 0
		for scanner.Scan() {
			line++
			text := strings.TrimSpace(scanner.Text())
			if text == "" {
				continue
			}
			doc, err := codec.Decode(text)
			if err != nil {
				yield(nil, fmt.Errorf("line %d: %w", line, err))
				return
			}
			if !yield(doc, nil) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			yield(nil, fmt.Errorf("line %d: %w", line+1, err))
		}
	}
}

// readJSON reads either one top-level value or, when the input is an
// array, each of its elements in turn without loading the whole array.
func readJSON(src io.Reader) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		br := bufio.NewReader(src)
		first, err := peekNonSpace(br)
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			yield(nil, err)
			return
		}

		dec := json.NewDecoder(br)
		dec.UseNumber()

		if first != '[' {
			var doc any
			if err := dec.Decode(&doc); err != nil {
				yield(nil, &codec.DecodingError{Err: err})
				return
			}
			if err := expectEOF(dec); err != nil {
				yield(nil, err)
				return
			}
			yield(doc, nil)
			return
		}

		if _, err := dec.Token(); err != nil {
			yield(nil, &codec.DecodingError{Err: err})
			return
		}
		for index := 0; dec.More(); index++ {
			var doc any
			if err := dec.Decode(&doc); err != nil {
				yield(nil, fmt.Errorf("element %d: %w", index, &codec.DecodingError{Err: err}))
				return
			}
			if !yield(doc, nil) {
				return
			}
		}
		if _, err := dec.Token(); err != nil {
			yield(nil, &codec.DecodingError{Err: err})
			return
		}
		if err := expectEOF(dec); err != nil {
			yield(nil, err)
		}
	}
}

func readJSONC(src io.Reader) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		data, err := io.ReadAll(src)
		if err != nil {
			yield(nil, err)
			return
		}
		// Comments and trailing commas are stripped before parsing.
		for doc, err := range readJSON(bytes.NewReader(jsonc.ToJSON(data))) {
			if !yield(doc, err) || err != nil {
				return
			}
		}
	}
}

func readYAML(src io.Reader) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		dec := yaml.NewDecoder(src)
		for index := 0; ; index++ {
			var raw any
			err := dec.Decode(&raw)
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(nil, fmt.Errorf("document %d: %w", index, err))
				return
			}
			if !yield(normalizeYAML(raw), nil) {
				return
			}
		}
	}
}

// normalizeYAML rewrites yaml.v3 output into JSON-compatible values:
// mapping keys become strings and timestamps become RFC 3339 text.
func normalizeYAML(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = normalizeYAML(elem)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[fmt.Sprint(k)] = normalizeYAML(elem)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = normalizeYAML(elem)
		}
		return out
	case time.Time:
		return val.Format(time.RFC3339Nano)
	}
	return v
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		if err := br.UnreadByte(); err != nil {
			return 0, err
		}
		return b, nil
	}
}

func expectEOF(dec *json.Decoder) error {
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return &codec.DecodingError{Err: fmt.Errorf("unexpected data after top-level value")}
	}
	return nil
}
