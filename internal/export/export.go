// Package export writes stored document bodies out as JSON Lines, YAML or
// CBOR.
package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"

	"github.com/roach88/sqlitejson/internal/codec"
)

// Format names an output encoding.
type Format string

const (
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
	FormatCBOR  Format = "cbor"
)

// ParseFormat validates an output format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "jsonl", "ndjson":
		return FormatJSONL, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "cbor":
		return FormatCBOR, nil
	}
	return "", fmt.Errorf("unknown output format %q (want one of jsonl, yaml, cbor)", s)
}

// Encoder writes one document body at a time. Close flushes buffered
// output; it does not close the underlying writer.
type Encoder interface {
	Encode(body string) error
	Close() error
}

// cborEncMode uses Core Deterministic Encoding (RFC 8949 §4.2): sorted map
// keys, smallest integer encoding, no indefinite-length items.
var cborEncMode cbor.EncMode

func init() {
	var err error
	cborEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("export: CBOR encoder initialization failed: " + err.Error())
	}
}

// NewEncoder returns an Encoder writing format to w.
func NewEncoder(format Format, w io.Writer) (Encoder, error) {
	switch format {
	case FormatJSONL:
		return &jsonlEncoder{w: bufio.NewWriter(w)}, nil
	case FormatYAML:
		return &yamlEncoder{enc: yaml.NewEncoder(w)}, nil
	case FormatCBOR:
		return &cborEncoder{enc: cborEncMode.NewEncoder(w)}, nil
	}
	return nil, fmt.Errorf("unknown output format %q", format)
}

// jsonlEncoder writes bodies exactly as stored, one per line.
type jsonlEncoder struct {
	w *bufio.Writer
}

func (e *jsonlEncoder) Encode(body string) error {
	if strings.ContainsAny(body, "\r\n") {
		// Pretty-printed text inserted by hand; compact it onto one line.
		doc, err := codec.Decode(body)
		if err != nil {
			return err
		}
		text, err := codec.Encoder{}.EncodeText(doc)
		if err != nil {
			return err
		}
		body = text
	}
	if _, err := e.w.WriteString(body); err != nil {
		return err
	}
	return e.w.WriteByte('\n')
}

func (e *jsonlEncoder) Close() error {
	return e.w.Flush()
}

// yamlEncoder writes a multi-document YAML stream.
type yamlEncoder struct {
	enc *yaml.Encoder
}

func (e *yamlEncoder) Encode(body string) error {
	doc, err := decodeBody(body)
	if err != nil {
		return err
	}
	if err := e.enc.Encode(doc); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return nil
}

func (e *yamlEncoder) Close() error {
	return e.enc.Close()
}

// cborEncoder writes a CBOR sequence (RFC 8742), one item per document.
type cborEncoder struct {
	enc *cbor.Encoder
}

func (e *cborEncoder) Encode(body string) error {
	doc, err := decodeBody(body)
	if err != nil {
		return err
	}
	if err := e.enc.Encode(doc); err != nil {
		return fmt.Errorf("encode cbor: %w", err)
	}
	return nil
}

func (e *cborEncoder) Close() error {
	return nil
}

// decodeBody parses a stored body and replaces json.Number with int64 or
// float64 so numbers are written as numbers rather than strings.
func decodeBody(body string) (any, error) {
	doc, err := codec.Decode(body)
	if err != nil {
		return nil, err
	}
	return plainNumbers(doc), nil
}

func plainNumbers(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, elem := range val {
			val[k] = plainNumbers(elem)
		}
		return val
	case []any:
		for i, elem := range val {
			val[i] = plainNumbers(elem)
		}
		return val
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return n
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	}
	return v
}
