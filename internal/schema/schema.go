// Package schema validates documents against a CUE definition before they
// are loaded.
//
// Example:
//
//	v, err := schema.Compile([]byte(`#Doc: {name: string, age?: int & >=0}`), "#Doc")
//	err = v.Validate(map[string]any{"name": "ada"})
package schema

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"

	"github.com/roach88/sqlitejson/internal/codec"
)

// ValidationError reports a document that does not satisfy the definition.
type ValidationError struct {
	Definition string
	Message    string
}

func (e *ValidationError) Error() string {
	if e.Definition == "" {
		return "schema: " + e.Message
	}
	return fmt.Sprintf("schema %s: %s", e.Definition, e.Message)
}

// IsValidationError returns true if err wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Validator checks documents against one compiled CUE value.
//
// Thread-safety: a Validator shares a CUE context between calls and is not
// safe for concurrent use.
type Validator struct {
	ctx        *cue.Context
	schema     cue.Value
	definition string
}

// Compile builds a Validator from CUE source. definition selects the value
// documents must satisfy, e.g. "#Doc"; empty means the whole file.
func Compile(src []byte, definition string) (*Validator, error) {
	ctx := cuecontext.New()
	root := ctx.CompileBytes(src)
	if err := root.Err(); err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	schema := root
	if definition != "" {
		schema = root.LookupPath(cue.ParsePath(definition))
		if !schema.Exists() {
			return nil, fmt.Errorf("compile schema: definition %s not found", definition)
		}
		if err := schema.Err(); err != nil {
			return nil, fmt.Errorf("compile schema: %s: %w", definition, err)
		}
	}

	return &Validator{ctx: ctx, schema: schema, definition: definition}, nil
}

// Validate unifies doc with the schema and requires the result to be
// concrete, so required fields the document leaves out are reported.
func (v *Validator) Validate(doc any) error {
	text, err := codec.Encoder{}.EncodeText(doc)
	if err != nil {
		return err
	}

	expr, err := cuejson.Extract("document", []byte(text))
	if err != nil {
		return &ValidationError{Definition: v.definition, Message: err.Error()}
	}
	value := v.ctx.BuildExpr(expr)
	if err := value.Err(); err != nil {
		return &ValidationError{Definition: v.definition, Message: err.Error()}
	}

	unified := v.schema.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return &ValidationError{Definition: v.definition, Message: describe(err)}
	}
	return nil
}

// describe flattens a CUE error list into one line.
func describe(err error) string {
	errs := cueerrors.Errors(err)
	if len(errs) <= 1 {
		return err.Error()
	}
	msg := errs[0].Error()
	return fmt.Sprintf("%s (and %d more)", msg, len(errs)-1)
}
