package cards

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed cards.schema.json
var deckSchema []byte

const deckSchemaURL = "https://abstract-tutoring.local/schemas/cards.schema.json"

// SchemaError is a single JSON Schema failure. Path is a dotted path such
// as "cards[0].front"; empty for the root.
type SchemaError struct {
	Path    string
	Message string
}

func (e SchemaError) String() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Path + ": " + e.Message
}

func compileDeckSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7
	if err := compiler.AddResource(deckSchemaURL, bytes.NewReader(deckSchema)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	schema, err := compiler.Compile(deckSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// CheckSchema validates doc against the embedded deck schema and returns
// every leaf failure instead of stopping at the first one. An empty slice
// means the document conforms.
func CheckSchema(doc any) ([]SchemaError, error) {
	schema, err := compileDeckSchema()
	if err != nil {
		return nil, err
	}

	err = schema.Validate(Plain(doc))
	if err == nil {
		return nil, nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return nil, fmt.Errorf("validate: %w", err)
	}

	var out []SchemaError
	collectSchemaErrors(ve, &out)
	return out, nil
}

func collectSchemaErrors(err *jsonschema.ValidationError, out *[]SchemaError) {
	if len(err.Causes) == 0 {
		*out = append(*out, SchemaError{
			Path:    pointerToPath(err.InstanceLocation),
			Message: err.Message,
		})
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(cause, out)
	}
}

// pointerToPath turns "/cards/0/front" into "cards[0].front".
func pointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}

	var b strings.Builder
	for _, part := range strings.Split(ptr, "/") {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if idx, err := strconv.Atoi(part); err == nil {
			fmt.Fprintf(&b, "[%d]", idx)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}
