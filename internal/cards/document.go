// Package cards loads, validates and formats the flashcard deck file.
package cards

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"
)

var (
	// ErrMissingFile is returned when the deck file does not exist.
	ErrMissingFile = errors.New("cards file not found")
	// ErrMalformedJSON is returned for input that is not a single valid
	// UTF-8 JSON value.
	ErrMalformedJSON = errors.New("malformed JSON")
	// ErrSchemaViolation is matched by every *ViolationError.
	ErrSchemaViolation = errors.New("schema violation")
	// ErrIO wraps read, write and stat failures other than a missing file.
	ErrIO = errors.New("i/o error")
)

// Object is a JSON object that keeps its keys in document order.
type Object struct {
	keys   []string
	values map[string]any
}

// NewObject returns an empty Object.
func NewObject() *Object {
	return &Object{values: make(map[string]any)}
}

// Set adds or replaces key. A replaced key keeps its original position.
func (o *Object) Set(key string, value any) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (any, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Keys returns the keys in document order.
func (o *Object) Keys() []string {
	return o.keys
}

// Len returns the number of keys.
func (o *Object) Len() int {
	return len(o.keys)
}

// Parse decodes data into a tree of *Object, []any, string, json.Number,
// bool and nil. Numbers keep their literal text.
func Parse(data []byte) (any, error) {
	// The decoder would replace invalid bytes with U+FFFD.
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: input is not valid UTF-8", ErrMalformedJSON)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := parseValue(dec)
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}

	// Anything after the root value is an error, like "Extra data".
	if tok, err := dec.Token(); err != io.EOF {
		if err == nil {
			err = fmt.Errorf("extra data after root value at offset %d (%v)", dec.InputOffset(), tok)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}
	return v, nil
}

func parseValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	switch delim {
	case '{':
		obj := NewObject()
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, nestedErr(err)
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("object key at offset %d is not a string", dec.InputOffset())
			}
			val, err := parseValue(dec)
			if err != nil {
				return nil, nestedErr(err)
			}
			obj.Set(key, val)
		}
		if _, err := dec.Token(); err != nil {
			return nil, nestedErr(err)
		}
		return obj, nil
	case '[':
		arr := []any{}
		for dec.More() {
			val, err := parseValue(dec)
			if err != nil {
				return nil, nestedErr(err)
			}
			arr = append(arr, val)
		}
		if _, err := dec.Token(); err != nil {
			return nil, nestedErr(err)
		}
		return arr, nil
	}
	return nil, fmt.Errorf("unexpected delimiter %q at offset %d", delim, dec.InputOffset())
}

// nestedErr turns an EOF inside an open container into ErrUnexpectedEOF.
func nestedErr(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

// LoadFile reads and parses path.
func LoadFile(path string) (any, error) {
	raw, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

func readFile(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingFile, path)
		}
		return nil, fmt.Errorf("%w: read %s: %v", ErrIO, path, err)
	}
	return raw, nil
}

// Plain converts a parsed tree into map[string]any / []any values, losing
// key order. Used where a consumer expects encoding/json shapes.
func Plain(v any) any {
	switch t := v.(type) {
	case *Object:
		m := make(map[string]any, t.Len())
		for _, k := range t.keys {
			m[k] = Plain(t.values[k])
		}
		return m
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = Plain(item)
		}
		return out
	default:
		return v
	}
}
