package format

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/factorydata/internal/tlv"
)

// ParseJSON parses a flat JSON object into pairs, keeping key order.
func ParseJSON(data []byte) ([]Pair, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("top level must be an object, got %v", tok)
	}

	var pairs []Pair
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", keyTok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("value of %s: %w", key, err)
		}
		pairs = append(pairs, Pair{Name: key, Value: value})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level object")
	}
	return pairs, nil
}

// ReadJSON parses a JSON document from r and applies it to the store.
// A malformed document yields *FormatError and the store is not modified.
func ReadJSON(r io.Reader, store *tlv.Store, actor string) ([]tlv.Event, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	pairs, err := ParseJSON(data)
	if err != nil {
		return nil, &FormatError{Source: actor, Err: err}
	}
	return Apply(store, pairs, actor), nil
}

// LoadJSONFile reads a JSON document from path and applies it to the store.
// A missing file yields *NotFoundError.
func LoadJSONFile(path string, store *tlv.Store, actor string) ([]tlv.Event, error) {
	data, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	pairs, err := ParseJSON(data)
	if err != nil {
		return nil, &FormatError{Source: path, Err: err}
	}
	return Apply(store, pairs, actor), nil
}

// MarshalJSON renders a snapshot as an ordered, 4-space indented JSON object.
func MarshalJSON(entries []tlv.Entry) ([]byte, error) {
	values, err := documentValues(entries)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if len(values) == 0 {
		buf.WriteString("{}\n")
		return buf.Bytes(), nil
	}

	buf.WriteString("{\n")
	for i, v := range values {
		key, err := marshalPlain(v.Name, "")
		if err != nil {
			return nil, err
		}
		val, err := marshalPlain(v.Value, "    ")
		if err != nil {
			return nil, err
		}
		buf.WriteString("    ")
		buf.Write(key)
		buf.WriteString(": ")
		buf.Write(val)
		if i < len(values)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

// WriteJSON writes the snapshot to w as a JSON document.
func WriteJSON(w io.Writer, entries []tlv.Entry) error {
	data, err := MarshalJSON(entries)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// SaveJSONFile writes the snapshot to path atomically.
func SaveJSONFile(path string, entries []tlv.Entry) error {
	data, err := MarshalJSON(entries)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return WriteFileAtomic(path, data)
}

// marshalPlain encodes v without HTML escaping, nesting continuation lines
// under prefix.
func marshalPlain(v any, prefix string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent(prefix, "    ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
