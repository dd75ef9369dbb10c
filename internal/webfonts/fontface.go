package webfonts

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Field is a single key/value pair of a font face declaration.
type Field struct {
	Key   string
	Value any
}

// FontFace is an ordered mapping of descriptor keys to values.
//
// Declaration order is preserved through normalization and encoding so that
// registered faces read the same way the theme author wrote them.
type FontFace struct {
	fields []Field
}

// NewFontFace builds a face from fields. Repeated keys replace the earlier
// value in the earlier position.
func NewFontFace(fields ...Field) FontFace {
	var f FontFace
	for _, fd := range fields {
		f.Set(fd.Key, fd.Value)
	}
	return f
}

// Len returns the number of keys.
func (f FontFace) Len() int { return len(f.fields) }

// Get returns the value stored under key.
func (f FontFace) Get(key string) (any, bool) {
	for _, fd := range f.fields {
		if fd.Key == key {
			return fd.Value, true
		}
	}
	return nil, false
}

// StringValue returns the value under key when it is a string.
func (f FontFace) StringValue(key string) string {
	v, _ := f.Get(key)
	s, _ := v.(string)
	return s
}

// Declares reports whether key is present with a non-nil value.
func (f FontFace) Declares(key string) bool {
	v, ok := f.Get(key)
	return ok && v != nil
}

// Set stores value under key, replacing an existing value in place or
// appending a new key at the end.
func (f *FontFace) Set(key string, value any) {
	for i := range f.fields {
		if f.fields[i].Key == key {
			f.fields[i].Value = value
			return
		}
	}
	f.fields = append(f.fields, Field{Key: key, Value: value})
}

// Keys returns the keys in declaration order.
func (f FontFace) Keys() []string {
	keys := make([]string, len(f.fields))
	for i, fd := range f.fields {
		keys[i] = fd.Key
	}
	return keys
}

// Fields returns a copy of the fields in declaration order.
func (f FontFace) Fields() []Field {
	out := make([]Field, len(f.fields))
	copy(out, f.fields)
	return out
}

// Clone returns a face that shares no field storage with f.
func (f FontFace) Clone() FontFace {
	return FontFace{fields: f.Fields()}
}

// Equal reports whether both faces hold the same keys in the same order with
// equal encoded values.
func (f FontFace) Equal(other FontFace) bool {
	a, errA := json.Marshal(f)
	b, errB := json.Marshal(other)
	return errA == nil && errB == nil && bytes.Equal(a, b)
}

// MarshalJSON encodes the face as a JSON object in declaration order.
func (f FontFace) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, fd := range f.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(fd.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(fd.Value)
		if err != nil {
			return nil, fmt.Errorf("encode %q: %w", fd.Key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object keeping its key order.
func (f *FontFace) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("font face: expected object, got %v", tok)
	}
	f.fields = nil
	for dec.More() {
		tok, err = dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("font face: expected key, got %v", tok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("font face %q: %w", key, err)
		}
		f.Set(key, value)
	}
	_, err = dec.Token()
	return err
}

// MarshalYAML encodes the face as a YAML mapping in declaration order.
func (f FontFace) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, fd := range f.fields {
		var value yaml.Node
		if err := value.Encode(fd.Value); err != nil {
			return nil, fmt.Errorf("encode %q: %w", fd.Key, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: fd.Key},
			&value,
		)
	}
	return node, nil
}
