package relay

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Entry is one key/value pair of an Info section.
type Entry struct {
	Key   string
	Value any
}

// Info is a key/value status section such as runtime or build
// information. It keeps the order the relay sent the keys in.
type Info []Entry

// UnmarshalJSON decodes a JSON object, preserving key order.
func (in *Info) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("info: expected object, got %v", tok)
	}

	out := Info{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return errors.New("info: object key is not a string")
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("info: value of %q: %w", key, err)
		}
		out = append(out, Entry{Key: key, Value: v})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*in = out
	return nil
}

// Keys returns the keys in order.
func (in Info) Keys() []string {
	keys := make([]string, len(in))
	for i, e := range in {
		keys[i] = e.Key
	}
	return keys
}

// Get returns the value stored under key.
func (in Info) Get(key string) (any, bool) {
	for _, e := range in {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}
