// Copyright (c) 2025 @AmarnathCJD

// Package params builds the ordered JSON objects the login endpoints expect.
// Key order is significant: the encrypted payload is compared byte for byte
// with what the web client produces.
package params

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

type Field struct {
	Key   string
	Value any
}

// Record is a JSON object that remembers insertion order.
type Record struct {
	fields []Field
}

func New(fields ...Field) *Record {
	r := &Record{}
	for _, f := range fields {
		r.Set(f.Key, f.Value)
	}
	return r
}

// Set replaces the value of an existing key in place or appends a new one.
func (r *Record) Set(key string, value any) *Record {
	if i := r.index(key); i >= 0 {
		r.fields[i].Value = value
		return r
	}
	r.fields = append(r.fields, Field{Key: key, Value: value})
	return r
}

// InsertAfter places key directly after an existing key, or appends it when
// after is absent. A key already present is moved.
func (r *Record) InsertAfter(after, key string, value any) *Record {
	r.Delete(key)
	i := r.index(after)
	if i < 0 {
		return r.Set(key, value)
	}
	r.fields = append(r.fields, Field{})
	copy(r.fields[i+2:], r.fields[i+1:])
	r.fields[i+1] = Field{Key: key, Value: value}
	return r
}

func (r *Record) Get(key string) (any, bool) {
	if i := r.index(key); i >= 0 {
		return r.fields[i].Value, true
	}
	return nil, false
}

func (r *Record) Delete(key string) {
	if i := r.index(key); i >= 0 {
		r.fields = append(r.fields[:i], r.fields[i+1:]...)
	}
}

func (r *Record) Keys() []string {
	keys := make([]string, len(r.fields))
	for i, f := range r.fields {
		keys[i] = f.Key
	}
	return keys
}

func (r *Record) Fields() []Field {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

func (r *Record) Len() int { return len(r.fields) }

func (r *Record) index(key string) int {
	for i, f := range r.fields {
		if f.Key == key {
			return i
		}
	}
	return -1
}

// MarshalJSON writes the fields in order without HTML escaping, matching
// JSON.stringify for every value the login flow sends.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encode(&buf, f.Key); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := encode(&buf, f.Value); err != nil {
			return nil, errors.Wrapf(err, "field %q", f.Key)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Marshal is MarshalJSON returning a string.
func Marshal(r *Record) (string, error) {
	b, err := r.MarshalJSON()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func encode(buf *bytes.Buffer, v any) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte{'\n'}))
	return nil
}
