package models

import (
	"bytes"

	"github.com/goccy/go-json"
)

// Optional is a request field with three states: absent from the body,
// present as null, or present with a value. Decoding only touches fields
// whose key appears in the document, so the zero value means absent.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		var zero T
		o.Value = zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Null {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// HasValue reports a present, non-null value.
func (o Optional[T]) HasValue() bool {
	return o.Set && !o.Null
}

// Ptr returns nil for null, otherwise a pointer to the value. Only
// meaningful when Set is true.
func (o Optional[T]) Ptr() *T {
	if o.Null || !o.Set {
		return nil
	}
	v := o.Value
	return &v
}
