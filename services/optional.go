package services

import (
	"bytes"
	"encoding/json"
)

// Optional is a request field that tells "absent" apart from "null".
// Set is false when the key was missing; Value is nil for an explicit null.
type Optional[T any] struct {
	Set   bool
	Value *T
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// Some builds a set, non-null Optional
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}

// Null builds a set Optional that clears the field
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

// apply overwrites *dst when the field was present in the request
func (o Optional[T]) apply(dst **T) {
	if o.Set {
		*dst = o.Value
	}
}

func sameUint(a, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
