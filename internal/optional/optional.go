// Package optional provides a small generic container for values that may be absent.
package optional

import (
	"encoding/json"
	"fmt"
)

// Optional holds either a value of T or nothing.
type Optional[T any] struct {
	value T
	set   bool
}

// Some returns an Optional holding value.
func Some[T any](value T) Optional[T] {
	return Optional[T]{value: value, set: true}
}

// None returns an empty Optional.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

func (o *Optional[T]) Set(value T) {
	o.value = value
	o.set = true
}

func (o *Optional[T]) Unset() {
	var zero T
	o.value = zero
	o.set = false
}

func (o Optional[T]) IsSet() bool {
	return o.set
}

// Get returns the held value and whether one was present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// OrElse returns the held value, or fallback when empty.
func (o Optional[T]) OrElse(fallback T) T {
	if o.set {
		return o.value
	}
	return fallback
}

// implements %#v printf
func (o Optional[T]) GoString() string {
	if o.set {
		return fmt.Sprintf("Optional{value=%+v}", o.value)
	}
	return "Optional{not set}"
}

// implements [json.Marshaler]
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.set {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// implements [json.Unmarshaler]
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		o.Unset()
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal optional value: %w", err)
	}
	o.Set(v)
	return nil
}
