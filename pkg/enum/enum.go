package enum

import (
	"fmt"
	"reflect"
)

var registry = map[reflect.Type]any{}

type values[T comparable] map[string]T

// New registers a value of an enum type and returns it unchanged. All values
// of a type must be registered at init time before ToEnum is called.
func New[T comparable](value T) T {
	t := reflect.TypeOf(value)
	if _, ok := registry[t]; !ok {
		registry[t] = values[T]{}
	}

	registry[t].(values[T])[reflect.ValueOf(value).String()] = value
	return value
}

// ToEnum parses a string into a registered enum value of type T.
func ToEnum[T comparable](s string) (T, error) {
	var zero T
	v, ok := registry[reflect.TypeOf(zero)]
	if !ok {
		return zero, fmt.Errorf("not found enum type %T", zero)
	}

	value, ok := v.(values[T])[s]
	if !ok {
		return zero, fmt.Errorf("not found value %s in enum %T", s, zero)
	}

	return value, nil
}
