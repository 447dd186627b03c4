package model

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
)

// Opt is a value that may be absent. The zero value is absent.
type Opt[T any] struct {
	v  T
	ok bool
}

// Some wraps a present value.
func Some[T any](v T) Opt[T] { return Opt[T]{v: v, ok: true} }

// None returns an absent value.
func None[T any]() Opt[T] { return Opt[T]{} }

// Get returns the value and whether it is present.
func (o Opt[T]) Get() (T, bool) { return o.v, o.ok }

// Valid reports whether the value is present.
func (o Opt[T]) Valid() bool { return o.ok }

// Or returns the value, or def when absent.
func (o Opt[T]) Or(def T) T {
	if !o.ok {
		return def
	}
	return o.v
}

// String formats a present value with fmt; an absent value is empty.
func (o Opt[T]) String() string {
	if !o.ok {
		return ""
	}
	return fmt.Sprint(o.v)
}

// MarshalJSON encodes an absent value as null.
func (o Opt[T]) MarshalJSON() ([]byte, error) {
	if !o.ok {
		return []byte("null"), nil
	}
	return json.Marshal(o.v)
}

// UnmarshalJSON decodes null as absent.
func (o *Opt[T]) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*o = Opt[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

// Value stores an absent value as NULL.
func (o Opt[T]) Value() (driver.Value, error) {
	if !o.ok {
		return nil, nil
	}
	return driver.DefaultParameterConverter.ConvertValue(o.v)
}

// Scan reads NULL as absent.
func (o *Opt[T]) Scan(src any) error {
	var n sql.Null[T]
	if err := n.Scan(src); err != nil {
		return err
	}
	*o = Opt[T]{v: n.V, ok: n.Valid}
	return nil
}

// Map applies f to a present value.
func Map[T, U any](o Opt[T], f func(T) U) Opt[U] {
	if !o.ok {
		return Opt[U]{}
	}
	return Some(f(o.v))
}

// Map2 applies f when both values are present.
func Map2[A, B, U any](a Opt[A], b Opt[B], f func(A, B) U) Opt[U] {
	if !a.ok || !b.ok {
		return Opt[U]{}
	}
	return Some(f(a.v, b.v))
}

// Bind applies f to a present value; f may itself produce an absent value.
func Bind[T, U any](o Opt[T], f func(T) Opt[U]) Opt[U] {
	if !o.ok {
		return Opt[U]{}
	}
	return f(o.v)
}

// Finite drops NaN and infinite values so they never reach aggregates.
func Finite(o Opt[float64]) Opt[float64] {
	if !o.ok || math.IsNaN(o.v) || math.IsInf(o.v, 0) {
		return Opt[float64]{}
	}
	return o
}
