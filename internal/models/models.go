// Package models provides domain models for the signal dashboard.
package models

import (
	"encoding/json"
	"time"
)

// Opt holds a value that may be absent. The zero value is absent.
type Opt[T any] struct {
	value T
	ok    bool
}

// Present wraps v as a present value.
func Present[T any](v T) Opt[T] {
	return Opt[T]{value: v, ok: true}
}

// Absent returns an absent value of type T.
func Absent[T any]() Opt[T] {
	return Opt[T]{}
}

// Get returns the value and whether it is present.
func (o Opt[T]) Get() (T, bool) {
	return o.value, o.ok
}

// IsPresent reports whether a value is held.
func (o Opt[T]) IsPresent() bool {
	return o.ok
}

// IsAbsent reports whether no value is held.
func (o Opt[T]) IsAbsent() bool {
	return !o.ok
}

// Value returns the held value or the zero value of T.
func (o Opt[T]) Value() T {
	return o.value
}

// Or returns the held value, or fallback when absent.
func (o Opt[T]) Or(fallback T) T {
	if o.ok {
		return o.value
	}
	return fallback
}

// MarshalJSON encodes an absent value as null.
func (o Opt[T]) MarshalJSON() ([]byte, error) {
	if !o.ok {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// MarshalYAML encodes an absent value as null.
func (o Opt[T]) MarshalYAML() (interface{}, error) {
	if !o.ok {
		return nil, nil
	}
	return o.value, nil
}

// DateLayout is the canonical rendering of a Date.
const DateLayout = "2006-01-02"

// Date is a calendar day without time of day, held in UTC.
type Date struct {
	t time.Time
}

// NewDate returns the calendar day for year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time {
	return d.t
}

// Before reports whether d is an earlier day than other.
func (d Date) Before(other Date) bool {
	return d.t.Before(other.t)
}

// Format renders the date with a Go time layout.
func (d Date) Format(layout string) string {
	return d.t.Format(layout)
}

func (d Date) String() string {
	return d.t.Format(DateLayout)
}

// MarshalJSON encodes the date as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// MarshalYAML encodes the date as "YYYY-MM-DD".
func (d Date) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}
