package geom

import (
	"fmt"
	"math"
)

// NarrowError reports a layout quantity that cannot be represented in the
// integer width it is being converted to.
type NarrowError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *NarrowError) Error() string {
	return fmt.Sprintf("geom: %s: value %v %s", e.Field, e.Value, e.Reason)
}

func checkFinite(field string, v float64) error {
	if math.IsNaN(v) {
		return &NarrowError{Field: field, Value: v, Reason: "is NaN"}
	}
	if math.IsInf(v, 0) {
		return &NarrowError{Field: field, Value: v, Reason: "is infinite"}
	}
	return nil
}

// Uint32 truncates a non-negative finite value towards zero.
func Uint32(field string, v float64) (uint32, error) {
	if err := checkFinite(field, v); err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, &NarrowError{Field: field, Value: v, Reason: "is negative"}
	}
	t := math.Floor(v)
	if t > math.MaxUint32 {
		return 0, &NarrowError{Field: field, Value: v, Reason: "does not fit in 32 bits"}
	}
	return uint32(t), nil
}

// CeilUint32 rounds a non-negative finite value up.
func CeilUint32(field string, v float64) (uint32, error) {
	if err := checkFinite(field, v); err != nil {
		return 0, err
	}
	return Uint32(field, math.Ceil(v))
}

// Int truncates a finite value towards zero into a non-negative int
// bounded by math.MaxInt32, the largest surface dimension we allocate.
func Int(field string, v float64) (int, error) {
	u, err := Uint32(field, v)
	if err != nil {
		return 0, err
	}
	if u > math.MaxInt32 {
		return 0, &NarrowError{Field: field, Value: v, Reason: "exceeds maximum surface dimension"}
	}
	return int(u), nil
}

// CeilInt rounds a non-negative finite value up into an int.
func CeilInt(field string, v float64) (int, error) {
	if err := checkFinite(field, v); err != nil {
		return 0, err
	}
	return Int(field, math.Ceil(v))
}

// Uint32FromInt converts a length or index.
func Uint32FromInt(field string, v int) (uint32, error) {
	if v < 0 || uint64(v) > math.MaxUint32 {
		return 0, &NarrowError{Field: field, Value: float64(v), Reason: "does not fit in 32 bits"}
	}
	return uint32(v), nil
}
