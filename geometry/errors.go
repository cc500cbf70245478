package geometry

import (
	"errors"
	"fmt"
)

// ErrAddressOutOfRange is reported when a logical coordinate lies outside of
// the configured device.
var ErrAddressOutOfRange = errors.New("address out of range")

// ErrInvalidGeometry is reported when the device description cannot be laid
// out.
var ErrInvalidGeometry = errors.New("invalid geometry")

// ErrNoLogicLayer is reported when an I/O location is requested from a
// mapper that does not model the logic layer.
var ErrNoLogicLayer = errors.New("logic layer is not modeled")

// AddrError describes which part of a logical address is out of range.
type AddrError struct {
	Field string
	Value int
	Limit int
}

func (e *AddrError) Error() string {
	return fmt.Sprintf("%s %d out of range [0, %d)", e.Field, e.Value, e.Limit)
}

// Unwrap allows errors.Is(err, ErrAddressOutOfRange).
func (e *AddrError) Unwrap() error {
	return ErrAddressOutOfRange
}
