package packer

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDimension is returned when a container or box dimension is not a positive finite number.
	ErrInvalidDimension = errors.New("dimension must be a positive finite number")
	// ErrInvalidWeight is returned when a box weight or the weight budget is negative or not finite.
	ErrInvalidWeight = errors.New("weight must be a non-negative finite number")
	// ErrInvalidQuantity is returned when a box quantity is negative.
	ErrInvalidQuantity = errors.New("quantity must be a non-negative integer")
	// ErrUndefinedUtilization is returned when the container volume cannot be used as a divisor.
	ErrUndefinedUtilization = errors.New("container volume is zero or not finite, utilization is undefined")
)

// InputError names the input that failed validation.
type InputError struct {
	Field string
	Err   error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

func invalid(field string, err error) error {
	return &InputError{Field: field, Err: err}
}
