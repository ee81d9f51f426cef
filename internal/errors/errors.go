// Package errors defines the error taxonomy shared by the pipeline stages.
// Stage failures carry enough context to journal and log without the caller
// re-deriving it.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPrice marks a non-positive entry or stop price.
	ErrInvalidPrice = errors.New("price must be positive")
	// ErrEqualEntryStop marks an intent whose entry and stop coincide.
	ErrEqualEntryStop = errors.New("entry and stop prices are equal")
	// ErrZeroQuantity marks a sizing run that could not afford a single share.
	ErrZeroQuantity = errors.New("computed quantity is zero")
	// ErrDataNotFound marks an empty data source.
	ErrDataNotFound = errors.New("data not found")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// NewValidationError builds a ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// SizingError reports a position-sizing failure with the prices that caused it.
type SizingError struct {
	Symbol string
	Entry  float64
	Stop   float64
	Err    error
}

func (e *SizingError) Error() string {
	return fmt.Sprintf("sizing error [%s] entry=%.2f stop=%.2f: %v", e.Symbol, e.Entry, e.Stop, e.Err)
}

func (e *SizingError) Unwrap() error { return e.Err }

// NewSizingError builds a SizingError wrapping the underlying cause.
func NewSizingError(symbol string, entry, stop float64, err error) *SizingError {
	return &SizingError{Symbol: symbol, Entry: entry, Stop: stop, Err: err}
}

// DataError reports a candle-data problem at the feed boundary.
type DataError struct {
	DataType string
	Symbol   string
	Message  string
	Err      error
}

func (e *DataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data error [%s] %s: %s: %v", e.DataType, e.Symbol, e.Message, e.Err)
	}
	return fmt.Sprintf("data error [%s] %s: %s", e.DataType, e.Symbol, e.Message)
}

func (e *DataError) Unwrap() error { return e.Err }

// NewDataError builds a DataError; err may be nil when the data itself is
// the problem rather than an operation on it.
func NewDataError(dataType, symbol, message string, err error) *DataError {
	return &DataError{DataType: dataType, Symbol: symbol, Message: message, Err: err}
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool { return errors.As(err, target) }
