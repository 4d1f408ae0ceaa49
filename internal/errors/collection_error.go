// Package errors provides standardized error types for collection verbs.
// This package defines CollectionError for consistent error handling across
// all public APIs, with a kind taxonomy, operation context and error
// wrapping support.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies a CollectionError.
type Kind int

const (
	// KindShape marks a dict-only verb applied to a non-record element.
	KindShape Kind = iota + 1
	// KindKey marks a mandatory key missing from a record.
	KindKey
	// KindArgument marks an invalid argument passed to a verb or constructor.
	KindArgument
	// KindFunction marks an error returned by a caller-supplied function.
	KindFunction
)

// String returns the kind name used in error messages
func (k Kind) String() string {
	switch k {
	case KindShape:
		return "shape"
	case KindKey:
		return "key"
	case KindArgument:
		return "argument"
	case KindFunction:
		return "function"
	default:
		return "unknown"
	}
}

// CollectionError represents standardized errors across all collection verbs
type CollectionError struct {
	Kind    Kind   // Error class
	Op      string // Verb name (e.g., "Select", "Explode", "Aggregate")
	Key     string // Record key if applicable
	Message string // Human-readable error description
	Cause   error  // Underlying error cause
}

// Error implements the error interface
func (e *CollectionError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s %s error on key '%s': %s", e.Op, e.Kind, e.Key, e.Message)
	}
	return fmt.Sprintf("%s %s error: %s", e.Op, e.Kind, e.Message)
}

// Unwrap returns the underlying cause for error wrapping support
func (e *CollectionError) Unwrap() error {
	return e.Cause
}

// Is implements error equality checking for errors.Is().
// A sentinel (no Op) matches any error of the same kind.
func (e *CollectionError) Is(target error) bool {
	ce, ok := target.(*CollectionError)
	if !ok {
		return false
	}
	if ce.Op == "" && ce.Key == "" && ce.Message == "" {
		return e.Kind == ce.Kind
	}
	return e.Kind == ce.Kind && e.Op == ce.Op && e.Key == ce.Key && e.Message == ce.Message
}

// Sentinels for errors.Is checks by kind.
var (
	ErrShape    = &CollectionError{Kind: KindShape}
	ErrKey      = &CollectionError{Kind: KindKey}
	ErrArgument = &CollectionError{Kind: KindArgument}
	ErrFunction = &CollectionError{Kind: KindFunction}
)

// NewShapeError reports the first element that is not a record.
func NewShapeError(op string, index int, element any) *CollectionError {
	return &CollectionError{
		Kind:    KindShape,
		Op:      op,
		Message: fmt.Sprintf("all items must be records, found %T at index %d: %v", element, index, element),
	}
}

// NewKeyNotFoundError creates an error for a mandatory key missing on a record
func NewKeyNotFoundError(op, key string, index int) *CollectionError {
	return &CollectionError{
		Kind:    KindKey,
		Op:      op,
		Key:     key,
		Message: fmt.Sprintf("key does not exist on record %d", index),
	}
}

// NewArgumentError creates an error for invalid verb inputs
func NewArgumentError(op, message string) *CollectionError {
	return &CollectionError{
		Kind:    KindArgument,
		Op:      op,
		Message: message,
	}
}

// NewValueError creates an argument error about the value held by a key
func NewValueError(op, key, message string) *CollectionError {
	return &CollectionError{
		Kind:    KindArgument,
		Op:      op,
		Key:     key,
		Message: message,
	}
}

// Wrap attaches a verb context to an error raised by a user function.
// Errors that already are CollectionErrors pass through unchanged.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var ce *CollectionError
	if stderrors.As(err, &ce) {
		return err
	}
	return &CollectionError{
		Kind:    KindFunction,
		Op:      op,
		Message: err.Error(),
		Cause:   err,
	}
}

// NewKeyError creates a key error without a record position
func NewKeyError(op, key, message string) *CollectionError {
	return &CollectionError{
		Kind:    KindKey,
		Op:      op,
		Key:     key,
		Message: message,
	}
}
