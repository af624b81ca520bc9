package algebra

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/eqgen/internal/symbol"
)

// ValidationError reports a tree that cannot be built.
//
// Validation errors include:
//   - Shape mismatch: contraction operands with incompatible dimensions
//   - Cardinality: reductions or domains with zero indices, batch count mismatch
//   - Usage: an operand of the wrong kind for the requested operation
//   - Not implemented: contraction shapes outside the supported cases
type ValidationError struct {
	// Code identifies the error category.
	Code ValidationErrorCode

	// Message is a human-readable description naming the offending shapes.
	Message string

	// Details contains additional context.
	Details map[string]string
}

// ValidationErrorCode categorizes validation errors.
type ValidationErrorCode string

const (
	// ErrCodeShapeMismatch indicates operands whose dimensions cannot be paired.
	ErrCodeShapeMismatch ValidationErrorCode = "SHAPE_MISMATCH"

	// ErrCodeCardinality indicates a wrong number of indices.
	ErrCodeCardinality ValidationErrorCode = "CARDINALITY"

	// ErrCodeUsage indicates an operand of the wrong kind.
	ErrCodeUsage ValidationErrorCode = "USAGE"

	// ErrCodeNotImplemented indicates an unsupported contraction shape.
	ErrCodeNotImplemented ValidationErrorCode = "NOT_IMPLEMENTED"
)

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// DomainError reports an operand that does not resolve to a usable index list.
type DomainError struct {
	Message string
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	return "domain: " + e.Message
}

// IsValidationError reports whether err is a ValidationError with the given
// code. An empty code matches any ValidationError.
func IsValidationError(err error, code ValidationErrorCode) bool {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return code == "" || ve.Code == code
	}
	return false
}

// IsDomainError reports whether err is a DomainError.
func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

func newValidationError(code ValidationErrorCode, format string, args ...any) *ValidationError {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// newShapeError records both operand shapes so messages name what clashed.
func newShapeError(msg string, left, right []symbol.Index) *ValidationError {
	return &ValidationError{
		Code:    ErrCodeShapeMismatch,
		Message: fmt.Sprintf("%s: left %s, right %s", msg, shape(left), shape(right)),
		Details: map[string]string{
			"left":  shape(left),
			"right": shape(right),
		},
	}
}

func shape(list []symbol.Index) string {
	return "(" + strings.Join(symbol.Names(list), ",") + ")"
}
