// Package collatzerr defines the typed error kinds the core surfaces,
// mirroring the teacher's ErrorType/typed-error pattern but scoped to
// this engine's four failure modes: precondition violations, budget
// exhaustion, divergence-cap trips, and cancellation.
package collatzerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies an Error the way SentraError.Type classifies a
// language error.
type Kind string

const (
	// Precondition marks a programming error: invalid x, an even n
	// where odd is required, a corrupt packed array. Fail fast.
	Precondition Kind = "Precondition"
	// BudgetExhausted marks max_steps reached without termination.
	BudgetExhausted Kind = "BudgetExhausted"
	// DivergenceCap marks the pair count exceeding MAX_PAIR_COUNT.
	DivergenceCap Kind = "DivergenceCap"
	// Cancelled marks a caller-requested cancellation. Not a failure;
	// callers receive the partial result alongside this kind only
	// when they ask an operation to report how it ended.
	Cancelled Kind = "Cancelled"
)

// Error is the core's single error type, carrying a Kind so callers
// can branch on failure mode without string matching.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the wrapped cause, if any, to errors.Is/As.
func (e *Error) Unwrap() error { return e.cause }

// NewPrecondition builds a Precondition error, optionally wrapping an
// underlying cause via github.com/pkg/errors so a stack trace is
// attached at the point of detection.
func NewPrecondition(message string, cause error) *Error {
	if cause != nil {
		cause = errors.WithStack(cause)
	}
	return &Error{Kind: Precondition, Message: message, cause: cause}
}

// NewBudgetExhausted builds a BudgetExhausted error.
func NewBudgetExhausted(message string) *Error {
	return &Error{Kind: BudgetExhausted, Message: message}
}

// NewDivergenceCap builds a DivergenceCap error.
func NewDivergenceCap(message string) *Error {
	return &Error{Kind: DivergenceCap, Message: message}
}

// NewCancelled builds a Cancelled marker error.
func NewCancelled(message string) *Error {
	return &Error{Kind: Cancelled, Message: message}
}

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
