package model

import "fmt"

// ErrorCategory classifies a TransactionError by which stage of the
// merge-and-restart transaction produced it, matching the taxonomy in
// the error handling design: parse errors are fatal pre-commit, commit
// failures trigger snapshot restore, restart failures trigger rollback,
// and so on.
type ErrorCategory string

const (
	CategoryParse          ErrorCategory = "parse-error"
	CategoryGuardViolation ErrorCategory = "guard-violation"
	CategoryCommitFailure  ErrorCategory = "commit-failure"
	CategoryRestartFailure ErrorCategory = "restart-failure"
	CategoryDeadline       ErrorCategory = "deadline-exceeded"
	CategoryLockConflict   ErrorCategory = "lock-conflict"
	CategoryUnrecoverable  ErrorCategory = "unrecoverable"
	CategoryCycle          ErrorCategory = "dependency-cycle"
)

// TransactionError is the typed error surfaced across every confmerge
// component boundary. Callers dispatch on Category (with errors.As)
// rather than string-matching messages.
type TransactionError struct {
	Category ErrorCategory
	Package  string
	Section  string
	Message  string
	Cause    error
}

func (e *TransactionError) Error() string {
	loc := e.Package
	if e.Section != "" {
		loc = fmt.Sprintf("%s.%s", e.Package, e.Section)
	}
	if loc != "" {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %s (%s): %v", e.Category, loc, e.Message, e.Cause)
		}
		return fmt.Sprintf("%s: %s (%s)", e.Category, loc, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Category, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

// Unwrap allows errors.As/errors.Is to see through to the underlying
// cause, if any.
func (e *TransactionError) Unwrap() error {
	return e.Cause
}

// NewError constructs a TransactionError with no package/section context.
func NewError(category ErrorCategory, message string, cause error) *TransactionError {
	return &TransactionError{Category: category, Message: message, Cause: cause}
}

// NewPackageError constructs a TransactionError scoped to one package.
func NewPackageError(category ErrorCategory, pkg, message string, cause error) *TransactionError {
	return &TransactionError{Category: category, Package: pkg, Message: message, Cause: cause}
}

// ErrorCollection accumulates non-fatal TransactionErrors gathered while
// processing multiple packages (for instance, pre-validation parse
// failures across a source tree), mirroring the "abort with no changes"
// requirement for Parse errors: the collection is consulted before any
// commit proceeds.
type ErrorCollection struct {
	Errors []*TransactionError
}

// Add appends an error to the collection.
func (c *ErrorCollection) Add(err *TransactionError) {
	c.Errors = append(c.Errors, err)
}

// HasErrors reports whether any error has been recorded.
func (c *ErrorCollection) HasErrors() bool {
	return len(c.Errors) > 0
}

// Count returns the number of recorded errors.
func (c *ErrorCollection) Count() int {
	return len(c.Errors)
}

// Error implements the error interface, summarizing the collection.
func (c *ErrorCollection) Error() string {
	if len(c.Errors) == 0 {
		return "no errors"
	}
	if len(c.Errors) == 1 {
		return c.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors, first: %s", len(c.Errors), c.Errors[0].Error())
}
