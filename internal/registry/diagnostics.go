package registry

import "github.com/hashicorp/go-multierror"

// Result threads the three error classes from §7 through the resolution
// pipeline: a clean value, a value produced alongside non-fatal
// diagnostics, or a fatal failure that aborts the operation outright.
//
// Callers choose how strict to be: Strict returns the first fatal error or,
// failing that, the first accumulated diagnostic, for commands that treat
// any non-fatal as blocking (e.g. `registry check`); Value ignores
// diagnostics entirely for commands that only care about warnings.
type Result[T any] struct {
	value       T
	diagnostics *multierror.Error
	fatal       error
}

// Ok wraps a clean value with no diagnostics.
func Ok[T any](v T) Result[T] { return Result[T]{value: v} }

// OkWithDiagnostics wraps a value produced alongside non-fatal diagnostics.
func OkWithDiagnostics[T any](v T, diags *multierror.Error) Result[T] {
	return Result[T]{value: v, diagnostics: diags}
}

// Fatal wraps a fatal error; no value is available.
func Fatal[T any](err error) Result[T] {
	return Result[T]{fatal: err}
}

// IsFatal reports whether this Result carries a fatal error.
func (r Result[T]) IsFatal() bool { return r.fatal != nil }

// FatalErr returns the fatal error, or nil.
func (r Result[T]) FatalErr() error { return r.fatal }

// Diagnostics returns the accumulated non-fatal diagnostics, possibly nil
// or empty.
func (r Result[T]) Diagnostics() *multierror.Error { return r.diagnostics }

// Value returns the result's value, ignoring any diagnostics. Callers that
// only want "capture warnings, surface errors" behavior use this after
// checking IsFatal.
func (r Result[T]) Value() T { return r.value }

// Strict returns the value and the first error encountered, treating any
// non-fatal diagnostic as blocking. Commands like `registry check` that must
// fail on any problem use this.
func (r Result[T]) Strict() (T, error) {
	if r.fatal != nil {
		return r.value, r.fatal
	}
	if r.diagnostics.ErrorOrNil() != nil {
		return r.value, r.diagnostics.Errors[0]
	}
	return r.value, nil
}
