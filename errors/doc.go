// Package errors provides structured error types for the typegraph module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries a field path, the name of the type involved, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseBuild, errors.KindOverflow).
//		Path("flags", "ready").
//		TypeName("u8").
//		Detail("bit 9 does not fit in 8 bits").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Frozen(errors.PhaseBuild, "node")
//	err := errors.OutOfBounds(errors.PhaseQuery, path, 10, 5)
//
// All errors implement the standard error interface and support errors.Is/As.
// Error.Is matches on Phase and Kind only, so a bare template works as a target:
//
//	if errors.Is(err, &typeerrors.Error{Phase: typeerrors.PhaseBuild, Kind: typeerrors.KindOverflow}) { ... }
package errors
