// Package errors provides the structured error type for dynbridge conversions.
//
// Errors are categorized by Kind (custom, type_mismatch, depth_exceeded,
// syntax, unsupported) and Phase (produce, consume, parse, format). A
// TypeMismatch carries what the visitor expected and what the dynamic value
// actually was; every error carries the breadcrumb path accumulated while
// the conversion recursed into fields, elements and keys.
//
//	[consume] type_mismatch at /items/2/qty: expected uint8, found number 300 - out of range
//
// Use the Builder for structured construction:
//
//	err := errors.New(errors.KindTypeMismatch).
//		Phase(errors.PhaseConsume).
//		Expected("struct Point").
//		Found("array of 2").
//		Build()
//
// Or the convenience constructors for common patterns:
//
//	err := errors.TypeMismatch("string", "number 1")
//	err := errors.Custom("port %d is reserved", p)
//
// All errors implement the standard error interface and support errors.Is/As;
// errors.Is matches on Kind via the Err* sentinels.
package errors
