// Package errors provides structured error types for the class-widener library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the entry or member path, the byte offset for codec
// failures, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseParse, errors.KindMalformedClass).
//		Path("com/x/Foo.class").
//		Offset(118).
//		Detail("constant pool tag %d", tag).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.MalformedClass(offset, cause)
//	err := errors.ExecutorRejected(cause)
//
// Sentinels carry only a Kind and match any phase:
//
//	if errors.Is(err, errors.ErrMalformedClass) { ... }
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
