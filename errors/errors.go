package errors

import (
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseParse     Phase = "parse"     // class bytes to model
	PhaseEncode    Phase = "encode"    // model to class bytes
	PhaseTransform Phase = "transform" // access widening
	PhaseRules     Phase = "rules"     // rule file loading
	PhaseArchive   Phase = "archive"   // archive pass
	PhaseExecute   Phase = "execute"   // async execution
	PhaseConfig    Phase = "config"    // CLI configuration
)

// Kind categorizes the error
type Kind string

const (
	KindMalformedClass   Kind = "malformed_class"
	KindRuleConflict     Kind = "rule_conflict"
	KindExecutorRejected Kind = "executor_rejected"
	KindComputation      Kind = "computation"
	KindInvalidInput     Kind = "invalid_input"
	KindOutOfBounds      Kind = "out_of_bounds"
	KindIO               Kind = "io"
)

// Sentinels for errors.Is matching by kind alone.
var (
	ErrMalformedClass   = &Error{Kind: KindMalformedClass}
	ErrRuleConflict     = &Error{Kind: KindRuleConflict}
	ErrExecutorRejected = &Error{Kind: KindExecutorRejected}
	ErrComputation      = &Error{Kind: KindComputation}
	ErrInvalidInput     = &Error{Kind: KindInvalidInput}
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
	// Offset is the byte position for codec errors, -1 when unknown.
	Offset int
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Offset > 0 {
		b.WriteString(" (offset ")
		b.WriteString(strconv.Itoa(e.Offset))
		b.WriteByte(')')
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. A target without a phase
// matches on kind only.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase != "" && t.Phase != e.Phase {
		return false
	}
	return e.Kind == t.Kind
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the path (entry name, class, member)
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Offset sets the byte offset
func (b *Builder) Offset(off int) *Builder {
	b.err.Offset = off
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// MalformedClass creates a class parse error at the given byte offset
func MalformedClass(offset int, cause error) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindMalformedClass,
		Offset: offset,
		Cause:  cause,
	}
}

// RuleConflict creates a rule conflict error
func RuleConflict(detail string) *Error {
	return &Error{
		Phase:  PhaseRules,
		Kind:   KindRuleConflict,
		Detail: detail,
	}
}

// InvalidRule creates a rule syntax error at file:line
func InvalidRule(file string, line int, detail string) *Error {
	return &Error{
		Phase:  PhaseRules,
		Kind:   KindInvalidInput,
		Path:   []string{file + ":" + strconv.Itoa(line)},
		Detail: detail,
	}
}

// ExecutorRejected creates an executor rejection error
func ExecutorRejected(cause error) *Error {
	return &Error{
		Phase:  PhaseExecute,
		Kind:   KindExecutorRejected,
		Detail: "executor refused task",
		Cause:  cause,
	}
}

// Computation wraps a failure raised by an async or memoized computation
func Computation(cause error) *Error {
	return &Error{
		Phase: PhaseExecute,
		Kind:  KindComputation,
		Cause: cause,
	}
}

// Panicked converts a recovered panic value into a computation error
func Panicked(v any) *Error {
	var cause error
	if err, ok := v.(error); ok {
		cause = err
	} else {
		cause = fmt.Errorf("%v", v)
	}
	return &Error{
		Phase:  PhaseExecute,
		Kind:   KindComputation,
		Detail: "panic",
		Value:  v,
		Cause:  cause,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// WithPath returns err with path prepended when err is an *Error, or wraps
// it into one of the given phase and kind otherwise.
func WithPath(phase Phase, kind Kind, err error, path ...string) *Error {
	var e *Error
	if stderrors.As(err, &e) {
		cp := *e
		cp.Path = append(append([]string{}, path...), e.Path...)
		return &cp
	}
	return &Error{
		Phase: phase,
		Kind:  kind,
		Path:  path,
		Cause: err,
	}
}
