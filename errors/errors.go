package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseBuild  Phase = "build"  // repository construction
	PhaseQuery  Phase = "query"  // lookups against a repository
	PhaseImport Phase = "import" // upstream type conversion
	PhaseLoad   Phase = "load"   // reading inputs
	PhaseDiff   Phase = "diff"   // repository comparison
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidInput     Kind = "invalid_input"
	KindOutOfBounds      Kind = "out_of_bounds"
	KindOverflow         Kind = "overflow"
	KindNotFound         Kind = "not_found"
	KindFrozen           Kind = "frozen"
	KindForeignReference Kind = "foreign_reference"
	KindIncomplete       Kind = "incomplete"
	KindAlreadyDefined   Kind = "already_defined"
	KindKindMismatch     Kind = "kind_mismatch"
	KindUnsupported      Kind = "unsupported"
	KindInvalidData      Kind = "invalid_data"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value    any
	Cause    error
	Phase    Phase
	Kind     Kind
	TypeName string
	Detail   string
	Path     []string
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

	if e.TypeName != "" {
		b.WriteString(": type ")
		b.WriteString(e.TypeName)
	}

	if e.Detail != "" {
		if e.TypeName != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
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

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
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

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// TypeName sets the name of the type involved
func (b *Builder) TypeName(name string) *Builder {
	b.err.TypeName = name
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

// Overflow creates an overflow error for a value that does not fit its storage
func Overflow(phase Phase, typeName string, value any, limit any) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindOverflow,
		TypeName: typeName,
		Detail:   fmt.Sprintf("value %v exceeds %v", value, limit),
		Value:    value,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Frozen creates an error for a mutation attempted after publication
func Frozen(phase Phase, typeName string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindFrozen,
		TypeName: typeName,
		Detail:   "repository is frozen",
	}
}

// ForeignReference creates an error for a reference that does not belong to the repository
func ForeignReference(phase Phase, path []string, typeName string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindForeignReference,
		Path:     path,
		TypeName: typeName,
		Detail:   "referenced type is not owned by this repository",
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
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

// Load creates an input loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}

// ParseFailed creates a parsing error
func ParseFailed(what string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: fmt.Sprintf("parse %s", what),
		Cause:  cause,
	}
}

// IncompleteError is returned when a repository is frozen while some
// declared user-defined types still have no field list.
type IncompleteError struct {
	Names []string
}

// NewIncompleteError creates an error listing the incomplete declarations
func NewIncompleteError(names []string) *IncompleteError {
	return &IncompleteError{Names: names}
}

func (e *IncompleteError) Error() string {
	if len(e.Names) == 0 {
		return "[build] incomplete: no declarations specified"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%d declared type(s) never completed:", len(e.Names)))

	// Anonymous declarations collapse into one counted line.
	anonymous := 0
	for _, name := range e.Names {
		if name == "" {
			anonymous++
			continue
		}
		b.WriteString("\n  - ")
		b.WriteString(name)
	}
	if anonymous > 0 {
		b.WriteString(fmt.Sprintf("\n  - <%d anonymous>", anonymous))
	}

	return b.String()
}

// Is reports whether target matches this error type
func (e *IncompleteError) Is(target error) bool {
	if _, ok := target.(*IncompleteError); ok {
		return true
	}
	if t, ok := target.(*Error); ok {
		return t.Phase == PhaseBuild && t.Kind == KindIncomplete
	}
	return false
}
