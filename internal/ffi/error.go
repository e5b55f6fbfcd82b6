package ffi

import (
	"fmt"

	"argbind/internal/diag"
)

// ErrorKind classifies decode failures. A kind is itself an error so callers
// can test with errors.Is(err, ffi.VersionMismatch).
type ErrorKind uint8

const (
	VersionMismatch ErrorKind = iota + 1
	UnsupportedFunctionType
	MalformedRecord
	MissingArgumentBufferLayout
	ArgumentBufferTargetNotFound
	ArgumentBufferIndexOutOfRange
	ArgumentBufferRoleMismatch
	// MalformedArgInfo is only returned in strict mode.
	MalformedArgInfo
)

func (k ErrorKind) String() string {
	switch k {
	case VersionMismatch:
		return "version mismatch"
	case UnsupportedFunctionType:
		return "unsupported function type"
	case MalformedRecord:
		return "malformed record"
	case MissingArgumentBufferLayout:
		return "missing argument buffer layout"
	case ArgumentBufferTargetNotFound:
		return "argument buffer target not found"
	case ArgumentBufferIndexOutOfRange:
		return "argument buffer index out of range"
	case ArgumentBufferRoleMismatch:
		return "argument buffer role mismatch"
	case MalformedArgInfo:
		return "malformed arg info"
	}
	return fmt.Sprintf("decode error kind %d", uint8(k))
}

func (k ErrorKind) Error() string { return k.String() }

// Code maps the kind to its diagnostic code.
func (k ErrorKind) Code() diag.Code {
	switch k {
	case VersionMismatch:
		return diag.DecVersionMismatch
	case UnsupportedFunctionType:
		return diag.DecUnsupportedFunctionType
	case MalformedRecord:
		return diag.DecMalformedRecord
	case MissingArgumentBufferLayout:
		return diag.DecMissingArgumentBufferLayout
	case ArgumentBufferTargetNotFound:
		return diag.DecArgumentBufferTargetNotFound
	case ArgumentBufferIndexOutOfRange:
		return diag.DecArgumentBufferIndexRange
	case ArgumentBufferRoleMismatch:
		return diag.DecArgumentBufferRoleMismatch
	case MalformedArgInfo:
		return diag.DecMalformedArgInfo
	}
	return diag.UnknownCode
}

// DecodeError describes why a metadata document was rejected.
type DecodeError struct {
	Kind   ErrorKind
	Source string
	Line   int    // 1-based record line, 0 when not tied to a line
	Name   string // function name, if known
	Index  int    // argument index, -1 when not applicable
	Field  int    // 0-based field, -1 when not applicable
	Value  string // offending field text
	Err    error
}

func (e *DecodeError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Message()
	if pos := e.Pos(); pos.Line > 0 || pos.Source != "" {
		return pos.String() + ": " + msg
	}
	return msg
}

// Message is the error text without the position prefix.
func (e *DecodeError) Message() string {
	var msg string
	switch e.Kind {
	case VersionMismatch:
		msg = fmt.Sprintf("invalid function info version, expected %s, got %q", FormatVersion, e.Value)
	case UnsupportedFunctionType:
		msg = fmt.Sprintf("unsupported function type: %s", e.Value)
	case MalformedRecord:
		switch {
		case e.Field >= 0 && e.Err != nil:
			msg = fmt.Sprintf("invalid function info entry: field %d (%q): %v", e.Field, e.Value, e.Err)
		case e.Err != nil:
			msg = fmt.Sprintf("invalid function info entry: %v", e.Err)
		default:
			msg = fmt.Sprintf("invalid function info entry: %s", e.Value)
		}
	case MissingArgumentBufferLayout:
		msg = fmt.Sprintf("missing argument buffer info for argument #%d in function %s", e.Index, e.Name)
	case ArgumentBufferTargetNotFound:
		msg = fmt.Sprintf("didn't find function %s for argument buffer", e.Name)
	case ArgumentBufferIndexOutOfRange:
		msg = fmt.Sprintf("argument index %d is out-of-bounds for function %s with %s args", e.Index, e.Name, e.Value)
	case ArgumentBufferRoleMismatch:
		msg = fmt.Sprintf("argument index %d in function %s is not an argument buffer", e.Index, e.Name)
	case MalformedArgInfo:
		msg = fmt.Sprintf("invalid arg info for argument #%d in function %s: %s", e.Index, e.Name, e.Value)
	default:
		msg = e.Kind.String()
	}
	return msg
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is matches the error's kind.
func (e *DecodeError) Is(target error) bool {
	k, ok := target.(ErrorKind)
	return ok && e != nil && e.Kind == k
}

// Code returns the diagnostic code of the error kind.
func (e *DecodeError) Code() diag.Code { return e.Kind.Code() }

// Pos locates the error for diagnostics.
func (e *DecodeError) Pos() diag.Pos {
	p := diag.Pos{Source: e.Source, Line: e.Line}
	if e.Field > 0 {
		p.Field = e.Field
	}
	return p
}
