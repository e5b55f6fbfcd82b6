package bind

import (
	"fmt"

	"argbind/internal/diag"
)

// ErrorKind classifies bind failures; errors.Is(err, bind.ArgumentCountMismatch)
// matches any *Error of that kind.
type ErrorKind uint8

const (
	EntryIndexOutOfBounds ErrorKind = iota + 1
	ArgumentCountMismatch
	InvalidArgumentVariant
	// ArgumentKindMismatch is only returned with Options.CheckKinds.
	ArgumentKindMismatch
)

func (k ErrorKind) String() string {
	switch k {
	case EntryIndexOutOfBounds:
		return "entry index out of bounds"
	case ArgumentCountMismatch:
		return "argument count mismatch"
	case InvalidArgumentVariant:
		return "invalid argument variant"
	case ArgumentKindMismatch:
		return "argument kind mismatch"
	}
	return fmt.Sprintf("bind error kind %d", uint8(k))
}

func (k ErrorKind) Error() string { return k.String() }

func (k ErrorKind) Code() diag.Code {
	switch k {
	case EntryIndexOutOfBounds:
		return diag.BndEntryIndexOutOfBounds
	case ArgumentCountMismatch:
		return diag.BndArgumentCountMismatch
	case InvalidArgumentVariant:
		return diag.BndInvalidArgument
	case ArgumentKindMismatch:
		return diag.BndArgumentKindMismatch
	}
	return diag.UnknownCode
}

// Error is returned by Bind. Entry and Arg locate the failing step; Arg is
// -1 when the failure is not tied to a declared argument.
type Error struct {
	Kind  ErrorKind
	Entry int
	Name  string // entry name, if resolved
	Arg   int
	Want  string
	Got   string
	Err   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	where := fmt.Sprintf("entry #%d", e.Entry)
	if e.Name != "" {
		where = fmt.Sprintf("entry #%d (%s)", e.Entry, e.Name)
	}
	if e.Arg >= 0 {
		where += fmt.Sprintf(" argument #%d", e.Arg)
	}
	switch e.Kind {
	case EntryIndexOutOfBounds:
		return fmt.Sprintf("%s: shader/kernel entry out of bounds (%s entries)", where, e.Want)
	case ArgumentCountMismatch:
		return fmt.Sprintf("%s: argument count mismatch: want %s, got %s", where, e.Want, e.Got)
	case InvalidArgumentVariant:
		if e.Err != nil {
			return fmt.Sprintf("%s: invalid argument: %v", where, e.Err)
		}
		return fmt.Sprintf("%s: invalid argument %s", where, e.Got)
	case ArgumentKindMismatch:
		return fmt.Sprintf("%s: declared %s, got %s", where, e.Want, e.Got)
	}
	return where + ": " + e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	k, ok := target.(ErrorKind)
	return ok && e != nil && e.Kind == k
}

func (e *Error) Code() diag.Code { return e.Kind.Code() }
