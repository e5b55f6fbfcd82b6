package diag

import "fmt"

// Pos locates a finding inside line-oriented metadata.
// The zero value means "no position".
type Pos struct {
	Source string
	Line   int
	Field  int
}

// IsZero reports whether the position carries no information.
func (p Pos) IsZero() bool {
	return p.Source == "" && p.Line == 0 && p.Field == 0
}

func (p Pos) String() string {
	src := p.Source
	if src == "" {
		src = "<input>"
	}
	switch {
	case p.Line == 0:
		return src
	case p.Field == 0:
		return fmt.Sprintf("%s:%d", src, p.Line)
	default:
		return fmt.Sprintf("%s:%d:%d", src, p.Line, p.Field)
	}
}

type Note struct {
	Pos Pos
	Msg string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  Pos
	Notes    []Note
}

func New(sev Severity, code Code, primary Pos, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
	}
}

func NewError(code Code, primary Pos, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

func (d Diagnostic) WithNote(p Pos, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Pos: p, Msg: msg})
	return d
}
