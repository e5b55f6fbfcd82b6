package main

import (
	"fmt"
	"strings"

	"argbind/internal/diag"
	"argbind/internal/funcinfo"
)

// JSON form of a program. Enumerations use their printed names and zero
// values are omitted, so the output doubles as input for `argbind encode`.
type programJSON struct {
	Path      string         `json:"path,omitempty"`
	Cached    bool           `json:"cached,omitempty"`
	Functions []functionJSON `json:"functions"`
	// Diagnostics is ignored by encode.
	Diagnostics []diagnosticJSON `json:"diagnostics,omitempty"`
}

type functionJSON struct {
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	Flags     string    `json:"flags,omitempty"`
	LocalSize [3]uint32 `json:"local_size"`
	Args      []argJSON `json:"args,omitempty"`
}

type argJSON struct {
	Size         uint32        `json:"size"`
	AddressSpace string        `json:"address_space,omitempty"`
	Image        string        `json:"image,omitempty"`
	Access       string        `json:"access,omitempty"`
	Role         string        `json:"role,omitempty"`
	Nested       *functionJSON `json:"nested,omitempty"`
}

type diagnosticJSON struct {
	Severity string   `json:"severity"`
	Code     string   `json:"code"`
	Pos      string   `json:"pos,omitempty"`
	Message  string   `json:"message"`
	Notes    []string `json:"notes,omitempty"`
}

func toFunctionJSON(fn *funcinfo.FunctionInfo) functionJSON {
	out := functionJSON{
		Name:      fn.Name,
		Kind:      fn.Kind.String(),
		LocalSize: fn.LocalSize,
	}
	if fn.Flags != funcinfo.FlagNone {
		out.Flags = fn.Flags.String()
	}
	for i := range fn.Args {
		a := &fn.Args[i]
		aj := argJSON{Size: a.Size}
		if a.AddressSpace != funcinfo.AddressUnknown {
			aj.AddressSpace = a.AddressSpace.String()
		}
		if a.Image != funcinfo.ImageNone {
			aj.Image = a.Image.String()
		}
		if a.Access != funcinfo.AccessNone {
			aj.Access = a.Access.String()
		}
		if a.Role != funcinfo.RoleNone {
			aj.Role = a.Role.String()
		}
		if a.Nested != nil {
			nested := toFunctionJSON(a.Nested)
			aj.Nested = &nested
		}
		out.Args = append(out.Args, aj)
	}
	return out
}

func fromFunctionJSON(fj *functionJSON) (funcinfo.FunctionInfo, error) {
	kind, err := funcinfo.ParseFunctionKind(fj.Kind)
	if err != nil {
		return funcinfo.FunctionInfo{}, fmt.Errorf("%s: %w", fj.Name, err)
	}
	flags, err := funcinfo.ParseFunctionFlags(fj.Flags)
	if err != nil {
		return funcinfo.FunctionInfo{}, fmt.Errorf("%s: %w", fj.Name, err)
	}
	fn := funcinfo.FunctionInfo{
		Name:      fj.Name,
		Kind:      kind,
		Flags:     flags,
		LocalSize: funcinfo.LocalSize(fj.LocalSize),
	}
	for i := range fj.Args {
		arg, err := fromArgJSON(&fj.Args[i])
		if err != nil {
			return funcinfo.FunctionInfo{}, fmt.Errorf("%s: argument #%d: %w", fj.Name, i, err)
		}
		fn.Args = append(fn.Args, arg)
	}
	return fn, nil
}

func fromArgJSON(aj *argJSON) (funcinfo.ArgInfo, error) {
	arg := funcinfo.ArgInfo{Size: aj.Size}
	var err error
	if aj.AddressSpace != "" {
		if arg.AddressSpace, err = funcinfo.ParseAddressSpace(aj.AddressSpace); err != nil {
			return arg, err
		}
	}
	if aj.Image != "" {
		if arg.Image, err = funcinfo.ParseImageKind(aj.Image); err != nil {
			return arg, err
		}
	}
	if arg.Access, err = funcinfo.ParseImageAccess(aj.Access); err != nil {
		return arg, err
	}
	if aj.Role != "" {
		if arg.Role, err = funcinfo.ParseSpecialRole(aj.Role); err != nil {
			return arg, err
		}
	}
	if aj.Nested != nil {
		nested, err := fromFunctionJSON(aj.Nested)
		if err != nil {
			return arg, err
		}
		arg.Nested = &nested
	}
	return arg, nil
}

func toDiagnosticsJSON(diags []diag.Diagnostic) []diagnosticJSON {
	out := make([]diagnosticJSON, 0, len(diags))
	for _, d := range diags {
		dj := diagnosticJSON{
			Severity: strings.ToLower(d.Severity.String()),
			Code:     d.Code.ID(),
			Message:  d.Message,
		}
		if !d.Primary.IsZero() {
			dj.Pos = d.Primary.String()
		}
		for _, n := range d.Notes {
			dj.Notes = append(dj.Notes, n.Msg)
		}
		out = append(out, dj)
	}
	return out
}

// describeArg is the one-line form used by pretty output.
func describeArg(a *funcinfo.ArgInfo) string {
	var s string
	switch {
	case a.Role == funcinfo.RoleStageInput:
		s = "stage-input"
	case a.Role == funcinfo.RoleImageArray:
		s = fmt.Sprintf("image-array[%d] %s %s", a.Size, a.Image, a.Access)
		return s
	case a.IsImage():
		s = fmt.Sprintf("image %s %s", a.Image, a.Access)
	case a.Role == funcinfo.RoleArgumentBuffer:
		s = "argument-buffer " + a.AddressSpace.String()
		if a.Nested != nil {
			s += fmt.Sprintf(" {%d fields}", len(a.Nested.Args))
		}
	default:
		s = a.AddressSpace.String()
		if a.Role != funcinfo.RoleNone {
			s += " " + a.Role.String()
		}
	}
	return fmt.Sprintf("%s size=%d", s, a.Size)
}
