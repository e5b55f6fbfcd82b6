package funcinfo

import (
	"errors"
	"fmt"
)

// LocalSize is the required work-group size of an entry.
type LocalSize [3]uint32

// IsZero reports whether the local size is unspecified.
func (s LocalSize) IsZero() bool {
	return s[0] == 0 && s[1] == 0 && s[2] == 0
}

// IsComplete reports whether every component is set.
// A partially set size is treated as unspecified by dispatchers.
func (s LocalSize) IsComplete() bool {
	return s[0] != 0 && s[1] != 0 && s[2] != 0
}

func (s LocalSize) String() string {
	return fmt.Sprintf("%dx%dx%d", s[0], s[1], s[2])
}

// FunctionInfo describes one compiled entry point and its argument layout.
type FunctionInfo struct {
	Name      string
	LocalSize LocalSize
	Kind      FunctionKind
	Flags     FunctionFlags
	Args      []ArgInfo
}

// ArgInfo describes one formal parameter, or the element of an image array.
type ArgInfo struct {
	// Size is the byte size of the argument, or the extent of an image array.
	Size         uint32
	AddressSpace AddressSpace
	Image        ImageKind
	Access       ImageAccess
	Role         SpecialRole
	// Nested is the argument buffer struct layout; set only for RoleArgumentBuffer.
	Nested *FunctionInfo
}

// IsImage reports whether the argument is bound through texture slots.
func (a *ArgInfo) IsImage() bool {
	return a.Image != ImageNone
}

// IsStageInput reports whether the argument is fed by the pipeline.
func (a *ArgInfo) IsStageInput() bool {
	return a.Role == RoleStageInput
}

// TextureSlotsPerElement is 2 for read-write images (one read view, one write view).
func (a *ArgInfo) TextureSlotsPerElement() uint32 {
	if a.Access == AccessReadWrite {
		return 2
	}
	return 1
}

// ImplicitArgCount is the number of runtime-synthesized trailing arguments.
func (f *FunctionInfo) ImplicitArgCount() int {
	if f.Flags.Has(FlagUsesSoftPrintf) {
		return 1
	}
	return 0
}

// BindableArgCount counts declared arguments the caller has to supply.
func (f *FunctionInfo) BindableArgCount() int {
	n := 0
	for i := range f.Args {
		if !f.Args[i].IsStageInput() {
			n++
		}
	}
	return n
}

// Clone returns a deep copy, nested layouts included.
func (f *FunctionInfo) Clone() *FunctionInfo {
	if f == nil {
		return nil
	}
	out := *f
	if f.Args != nil {
		out.Args = make([]ArgInfo, len(f.Args))
		for i, a := range f.Args {
			a.Nested = a.Nested.Clone()
			out.Args[i] = a
		}
	}
	return &out
}

var (
	// ErrUnsupportedKind is wrapped by Validate for geometry/tessellation and unknown kinds.
	ErrUnsupportedKind = errors.New("unsupported function kind")
	// ErrStructLocalSize is wrapped by Validate when an argument buffer struct has a local size.
	ErrStructLocalSize = errors.New("argument buffer struct must not have a local size")
	// ErrMissingNested is wrapped by Validate when an argument buffer has no layout.
	ErrMissingNested = errors.New("missing argument buffer layout")
	// ErrUnexpectedNested is wrapped by Validate when a non argument buffer carries a layout.
	ErrUnexpectedNested = errors.New("nested layout on non argument buffer")
)

// Validate checks the structural invariants of a function and its nested layouts.
func (f *FunctionInfo) Validate() error {
	if !f.Kind.Supported() {
		return fmt.Errorf("%s: %w: %s", f.Name, ErrUnsupportedKind, f.Kind)
	}
	if f.Kind == KindArgumentBufferStruct && !f.LocalSize.IsZero() {
		return fmt.Errorf("%s: %w (got %s)", f.Name, ErrStructLocalSize, f.LocalSize)
	}
	for i := range f.Args {
		arg := &f.Args[i]
		switch {
		case arg.Role == RoleArgumentBuffer && arg.Nested == nil:
			return fmt.Errorf("%s: argument #%d: %w", f.Name, i, ErrMissingNested)
		case arg.Role != RoleArgumentBuffer && arg.Nested != nil:
			return fmt.Errorf("%s: argument #%d: %w", f.Name, i, ErrUnexpectedNested)
		}
		if arg.Nested != nil {
			if arg.Nested.Kind != KindArgumentBufferStruct {
				return fmt.Errorf("%s: argument #%d: nested layout has kind %s", f.Name, i, arg.Nested.Kind)
			}
			if err := arg.Nested.Validate(); err != nil {
				return fmt.Errorf("%s: argument #%d: %w", f.Name, i, err)
			}
		}
	}
	return nil
}

// Program is the function table of one compiled program.
type Program struct {
	Functions []FunctionInfo
}

// Lookup returns the first function with the given name.
func (p *Program) Lookup(name string) (*FunctionInfo, bool) {
	if p == nil {
		return nil, false
	}
	for i := range p.Functions {
		if p.Functions[i].Name == name {
			return &p.Functions[i], true
		}
	}
	return nil, false
}

// Entries resolves a pipeline's entry list. An empty name yields a nil hole.
func (p *Program) Entries(names ...string) ([]*FunctionInfo, error) {
	out := make([]*FunctionInfo, len(names))
	for i, name := range names {
		if name == "" {
			continue
		}
		fn, ok := p.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("no function named %q in program", name)
		}
		if fn.Kind == KindArgumentBufferStruct {
			return nil, fmt.Errorf("%q is an argument buffer struct, not an entry point", name)
		}
		out[i] = fn
	}
	return out, nil
}

// Validate validates every function of the program.
func (p *Program) Validate() error {
	for i := range p.Functions {
		if err := p.Functions[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}
