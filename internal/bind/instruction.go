package bind

import (
	"fmt"
	"strings"

	"argbind/internal/funcinfo"
)

// Instruction is one resolved argument, ready for a native bind call.
type Instruction struct {
	Kind Kind
	// Entry is the index into the entries passed to Bind.
	Entry int
	Stage funcinfo.FunctionKind
	// Arg is the declared argument index; implicit arguments continue after
	// the declared ones.
	Arg      int
	Implicit bool
	// BufferSlot is set for buffer-like kinds, TextureSlot for images.
	BufferSlot  uint32
	TextureSlot uint32
	// Count is the number of elements; a doubled image array occupies
	// 2*Count texture slots starting at TextureSlot.
	Count   uint32
	Doubled bool
	// Data holds the bytes of a value argument.
	Data      []byte
	Resources []Resource
}

// Slot is the first native slot used by the instruction.
func (in *Instruction) Slot() uint32 {
	if in.Kind.IsImage() {
		return in.TextureSlot
	}
	return in.BufferSlot
}

// Span is the number of native slots reserved by the instruction.
func (in *Instruction) Span() uint32 {
	if in.Doubled {
		return 2 * in.Count
	}
	return in.Count
}

func (in *Instruction) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "entry %d arg %d: %s ", in.Entry, in.Arg, in.Kind)
	if in.Kind.IsImage() {
		sb.WriteString("texture")
	} else {
		sb.WriteString("buffer")
	}
	if span := in.Span(); span > 1 {
		fmt.Fprintf(&sb, " [%d..%d]", in.Slot(), in.Slot()+span-1)
	} else {
		fmt.Fprintf(&sb, " %d", in.Slot())
	}
	if in.Doubled {
		sb.WriteString(" rw")
	}
	if in.Implicit {
		sb.WriteString(" implicit")
	}
	return sb.String()
}
