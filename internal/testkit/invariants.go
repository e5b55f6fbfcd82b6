// Package testkit holds invariant checkers shared by tests and fuzz targets.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"argbind/internal/bind"
	"argbind/internal/funcinfo"
)

// CheckProgram verifies structural invariants of a decoded program:
//  1. no argument buffer struct appears as a top-level function
//  2. every argument buffer argument of an entry carries a struct layout
//  3. no other argument carries one
//  4. struct layouts are argument buffer structs themselves
func CheckProgram(fns []funcinfo.FunctionInfo) error {
	for i := range fns {
		fn := &fns[i]
		if fn.Kind == funcinfo.KindArgumentBufferStruct {
			return fmt.Errorf("function #%d (%s): argument buffer struct at top level", i, fn.Name)
		}
		if err := checkFunction(fn, 0); err != nil {
			return fmt.Errorf("function #%d (%s): %w", i, fn.Name, err)
		}
	}
	return nil
}

func checkFunction(fn *funcinfo.FunctionInfo, depth int) error {
	if depth > 0 && fn.Kind != funcinfo.KindArgumentBufferStruct {
		return fmt.Errorf("nested layout has kind %s", fn.Kind)
	}
	if _, err := safecast.Conv[uint32](len(fn.Args)); err != nil {
		return fmt.Errorf("arg count overflow: %w", err)
	}
	for j := range fn.Args {
		arg := &fn.Args[j]
		switch {
		case depth == 0 && arg.Role == funcinfo.RoleArgumentBuffer && arg.Nested == nil:
			return fmt.Errorf("arg #%d: argument buffer without layout", j)
		case arg.Role != funcinfo.RoleArgumentBuffer && arg.Nested != nil:
			return fmt.Errorf("arg #%d: layout on a %s argument", j, arg.Role)
		case arg.Nested != nil:
			if err := checkFunction(arg.Nested, depth+1); err != nil {
				return fmt.Errorf("arg #%d: %w", j, err)
			}
		}
	}
	return nil
}

// CheckPlan verifies slot invariants of a binding plan:
//  1. instructions are ordered by entry, and within an entry declared
//     arguments come before implicit ones
//  2. buffer and texture slots of an entry start at 0 and are contiguous
//  3. Count matches the resources carried (values count as one)
//  4. only images are doubled
func CheckPlan(plan []bind.Instruction) error {
	var (
		entry        = -1
		bufferSlot   uint32
		textureSlot  uint32
		seenImplicit bool
	)
	for i := range plan {
		in := &plan[i]
		if in.Entry < entry {
			return fmt.Errorf("instruction %d: entry %d after entry %d", i, in.Entry, entry)
		}
		if in.Entry != entry {
			entry = in.Entry
			bufferSlot, textureSlot = 0, 0
			seenImplicit = false
		}
		if seenImplicit && !in.Implicit {
			return fmt.Errorf("instruction %d: declared argument after implicit one", i)
		}
		seenImplicit = seenImplicit || in.Implicit

		if in.Kind == bind.KindValue {
			if in.Count != 1 || len(in.Resources) != 0 {
				return fmt.Errorf("instruction %d: value with count %d and %d resources", i, in.Count, len(in.Resources))
			}
		} else {
			n, err := safecast.Conv[uint32](len(in.Resources))
			if err != nil {
				return fmt.Errorf("instruction %d: %w", i, err)
			}
			if n != in.Count {
				return fmt.Errorf("instruction %d: count %d, %d resources", i, in.Count, n)
			}
		}

		if in.Kind.IsImage() {
			if in.TextureSlot != textureSlot {
				return fmt.Errorf("instruction %d: texture slot %d, want %d", i, in.TextureSlot, textureSlot)
			}
			textureSlot += in.Span()
			continue
		}
		if in.Doubled {
			return fmt.Errorf("instruction %d: doubled %s", i, in.Kind)
		}
		if in.BufferSlot != bufferSlot {
			return fmt.Errorf("instruction %d: buffer slot %d, want %d", i, in.BufferSlot, bufferSlot)
		}
		bufferSlot += in.Count
	}
	return nil
}
