package bind

import (
	"context"
	"fmt"
	"strconv"

	"fortio.org/safecast"

	"argbind/internal/funcinfo"
	"argbind/internal/trace"
)

// Options tune a binding pass.
type Options struct {
	// CheckKinds rejects arguments whose variant does not fit the declared
	// parameter (an image for a buffer parameter and vice versa).
	CheckKinds bool
}

// cursor is the position of one binding pass. It is owned by a single Bind
// call and never shared.
type cursor struct {
	arg           int  // declared argument of the current entry
	implicitPhase bool // past the declared arguments, feeding implicit ones
	implicit      int  // implicit arguments consumed by the current entry
	bufferSlot    uint32
	textureSlot   uint32
	entry         int
}

// nextEntry moves to the following entry. Slot numbering restarts.
func (c *cursor) nextEntry() {
	c.entry++
	c.arg = 0
	c.implicitPhase = false
	c.implicit = 0
	c.bufferSlot = 0
	c.textureSlot = 0
}

// resolve returns the entry the next caller argument belongs to, skipping
// nil holes, stage inputs and exhausted entries.
func (c *cursor) resolve(entries []*funcinfo.FunctionInfo) (*funcinfo.FunctionInfo, bool) {
	for {
		for c.entry < len(entries) && entries[c.entry] == nil {
			c.entry++
		}
		if c.entry >= len(entries) {
			return nil, false
		}
		fn := entries[c.entry]
		for c.arg < len(fn.Args) && fn.Args[c.arg].IsStageInput() {
			c.arg++
		}
		if c.arg >= len(fn.Args) {
			if c.arg >= len(fn.Args)+fn.ImplicitArgCount() {
				c.nextEntry()
				continue
			}
			c.implicitPhase = true
		}
		return fn, true
	}
}

// advance moves past the argument resolved into in.
func (c *cursor) advance(in *Instruction) {
	if in.Kind.IsImage() {
		c.textureSlot += in.Span()
	} else {
		c.bufferSlot += in.Count
	}
	if c.implicitPhase {
		c.implicit++
	}
	c.arg++
}

// pending finds the first argument, declared or implicit, that no caller
// argument was supplied for.
func (c *cursor) pending(entries []*funcinfo.FunctionInfo) (entry, arg int, implicit, ok bool) {
	for e := c.entry; e < len(entries); e++ {
		fn := entries[e]
		if fn == nil {
			continue
		}
		pos := 0
		if e == c.entry {
			pos = c.arg
		}
		for pos < len(fn.Args) && fn.Args[pos].IsStageInput() {
			pos++
		}
		if pos < len(fn.Args) {
			return e, pos, false, true
		}
		if pos < len(fn.Args)+fn.ImplicitArgCount() {
			return e, pos, true, true
		}
	}
	return 0, 0, false, false
}

// Bind resolves explicit and implicit arguments against entries.
//
// On failure the instructions resolved before the failing argument are
// returned together with the error; callers must not apply them.
func Bind(entries []*funcinfo.FunctionInfo, explicit, implicit []Argument) ([]Instruction, error) {
	return BindWithOptions(context.Background(), entries, explicit, implicit, Options{})
}

// BindArgumentBuffer resolves the contents of an argument buffer against its
// struct layout. Slots are indices inside the argument buffer.
func BindArgumentBuffer(layout *funcinfo.FunctionInfo, args []Argument) ([]Instruction, error) {
	return Bind([]*funcinfo.FunctionInfo{layout}, args, nil)
}

// BindWithOptions is Bind with tracing from ctx and extra checks.
func BindWithOptions(ctx context.Context, entries []*funcinfo.FunctionInfo, explicit, implicit []Argument, opts Options) ([]Instruction, error) {
	ctx, span := trace.Start(ctx, trace.ScopeProgram, "bind")
	b := binder{
		entries:  entries,
		explicit: explicit,
		implicit: implicit,
		opts:     opts,
		tracer:   trace.FromContext(ctx),
		parent:   span.ID(),
	}
	plan, err := b.run()
	span.WithExtra("instructions", strconv.Itoa(len(plan)))
	if err != nil {
		span.WithExtra("error", err.Error()).End("failed")
		return plan, err
	}
	span.End("")
	return plan, nil
}

type binder struct {
	entries  []*funcinfo.FunctionInfo
	explicit []Argument
	implicit []Argument
	opts     Options
	tracer   trace.Tracer
	parent   uint64
}

func (b *binder) run() ([]Instruction, error) {
	total := len(b.explicit) + len(b.implicit)
	plan := make([]Instruction, 0, total)
	var (
		c         cursor
		nextExpl  int
		nextImpl  int
		lastEntry = -1
	)
	for step := 0; step < total; step++ {
		fn, ok := c.resolve(b.entries)
		if !ok {
			return plan, &Error{
				Kind:  EntryIndexOutOfBounds,
				Entry: c.entry,
				Arg:   -1,
				Want:  strconv.Itoa(len(b.entries)),
			}
		}
		if c.entry != lastEntry {
			lastEntry = c.entry
			trace.Point(b.tracer, trace.ScopeEntry, b.parent, "entry:"+fn.Name, fn.Kind.String(), nil)
		}

		var arg Argument
		if c.implicitPhase {
			if nextImpl >= len(b.implicit) {
				return plan, b.countMismatch(&c, fn, true)
			}
			arg = b.implicit[nextImpl]
			nextImpl++
		} else {
			if nextExpl >= len(b.explicit) {
				return plan, b.countMismatch(&c, fn, false)
			}
			arg = b.explicit[nextExpl]
			nextExpl++
		}

		in, err := b.resolveArg(&c, fn, arg)
		if err != nil {
			return plan, err
		}
		plan = append(plan, in)
		trace.Point(b.tracer, trace.ScopeArg, b.parent, "arg", in.String(), nil)
		c.advance(&in)
	}

	if e, a, implicit, ok := c.pending(b.entries); ok {
		fn := b.entries[e]
		want, got := b.expected(implicit)
		return plan, &Error{
			Kind:  ArgumentCountMismatch,
			Entry: e,
			Name:  fn.Name,
			Arg:   a,
			Want:  want,
			Got:   got,
		}
	}
	return plan, nil
}

func (b *binder) countMismatch(c *cursor, fn *funcinfo.FunctionInfo, implicit bool) *Error {
	want, got := b.expected(implicit)
	return &Error{
		Kind:  ArgumentCountMismatch,
		Entry: c.entry,
		Name:  fn.Name,
		Arg:   c.arg,
		Want:  want,
		Got:   got,
	}
}

// expected describes how many explicit or implicit arguments the entries
// take against how many were supplied.
func (b *binder) expected(implicit bool) (want, got string) {
	var n int
	for _, fn := range b.entries {
		if fn == nil {
			continue
		}
		if implicit {
			n += fn.ImplicitArgCount()
		} else {
			n += fn.BindableArgCount()
		}
	}
	if implicit {
		return fmt.Sprintf("%d implicit", n), strconv.Itoa(len(b.implicit))
	}
	return fmt.Sprintf("%d explicit", n), strconv.Itoa(len(b.explicit))
}

func (b *binder) resolveArg(c *cursor, fn *funcinfo.FunctionInfo, arg Argument) (Instruction, error) {
	in := Instruction{
		Kind:     arg.Kind(),
		Entry:    c.entry,
		Stage:    fn.Kind,
		Arg:      c.arg,
		Implicit: c.implicitPhase,
	}
	invalid := func(want string, err error) (Instruction, error) {
		return Instruction{}, &Error{
			Kind:  InvalidArgumentVariant,
			Entry: c.entry,
			Name:  fn.Name,
			Arg:   c.arg,
			Want:  want,
			Got:   arg.String(),
			Err:   err,
		}
	}

	res, err := arg.resources()
	if err != nil {
		return invalid("", err)
	}
	if c.implicitPhase && !arg.Kind().IsBufferLike() {
		return invalid("buffer", fmt.Errorf("implicit arguments must be buffers, got %s", arg))
	}
	count, err := safecast.Conv[uint32](arg.Len())
	if err != nil {
		return invalid("", err)
	}

	var decl *funcinfo.ArgInfo
	if !c.implicitPhase {
		decl = &fn.Args[c.arg]
		if b.opts.CheckKinds {
			if want, ok := fits(decl, arg); !ok {
				return Instruction{}, &Error{
					Kind:  ArgumentKindMismatch,
					Entry: c.entry,
					Name:  fn.Name,
					Arg:   c.arg,
					Want:  want,
					Got:   arg.String(),
				}
			}
		}
	}

	in.Count = count
	in.Resources = res
	switch {
	case arg.Kind() == KindValue:
		in.Data = arg.Bytes()
		in.BufferSlot = c.bufferSlot
	case arg.Kind().IsImage():
		in.TextureSlot = c.textureSlot
		in.Doubled = decl != nil && decl.Access == funcinfo.AccessReadWrite
	default:
		in.BufferSlot = c.bufferSlot
	}
	if _, err := slotEnd(in.Slot(), in.Count, in.Doubled); err != nil {
		return invalid("", fmt.Errorf("slot range overflows: %w", err))
	}
	return in, nil
}

// slotEnd is the first slot after count slots starting at slot, twice as
// many when doubled.
func slotEnd(slot, count uint32, doubled bool) (uint32, error) {
	span := uint64(count)
	if doubled {
		span *= 2
	}
	return safecast.Conv[uint32](uint64(slot) + span)
}

// fits reports whether arg can feed the declared parameter, and what the
// parameter wants when it cannot.
func fits(decl *funcinfo.ArgInfo, arg Argument) (string, bool) {
	switch {
	case decl.Role == funcinfo.RoleImageArray:
		want := fmt.Sprintf("image-array[%d]", decl.Size)
		if arg.Kind() != KindImageArray {
			return want, false
		}
		return want, decl.Size == 0 || uint64(arg.Len()) == uint64(decl.Size)
	case decl.IsImage():
		return "image", arg.Kind().IsImage()
	case decl.Role == funcinfo.RoleArgumentBuffer:
		return "argument-buffer", arg.Kind() == KindArgumentBuffer
	default:
		return "buffer", arg.Kind().IsBufferLike()
	}
}
