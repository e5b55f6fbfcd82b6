package ffi

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"

	"argbind/internal/diag"
	"argbind/internal/funcinfo"
	"argbind/internal/trace"
)

// FormatVersion is the only record version accepted.
const FormatVersion = funcinfo.WireVersion

// minFields is version, name, type, flags and the three f4..f6 fields.
const minFields = 7

// Options tune a decode.
type Options struct {
	// Strict rejects packed values of 0 or all bits set instead of
	// reporting them and decoding them as-is.
	Strict bool
	// Reporter receives warnings; nil drops them.
	Reporter diag.Reporter
	// Source names the input in errors, diagnostics and traces.
	Source string
}

// Decode parses function info records. On error no functions are returned.
func Decode(lines []string, opts Options) ([]funcinfo.FunctionInfo, error) {
	return DecodeContext(context.Background(), lines, opts)
}

// DecodeString splits s on line feeds and decodes the records.
func DecodeString(s string, opts Options) ([]funcinfo.FunctionInfo, error) {
	return Decode(strings.Split(s, "\n"), opts)
}

// DecodeContext is Decode with a context carrying the tracer.
func DecodeContext(ctx context.Context, lines []string, opts Options) ([]funcinfo.FunctionInfo, error) {
	ctx, span := trace.Start(ctx, trace.ScopeProgram, "decode")
	d := &decoder{
		opts:   opts,
		tracer: trace.FromContext(ctx),
		parent: span.ID(),
		latest: make(map[string]int),
	}
	fns, err := d.run(lines)
	if err != nil {
		span.WithExtra("error", err.Error()).End("failed")
		return nil, err
	}
	span.WithExtra("functions", strconv.Itoa(len(fns))).End(opts.Source)
	return fns, nil
}

type decoder struct {
	opts   Options
	tracer trace.Tracer
	parent uint64

	out []funcinfo.FunctionInfo
	// line of each entry in out
	lines []int
	// name -> index in out of the most recently decoded function
	latest map[string]int
}

type record struct {
	line   int
	name   string
	kind   funcinfo.FunctionKind
	flags  funcinfo.FunctionFlags
	fields []string
}

func (d *decoder) errorf(kind ErrorKind, rec *record, field int, value string, err error) *DecodeError {
	e := &DecodeError{
		Kind:   kind,
		Source: d.opts.Source,
		Index:  -1,
		Field:  field,
		Value:  value,
		Err:    err,
	}
	if rec != nil {
		e.Line = rec.line
		e.Name = rec.name
	}
	return e
}

func (d *decoder) run(lines []string) ([]funcinfo.FunctionInfo, error) {
	for i, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		if err := d.record(i+1, line); err != nil {
			return nil, err
		}
	}
	if err := d.checkLayouts(); err != nil {
		return nil, err
	}
	return d.out, nil
}

func (d *decoder) record(lineNo int, line string) error {
	fields := strings.Split(line, ",")
	rec := &record{line: lineNo, fields: fields}
	if len(fields) < minFields {
		return d.errorf(MalformedRecord, rec, -1, line,
			fmt.Errorf("expected at least %d fields, got %d", minFields, len(fields)))
	}
	if fields[0] != FormatVersion {
		return d.errorf(VersionMismatch, rec, 0, fields[0], nil)
	}
	rec.name = fields[1]

	kind, ok := parseKind(fields[2])
	if !ok || !kind.Supported() {
		return d.errorf(UnsupportedFunctionType, rec, 2, fields[2], nil)
	}
	rec.kind = kind

	flags, err := parseUint(fields[3], 32)
	if err != nil {
		return d.errorf(MalformedRecord, rec, 3, fields[3], err)
	}
	flags32, err := safecast.Conv[uint32](flags)
	if err != nil {
		return d.errorf(MalformedRecord, rec, 3, fields[3], err)
	}
	rec.flags = funcinfo.FunctionFlags(flags32)

	var head [3]uint32
	for i := range head {
		v, err := parseUint(fields[4+i], 32)
		if err != nil {
			return d.errorf(MalformedRecord, rec, 4+i, fields[4+i], err)
		}
		if head[i], err = safecast.Conv[uint32](v); err != nil {
			return d.errorf(MalformedRecord, rec, 4+i, fields[4+i], err)
		}
	}

	fn := funcinfo.FunctionInfo{
		Name:  rec.name,
		Kind:  kind,
		Flags: rec.flags,
	}
	if kind == funcinfo.KindArgumentBufferStruct {
		if head[1] != 0 || head[2] != 0 {
			return d.errorf(MalformedRecord, rec, 5, fields[5]+","+fields[6],
				fmt.Errorf("local size must be 0 for argument buffer struct info"))
		}
	} else {
		fn.LocalSize = funcinfo.LocalSize(head)
	}

	args, err := d.args(rec)
	if err != nil {
		return err
	}
	fn.Args = args

	if kind == funcinfo.KindArgumentBufferStruct {
		return d.attach(rec, int(head[0]), &fn)
	}
	d.latest[fn.Name] = len(d.out)
	d.out = append(d.out, fn)
	d.lines = append(d.lines, lineNo)
	trace.Point(d.tracer, trace.ScopeEntry, d.parent, "function:"+fn.Name, fn.Kind.String(), map[string]string{
		"args":       strconv.Itoa(len(fn.Args)),
		"local_size": fn.LocalSize.String(),
		"flags":      fn.Flags.String(),
	})
	return nil
}

func (d *decoder) args(rec *record) ([]funcinfo.ArgInfo, error) {
	var args []funcinfo.ArgInfo
	for i := minFields; i < len(rec.fields); i++ {
		tok := rec.fields[i]
		if tok == "" {
			continue
		}
		v, err := strconv.ParseUint(tok, 10, 64)
		if err != nil {
			return nil, d.errorf(MalformedRecord, rec, i, tok, err)
		}
		if funcinfo.IsMalformedPacked(v) {
			if err := d.malformedPacked(rec, len(args), i, tok); err != nil {
				return nil, err
			}
		}
		arg := funcinfo.Unpack(v)
		trace.Point(d.tracer, trace.ScopeArg, d.parent, "arg", rec.name, map[string]string{
			"index":  strconv.Itoa(len(args)),
			"size":   strconv.FormatUint(uint64(arg.Size), 10),
			"space":  arg.AddressSpace.String(),
			"image":  arg.Image.String(),
			"access": arg.Access.String(),
			"role":   arg.Role.String(),
		})
		args = append(args, arg)
	}
	return args, nil
}

func (d *decoder) malformedPacked(rec *record, index, field int, tok string) error {
	if d.opts.Strict {
		e := d.errorf(MalformedArgInfo, rec, field, tok, nil)
		e.Index = index
		return e
	}
	pos := diag.Pos{Source: d.opts.Source, Line: rec.line, Field: field}
	msg := fmt.Sprintf("invalid arg info for argument #%d in function %s: %s", index, rec.name, tok)
	trace.Point(d.tracer, trace.ScopeProgram, d.parent, "malformed-packed", msg, nil)
	if d.opts.Reporter != nil {
		diag.ReportWarning(d.opts.Reporter, diag.DecMalformedArgInfo, pos, msg).Emit()
	}
	return nil
}

func (d *decoder) attach(rec *record, argIdx int, layout *funcinfo.FunctionInfo) error {
	owner, ok := d.latest[rec.name]
	if !ok {
		return d.errorf(ArgumentBufferTargetNotFound, rec, 1, rec.name, nil)
	}
	fn := &d.out[owner]
	if argIdx >= len(fn.Args) {
		e := d.errorf(ArgumentBufferIndexOutOfRange, rec, 4, strconv.Itoa(len(fn.Args)), nil)
		e.Index = argIdx
		return e
	}
	arg := &fn.Args[argIdx]
	if arg.Role != funcinfo.RoleArgumentBuffer {
		e := d.errorf(ArgumentBufferRoleMismatch, rec, 4, arg.Role.String(), nil)
		e.Index = argIdx
		return e
	}
	arg.Nested = layout
	trace.Point(d.tracer, trace.ScopeEntry, d.parent, "attach:"+rec.name, "", map[string]string{
		"arg":        strconv.Itoa(argIdx),
		"owner_line": strconv.Itoa(d.lines[owner]),
		"fields":     strconv.Itoa(len(layout.Args)),
	})
	return nil
}

func (d *decoder) checkLayouts() error {
	for i := range d.out {
		fn := &d.out[i]
		for j := range fn.Args {
			if fn.Args[j].Role == funcinfo.RoleArgumentBuffer && fn.Args[j].Nested == nil {
				return &DecodeError{
					Kind:   MissingArgumentBufferLayout,
					Source: d.opts.Source,
					Line:   d.lines[i],
					Name:   fn.Name,
					Index:  j,
					Field:  -1,
				}
			}
		}
	}
	return nil
}

var kindTags = map[string]funcinfo.FunctionKind{
	"1":   funcinfo.KindKernel,
	"2":   funcinfo.KindVertex,
	"3":   funcinfo.KindFragment,
	"4":   funcinfo.KindGeometry,
	"5":   funcinfo.KindTessellationControl,
	"6":   funcinfo.KindTessellationEvaluation,
	"100": funcinfo.KindArgumentBufferStruct,
}

func parseKind(tag string) (funcinfo.FunctionKind, bool) {
	k, ok := kindTags[tag]
	return k, ok
}

// parseUint reads a base-10 field; an absent field is 0.
func parseUint(s string, bits int) (uint64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseUint(s, 10, bits)
}
