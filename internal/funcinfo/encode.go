package funcinfo

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// WireVersion is the record version tag understood by this package.
const WireVersion = "4"

// Encode renders functions as wire records, one string per line.
// Argument buffer struct records follow the function record that owns them.
func Encode(fns []FunctionInfo) ([]string, error) {
	var lines []string
	for i := range fns {
		recs, err := encodeFunction(&fns[i])
		if err != nil {
			return nil, err
		}
		lines = append(lines, recs...)
	}
	return lines, nil
}

// WriteRecords writes the records of Encode to w, newline terminated.
func WriteRecords(w io.Writer, fns []FunctionInfo) error {
	lines, err := Encode(fns)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	for _, line := range lines {
		if _, err := bw.WriteString(line); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func encodeFunction(fn *FunctionInfo) ([]string, error) {
	if fn.Kind == KindArgumentBufferStruct {
		return nil, fmt.Errorf("%s: argument buffer structs are encoded through their owning function", fn.Name)
	}
	if strings.ContainsAny(fn.Name, ",\n") {
		return nil, fmt.Errorf("function name %q cannot be encoded", fn.Name)
	}
	head := []string{
		strconv.FormatUint(uint64(fn.LocalSize[0]), 10),
		strconv.FormatUint(uint64(fn.LocalSize[1]), 10),
		strconv.FormatUint(uint64(fn.LocalSize[2]), 10),
	}
	line, err := encodeRecord(fn.Name, fn.Kind, fn.Flags, head, fn.Args)
	if err != nil {
		return nil, err
	}
	out := []string{line}
	for i := range fn.Args {
		nested := fn.Args[i].Nested
		if nested == nil {
			continue
		}
		for j := range nested.Args {
			if nested.Args[j].Nested != nil {
				return nil, fmt.Errorf("%s: argument #%d: nested argument buffers cannot be encoded", fn.Name, i)
			}
		}
		head := []string{strconv.Itoa(i), "0", "0"}
		rec, err := encodeRecord(fn.Name, KindArgumentBufferStruct, nested.Flags, head, nested.Args)
		if err != nil {
			return nil, fmt.Errorf("%s: argument #%d: %w", fn.Name, i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func encodeRecord(name string, kind FunctionKind, flags FunctionFlags, head []string, args []ArgInfo) (string, error) {
	var sb strings.Builder
	sb.WriteString(WireVersion)
	sb.WriteByte(',')
	sb.WriteString(name)
	sb.WriteByte(',')
	sb.WriteString(strconv.FormatUint(uint64(kind), 10))
	sb.WriteByte(',')
	sb.WriteString(strconv.FormatUint(uint64(flags), 10))
	for _, h := range head {
		sb.WriteByte(',')
		sb.WriteString(h)
	}
	for i := range args {
		v, err := Pack(args[i])
		if err != nil {
			return "", fmt.Errorf("argument #%d: %w", i, err)
		}
		sb.WriteByte(',')
		sb.WriteString(strconv.FormatUint(v, 10))
	}
	return sb.String(), nil
}
