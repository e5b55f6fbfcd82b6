package ffi

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"argbind/internal/diag"
	"argbind/internal/funcinfo"
	"argbind/internal/trace"
)

const (
	packedGlobal4  = "4294967300"         // size 4, global
	packedArgBuf16 = "432345577112469520" // size 16, constant, argument buffer
	packedStage32  = "72057594037927968"  // size 32, stage input
	packedRWImage  = "848840156512264"    // size 8, image space, 2d, read-write
)

func TestDecodeVersionMismatch(t *testing.T) {
	fns, err := Decode([]string{"3,k,1,0,1,1,1," + packedGlobal4}, Options{})
	if !errors.Is(err, VersionMismatch) {
		t.Fatalf("err = %v, want VersionMismatch", err)
	}
	if len(fns) != 0 {
		t.Fatalf("got %d functions on error", len(fns))
	}
	var de *DecodeError
	if !errors.As(err, &de) || de.Code() != diag.DecVersionMismatch || de.Line != 1 {
		t.Fatalf("unexpected error %#v", err)
	}
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  ErrorKind
	}{
		{"too few fields", "4,k,1,0,1,1", MalformedRecord},
		{"geometry", "4,g,4,0,0,0,0", UnsupportedFunctionType},
		{"tessellation", "4,t,6,0,0,0,0", UnsupportedFunctionType},
		{"unknown type", "4,x,7,0,0,0,0", UnsupportedFunctionType},
		{"bad flags", "4,k,1,x,0,0,0", MalformedRecord},
		{"bad local size", "4,k,1,0,-1,0,0", MalformedRecord},
		{"flags wider than 32 bits", "4,k,1,4294967296,1,1,1", MalformedRecord},
		{"local size wider than 32 bits", "4,k,1,0,1,4294967296,1", MalformedRecord},
		{"bad arg", "4,k,1,0,1,1,1,abc", MalformedRecord},
		{"struct with local size", "4,k,1,0,1,1,1," + packedArgBuf16 + "\n4,k,100,0,0,1,0", MalformedRecord},
		{"struct before target", "4,k,100,0,0,0,0," + packedGlobal4, ArgumentBufferTargetNotFound},
		{"struct index out of range", "4,k,1,0,1,1,1," + packedArgBuf16 + "\n4,k,100,0,3,0,0", ArgumentBufferIndexOutOfRange},
		{"struct role mismatch", "4,k,1,0,1,1,1," + packedGlobal4 + "\n4,k,100,0,0,0,0", ArgumentBufferRoleMismatch},
		{"missing layout", "4,k,1,0,1,1,1," + packedArgBuf16, MissingArgumentBufferLayout},
		{"second function fails", "4,a,1,0,1,1,1\n5,b,1,0,1,1,1", VersionMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fns, err := DecodeString(tt.input, Options{Source: "test.ffi"})
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if fns != nil {
				t.Fatalf("partial result returned: %+v", fns)
			}
		})
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	fns := []funcinfo.FunctionInfo{
		{
			Name:      "simple_kernel",
			LocalSize: funcinfo.LocalSize{64, 1, 1},
			Kind:      funcinfo.KindKernel,
			Flags:     funcinfo.FlagUsesSoftPrintf | 0x40,
			Args: []funcinfo.ArgInfo{
				{Size: 4, AddressSpace: funcinfo.AddressGlobal},
				{Size: 8, AddressSpace: funcinfo.AddressImage, Image: funcinfo.Image2DArray, Access: funcinfo.AccessWrite},
				{Size: 3, AddressSpace: funcinfo.AddressImage, Image: funcinfo.ImageCube, Access: funcinfo.AccessRead, Role: funcinfo.RoleImageArray},
			},
		},
		{Name: "vs", Kind: funcinfo.KindVertex, Args: []funcinfo.ArgInfo{{Size: 32, Role: funcinfo.RoleStageInput}}},
		{Name: "fs", Kind: funcinfo.KindFragment},
	}
	withStruct := funcinfo.FunctionInfo{
		Name:      "ab_kernel",
		LocalSize: funcinfo.LocalSize{8, 8, 1},
		Kind:      funcinfo.KindKernel,
		Args: []funcinfo.ArgInfo{
			{Size: 4, AddressSpace: funcinfo.AddressGlobal},
			{Size: 16, AddressSpace: funcinfo.AddressConstant, Role: funcinfo.RoleArgumentBuffer, Nested: &funcinfo.FunctionInfo{
				Name: "ab_kernel",
				Kind: funcinfo.KindArgumentBufferStruct,
				Args: []funcinfo.ArgInfo{
					{Size: 4, AddressSpace: funcinfo.AddressGlobal},
					{Size: 8, AddressSpace: funcinfo.AddressImage, Image: funcinfo.Image3D, Access: funcinfo.AccessRead},
				},
			}},
		},
	}

	for _, set := range [][]funcinfo.FunctionInfo{fns, append(fns[:len(fns):len(fns)], withStruct)} {
		lines, err := funcinfo.Encode(set)
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		got, err := Decode(lines, Options{})
		if err != nil {
			t.Fatalf("Decode: %v\n%s", err, strings.Join(lines, "\n"))
		}
		if !reflect.DeepEqual(got, set) {
			t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, set)
		}
	}
}

func TestDecodeAttachesStructToNearestOwner(t *testing.T) {
	input := strings.Join([]string{
		"4,k,1,0,1,1,1," + packedArgBuf16,
		"4,k,100,0,0,0,0," + packedGlobal4,
		"4,k,1,0,2,2,2," + packedGlobal4 + "," + packedArgBuf16,
		"4,other,3,0,0,0,0",
		"4,k,100,1,1,0,0," + packedGlobal4 + "," + packedGlobal4,
		"",
	}, "\n")
	fns, err := DecodeString(input, Options{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(fns) != 3 {
		t.Fatalf("got %d functions, want 3 (struct records are not top-level)", len(fns))
	}
	first, second := fns[0].Args[0].Nested, fns[1].Args[1].Nested
	if first == nil || len(first.Args) != 1 {
		t.Fatalf("first k: nested = %+v", first)
	}
	if second == nil || len(second.Args) != 2 || second.Flags != 1 {
		t.Fatalf("second k: nested = %+v", second)
	}
	if second.Kind != funcinfo.KindArgumentBufferStruct || !second.LocalSize.IsZero() {
		t.Fatalf("nested layout kind=%s local=%s", second.Kind, second.LocalSize)
	}
}

func TestDecodeMalformedPackedLenient(t *testing.T) {
	bag := diag.NewBag(8)
	ring := trace.NewRingTracer(64, trace.LevelPhase)
	ctx := trace.WithTracer(context.Background(), ring)

	input := "4,k,1,0,1,1,1,0," + packedGlobal4 + ",18446744073709551615"
	fns, err := DecodeContext(ctx, strings.Split(input, "\n"), Options{
		Reporter: diag.BagReporter{Bag: bag},
		Source:   "k.ffi",
	})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(fns) != 1 || len(fns[0].Args) != 3 {
		t.Fatalf("unexpected functions %+v", fns)
	}
	if fns[0].Args[0] != (funcinfo.ArgInfo{}) {
		t.Fatalf("packed 0 should decode to zero ArgInfo, got %+v", fns[0].Args[0])
	}
	if bag.Len() != 2 || bag.HasErrors() {
		t.Fatalf("expected 2 warnings, got %v", bag.Items())
	}
	d := bag.Items()[0]
	if d.Code != diag.DecMalformedArgInfo || d.Primary != (diag.Pos{Source: "k.ffi", Line: 1, Field: 7}) {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
	var points int
	for _, ev := range ring.Snapshot() {
		if ev.Name == "malformed-packed" {
			points++
		}
	}
	if points != 2 {
		t.Fatalf("traced %d malformed-packed events, want 2", points)
	}
}

func TestDecodeMalformedPackedStrict(t *testing.T) {
	_, err := DecodeString("4,k,1,0,1,1,1,"+packedGlobal4+",0", Options{Strict: true})
	var de *DecodeError
	if !errors.As(err, &de) || de.Kind != MalformedArgInfo {
		t.Fatalf("err = %v, want MalformedArgInfo", err)
	}
	if de.Index != 1 || de.Field != 8 {
		t.Fatalf("index=%d field=%d, want 1 and 8", de.Index, de.Field)
	}
}

func TestDecodeToleratesBlankFieldsAndLines(t *testing.T) {
	input := "\r\n4,k,1,0,,,," + packedGlobal4 + ",,\r\n\n"
	fns, err := DecodeString(input, Options{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(fns) != 1 || len(fns[0].Args) != 1 || !fns[0].LocalSize.IsZero() {
		t.Fatalf("unexpected functions %+v", fns)
	}
}

func TestDecodeStageInputAndImage(t *testing.T) {
	fns, err := DecodeString("4,vs,2,0,0,0,0,"+packedStage32+","+packedRWImage, Options{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	args := fns[0].Args
	if !args[0].IsStageInput() || args[0].Size != 32 {
		t.Fatalf("arg0 = %+v", args[0])
	}
	if !args[1].IsImage() || args[1].Access != funcinfo.AccessReadWrite || args[1].Image != funcinfo.Image2D {
		t.Fatalf("arg1 = %+v", args[1])
	}
}

func TestDecodeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.ffi")
	if err := os.WriteFile(path, []byte("4,k,1,0,1,1,1,"+packedGlobal4+"\n4,k,9,0,0,0,0\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := DecodeFile(context.Background(), path, Options{})
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("err = %v, want DecodeError", err)
	}
	if de.Source != path || de.Line != 2 {
		t.Fatalf("source=%q line=%d", de.Source, de.Line)
	}
	if !strings.HasPrefix(err.Error(), path+":2") {
		t.Fatalf("error %q does not start with position", err)
	}

	if _, err := DecodeFile(context.Background(), filepath.Join(dir, "missing.ffi"), Options{}); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestDecodeReaderCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := DecodeReader(ctx, strings.NewReader("4,k,1,0,1,1,1\n"), Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
