package main

import (
	"reflect"
	"testing"

	"argbind/internal/funcinfo"
)

func TestFunctionJSONRoundTrip(t *testing.T) {
	fn := funcinfo.FunctionInfo{
		Name:      "reduce",
		Kind:      funcinfo.KindKernel,
		Flags:     funcinfo.FlagUsesSoftPrintf,
		LocalSize: funcinfo.LocalSize{64, 1, 1},
		Args: []funcinfo.ArgInfo{
			{Size: 16, AddressSpace: funcinfo.AddressConstant, Role: funcinfo.RoleArgumentBuffer, Nested: &funcinfo.FunctionInfo{
				Name: "reduce",
				Kind: funcinfo.KindArgumentBufferStruct,
				Args: []funcinfo.ArgInfo{
					{Size: 16, AddressSpace: funcinfo.AddressGlobal},
					{Size: 8, AddressSpace: funcinfo.AddressImage, Image: funcinfo.Image2D, Access: funcinfo.AccessRead},
				},
			}},
			{Size: 4, AddressSpace: funcinfo.AddressConstant},
		},
	}
	fj := toFunctionJSON(&fn)
	back, err := fromFunctionJSON(&fj)
	if err != nil {
		t.Fatalf("fromFunctionJSON: %v", err)
	}
	if !reflect.DeepEqual(back, fn) {
		t.Fatalf("round trip:\n got %+v\nwant %+v", back, fn)
	}
}

func TestFromFunctionJSONRejects(t *testing.T) {
	cases := []functionJSON{
		{Name: "a", Kind: "compute"},
		{Name: "a", Kind: "kernel", Flags: "fast"},
		{Name: "a", Kind: "kernel", Args: []argJSON{{AddressSpace: "shared"}}},
		{Name: "a", Kind: "kernel", Args: []argJSON{{Access: "sometimes"}}},
		{Name: "a", Kind: "kernel", Args: []argJSON{{Image: "5d"}}},
	}
	for _, c := range cases {
		if _, err := fromFunctionJSON(&c); err == nil {
			t.Errorf("%+v: expected error", c)
		}
	}
}

func TestDescribeArg(t *testing.T) {
	tests := []struct {
		arg  funcinfo.ArgInfo
		want string
	}{
		{funcinfo.ArgInfo{Size: 16, AddressSpace: funcinfo.AddressGlobal}, "global size=16"},
		{funcinfo.ArgInfo{Size: 8, AddressSpace: funcinfo.AddressImage, Image: funcinfo.Image2D, Access: funcinfo.AccessRead}, "image 2d read size=8"},
		{funcinfo.ArgInfo{Size: 4, AddressSpace: funcinfo.AddressImage, Image: funcinfo.Image2D, Access: funcinfo.AccessRead, Role: funcinfo.RoleImageArray}, "image-array[4] 2d read"},
		{funcinfo.ArgInfo{Size: 32, Role: funcinfo.RoleStageInput}, "stage-input size=32"},
		{funcinfo.ArgInfo{Size: 16, AddressSpace: funcinfo.AddressConstant, Role: funcinfo.RoleArgumentBuffer, Nested: &funcinfo.FunctionInfo{Args: make([]funcinfo.ArgInfo, 2)}}, "argument-buffer constant {2 fields} size=16"},
		{funcinfo.ArgInfo{Size: 64, AddressSpace: funcinfo.AddressConstant, Role: funcinfo.RolePushConstant}, "constant push-constant size=64"},
	}
	for _, tt := range tests {
		if got := describeArg(&tt.arg); got != tt.want {
			t.Errorf("describeArg(%+v) = %q, want %q", tt.arg, got, tt.want)
		}
	}
}

func TestReadModes(t *testing.T) {
	if m, err := readUIMode(" ON "); err != nil || m != uiModeOn {
		t.Fatalf("readUIMode = %q, %v", m, err)
	}
	if _, err := readUIMode("sometimes"); err == nil {
		t.Fatal("expected ui mode error")
	}
	if f, err := readFormat("JSON"); err != nil || f != formatJSON {
		t.Fatalf("readFormat = %q, %v", f, err)
	}
	if shouldUseTUI(uiModeAuto, 3, formatJSON) {
		t.Fatal("json output must not get a live view")
	}
	if shouldUseTUI(uiModeOff, 3, formatPretty) || !shouldUseTUI(uiModeOn, 1, formatJSON) {
		t.Fatal("explicit modes must win")
	}
}
