package testkit_test

import (
	"strings"
	"testing"

	"argbind/internal/bind"
	"argbind/internal/funcinfo"
	"argbind/internal/testkit"
)

type res string

func (r res) Label() string { return string(r) }

func TestCheckPlanAcceptsBind(t *testing.T) {
	vs := &funcinfo.FunctionInfo{Name: "vs", Kind: funcinfo.KindVertex, Args: []funcinfo.ArgInfo{
		{Size: 32, Role: funcinfo.RoleStageInput},
		{Size: 16, AddressSpace: funcinfo.AddressGlobal},
		{Size: 8, AddressSpace: funcinfo.AddressImage, Image: funcinfo.Image2D, Access: funcinfo.AccessReadWrite},
	}}
	fs := &funcinfo.FunctionInfo{Name: "fs", Kind: funcinfo.KindFragment, Flags: funcinfo.FlagUsesSoftPrintf, Args: []funcinfo.ArgInfo{
		{Size: 16, AddressSpace: funcinfo.AddressGlobal},
	}}
	plan, err := bind.Bind([]*funcinfo.FunctionInfo{vs, nil, fs},
		[]bind.Argument{bind.Buffers(res("a"), res("b")), bind.Image(res("t")), bind.Value([]byte{1})},
		[]bind.Argument{bind.Buffer(res("printf"))})
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if err := testkit.CheckPlan(plan); err != nil {
		t.Fatalf("CheckPlan: %v", err)
	}
}

func TestCheckPlanRejects(t *testing.T) {
	tests := []struct {
		name string
		plan []bind.Instruction
		want string
	}{
		{
			name: "gap",
			plan: []bind.Instruction{
				{Kind: bind.KindBuffer, Count: 1, Resources: []bind.Resource{res("a")}},
				{Kind: bind.KindBuffer, BufferSlot: 2, Count: 1, Resources: []bind.Resource{res("b")}},
			},
			want: "buffer slot 2, want 1",
		},
		{
			name: "entry order",
			plan: []bind.Instruction{
				{Kind: bind.KindValue, Entry: 1, Count: 1},
				{Kind: bind.KindValue, Entry: 0, Count: 1},
			},
			want: "entry 0 after entry 1",
		},
		{
			name: "count",
			plan: []bind.Instruction{{Kind: bind.KindBufferArray, Count: 3, Resources: []bind.Resource{res("a")}}},
			want: "count 3, 1 resources",
		},
		{
			name: "doubled buffer",
			plan: []bind.Instruction{{Kind: bind.KindBuffer, Count: 1, Doubled: true, Resources: []bind.Resource{res("a")}}},
			want: "doubled",
		},
		{
			name: "implicit first",
			plan: []bind.Instruction{
				{Kind: bind.KindValue, Count: 1, Implicit: true},
				{Kind: bind.KindValue, BufferSlot: 1, Count: 1},
			},
			want: "declared argument after implicit",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := testkit.CheckPlan(tt.plan)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("CheckPlan = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestCheckProgram(t *testing.T) {
	layout := &funcinfo.FunctionInfo{Name: "k", Kind: funcinfo.KindArgumentBufferStruct}
	ok := []funcinfo.FunctionInfo{{Name: "k", Kind: funcinfo.KindKernel, Args: []funcinfo.ArgInfo{
		{Role: funcinfo.RoleArgumentBuffer, Nested: layout},
	}}}
	if err := testkit.CheckProgram(ok); err != nil {
		t.Fatalf("CheckProgram: %v", err)
	}

	bad := [][]funcinfo.FunctionInfo{
		{{Name: "s", Kind: funcinfo.KindArgumentBufferStruct}},
		{{Name: "k", Kind: funcinfo.KindKernel, Args: []funcinfo.ArgInfo{{Role: funcinfo.RoleArgumentBuffer}}}},
		{{Name: "k", Kind: funcinfo.KindKernel, Args: []funcinfo.ArgInfo{{Nested: layout}}}},
		{{Name: "k", Kind: funcinfo.KindKernel, Args: []funcinfo.ArgInfo{
			{Role: funcinfo.RoleArgumentBuffer, Nested: &funcinfo.FunctionInfo{Name: "k", Kind: funcinfo.KindKernel}},
		}}},
	}
	for i, fns := range bad {
		if err := testkit.CheckProgram(fns); err == nil {
			t.Errorf("case %d: expected error", i)
		}
	}
}
