// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package wgslgen

import (
	"reflect"
	"strings"
	"testing"

	"github.com/gogpu/naga/ir"

	"github.com/gogpu/nvshader"
	"github.com/gogpu/nvshader/codegen"
	"github.com/gogpu/nvshader/hw"
	"github.com/gogpu/nvshader/program"
)

const vertexSource = `
struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) uv: vec2<f32>,
    @location(1) id: u32,
}

@vertex
fn vs_main(
    @location(1) uv: vec2<f32>,
    @location(0) pos: vec3<f32>,
    @builtin(vertex_index) vi: u32,
) -> VertexOutput {
    return VertexOutput(vec4<f32>(pos, 1.0), uv, vi);
}
`

const fragmentSource = `
struct FragmentOutput {
    @builtin(frag_depth) depth: f32,
    @builtin(sample_mask) mask: u32,
    @location(2) color: vec4<f32>,
}

@fragment
fn fs_main(
    @builtin(position) coord: vec4<f32>,
    @builtin(front_facing) front: bool,
    @location(0) uv: vec2<f32>,
) -> FragmentOutput {
    if uv.x < 0.0 {
        discard;
    }
    let c = select(0.0, 1.0, front);
    return FragmentOutput(coord.z, 1u, vec4<f32>(uv, c, 1.0));
}
`

const sparseColorSource = `
struct FragmentOutput {
    @location(0) albedo: vec4<f32>,
    @location(2) normal: vec4<f32>,
    @builtin(sample_mask) mask: u32,
    @builtin(frag_depth) depth: f32,
}

@fragment
fn fs_main(@builtin(position) coord: vec4<f32>) -> FragmentOutput {
    return FragmentOutput(coord, coord.zyxw, 1u, coord.z);
}
`

const computeSource = `
@group(0) @binding(0) var<storage, read_write> data: array<u32>;
var<workgroup> tile: array<u32, 64>;

@compute @workgroup_size(64, 1, 1)
fn cs_main(@builtin(local_invocation_id) lid: vec3<u32>) {
    tile[lid.x] = data[lid.x];
    workgroupBarrier();
    data[lid.x] = tile[63u - lid.x];
}
`

// testOptions skips IR validation, which rejects some minimal shaders.
func testOptions() Options {
	opts := DefaultOptions()
	opts.Validate = false
	return opts
}

func generate(t *testing.T, source string, opts Options) *codegen.Result {
	t.Helper()
	r, err := New("test.wgsl", source, opts).Generate(codegen.Target{Chipset: 0x134, OptLevel: 3})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return r
}

func TestGenerateVertex(t *testing.T) {
	r := generate(t, vertexSource, testOptions())

	if r.Info.Stage != program.StageVertex {
		t.Fatalf("Stage = %v", r.Info.Stage)
	}
	wantInputs := []program.Variable{
		{Semantic: program.SemGeneric, Index: 0, Mask: 0x7},
		{Semantic: program.SemGeneric, Index: 1, Mask: 0x3},
	}
	if !reflect.DeepEqual(r.Info.Inputs, wantInputs) {
		t.Errorf("Inputs = %+v, want %+v", r.Info.Inputs, wantInputs)
	}
	wantOutputs := []program.Variable{
		{Semantic: program.SemPosition, Mask: 0xf},
		{Semantic: program.SemGeneric, Index: 0, Mask: 0x3},
		{Semantic: program.SemGeneric, Index: 1, Mask: 0x1, Flags: program.FlagFlat},
	}
	if !reflect.DeepEqual(r.Info.Outputs, wantOutputs) {
		t.Errorf("Outputs = %+v, want %+v", r.Info.Outputs, wantOutputs)
	}
	if !r.Info.HasSysVal(program.SemVertexID) || len(r.Info.SysVals) != 1 {
		t.Errorf("SysVals = %+v", r.Info.SysVals)
	}

	// SPIR-V magic number, little endian.
	if len(r.Code) < 20 || len(r.Code)%4 != 0 ||
		r.Code[0] != 0x03 || r.Code[1] != 0x02 || r.Code[2] != 0x23 || r.Code[3] != 0x07 {
		t.Errorf("code is not a SPIR-V module (%d bytes)", len(r.Code))
	}
}

func TestGenerateFragment(t *testing.T) {
	r := generate(t, fragmentSource, testOptions())
	info := r.Info

	wantOutputs := []program.Variable{
		{Semantic: program.SemFragDepth, Mask: 0x4},
		{Semantic: program.SemSampleMask, Mask: 0x1},
		{Semantic: program.SemColor, Index: 2, Mask: 0xf},
	}
	if !reflect.DeepEqual(info.Outputs, wantOutputs) {
		t.Errorf("Outputs = %+v, want %+v", info.Outputs, wantOutputs)
	}
	p := info.Props
	if p.FragDepth == nil || *p.FragDepth != 0 || p.SampleMask == nil || *p.SampleMask != 1 {
		t.Errorf("FragDepth = %v, SampleMask = %v", p.FragDepth, p.SampleMask)
	}
	if p.NumColorResults != 1 || !p.WritesDepth || !p.UsesDiscard || !p.SeparateFragData {
		t.Errorf("Props = %+v", p)
	}

	wantInputs := []program.Variable{
		{Semantic: program.SemPosition, Mask: 0xf},
		{Semantic: program.SemGeneric, Index: 0, Mask: 0x3},
	}
	if !reflect.DeepEqual(info.Inputs, wantInputs) {
		t.Errorf("Inputs = %+v, want %+v", info.Inputs, wantInputs)
	}
	if !info.HasSysVal(program.SemFace) {
		t.Errorf("front_facing not gathered: %+v", info.SysVals)
	}
}

func TestGenerateCompute(t *testing.T) {
	opts := testOptions()
	opts.MaxGPR = 17
	r := generate(t, computeSource, opts)

	if r.Info.Stage != program.StageCompute {
		t.Fatalf("Stage = %v", r.Info.Stage)
	}
	if r.Info.Props.Workgroup != [3]uint32{64, 1, 1} {
		t.Errorf("Workgroup = %v", r.Info.Props.Workgroup)
	}
	c := r.Counters
	if c.MaxGPR != 17 || c.NumBarriers != 1 {
		t.Errorf("Counters = %+v", c)
	}
	if c.GlobalAccess != program.GlobalRead|program.GlobalWrite {
		t.Errorf("GlobalAccess = %#x, want read|write", c.GlobalAccess)
	}
	if !r.Info.HasSysVal(program.SemLocalInvocationID) {
		t.Errorf("SysVals = %+v", r.Info.SysVals)
	}
}

func TestEntryPointSelection(t *testing.T) {
	src := vertexSource + fragmentSource

	_, err := New("two.wgsl", src, testOptions()).Generate(codegen.Target{})
	if err == nil || !strings.Contains(err.Error(), "2 entry points") {
		t.Errorf("err = %v, want entry point count error", err)
	}

	opts := testOptions()
	opts.EntryPoint = "fs_main"
	r := generate(t, src, opts)
	if r.Info.Stage != program.StageFragment {
		t.Errorf("Stage = %v, want fragment", r.Info.Stage)
	}

	opts.EntryPoint = "main"
	_, err = New("two.wgsl", src, opts).Generate(codegen.Target{})
	if err == nil || !strings.Contains(err.Error(), `no entry point "main"`) {
		t.Errorf("err = %v", err)
	}
}

func TestGenerateParseError(t *testing.T) {
	_, err := New("broken.wgsl", "@vertex fn main( -> {", testOptions()).Generate(codegen.Target{})
	if err == nil || !strings.Contains(err.Error(), "broken.wgsl") {
		t.Errorf("err = %v, want error naming the source", err)
	}
}

func TestGatherModule(t *testing.T) {
	var loc3 ir.Binding = ir.LocationBinding{Location: 3}
	var pos ir.Binding = ir.BuiltinBinding{Builtin: ir.BuiltinPosition}
	var bad ir.Binding = ir.LocationBinding{Location: 40}

	m := &ir.Module{
		Types: []ir.Type{
			{Inner: ir.ScalarType{Kind: ir.ScalarFloat, Width: 8}},
			{Inner: ir.VectorType{Size: ir.Vec4, Scalar: ir.ScalarType{Kind: ir.ScalarFloat, Width: 4}}},
			{Inner: ir.StructType{Members: []ir.StructMember{
				{Name: "pos", Type: 1, Binding: &pos},
				{Name: "v", Type: 0, Binding: &loc3},
			}}},
		},
		Functions: []ir.Function{
			{Body: ir.Block{{Kind: ir.StmtKill{}}}},
		},
		EntryPoints: []ir.EntryPoint{
			{Name: "vs", Stage: ir.StageVertex, Function: ir.Function{
				Result: &ir.FunctionResult{Type: 2},
			}},
			{Name: "bad", Stage: ir.StageVertex, Function: ir.Function{
				Arguments: []ir.FunctionArgument{{Type: 1, Binding: &bad}},
			}},
			{Name: "fs", Stage: ir.StageFragment, Function: ir.Function{
				Body: ir.Block{
					{Kind: ir.StmtCall{Function: 0}},
					{Kind: ir.StmtCall{Function: 0}},
					{Kind: ir.StmtCall{Function: 9}},
				},
			}},
		},
	}

	r, err := Gather(m, &m.EntryPoints[0])
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	want := []program.Variable{
		{Semantic: program.SemPosition, Mask: 0xf},
		{Semantic: program.SemGeneric, Index: 3, Mask: 0x1},
	}
	if !reflect.DeepEqual(r.Info.Outputs, want) {
		t.Errorf("Outputs = %+v, want %+v", r.Info.Outputs, want)
	}
	if !r.Counters.FP64 {
		t.Error("f64 type did not set FP64")
	}

	if _, err := Gather(m, &m.EntryPoints[1]); err == nil {
		t.Error("location 40 accepted")
	}

	r, err = Gather(m, &m.EntryPoints[2])
	if err != nil {
		t.Fatalf("Gather fs: %v", err)
	}
	if !r.Info.Props.UsesDiscard {
		t.Error("discard in called function not found")
	}
}

func TestComponentMask(t *testing.T) {
	f32 := ir.ScalarType{Kind: ir.ScalarFloat, Width: 4}
	m := &ir.Module{Types: []ir.Type{
		{Inner: f32},
		{Inner: ir.VectorType{Size: ir.Vec2, Scalar: f32}},
		{Inner: ir.VectorType{Size: ir.Vec3, Scalar: f32}},
		{Inner: ir.VectorType{Size: ir.Vec4, Scalar: f32}},
		{Inner: ir.MatrixType{Columns: ir.Vec2, Rows: ir.Vec2, Scalar: f32}},
	}}
	want := []uint8{0x1, 0x3, 0x7, 0xf, 0xf}
	for i, w := range want {
		if got := componentMask(m, ir.TypeHandle(i)); got != w {
			t.Errorf("type %d: mask %#x, want %#x", i, got, w)
		}
	}
	if got := componentMask(m, 99); got != 0xf {
		t.Errorf("unknown type: mask %#x, want 0xf", got)
	}
}

func TestCompileSparseColorOutputs(t *testing.T) {
	s, err := nvshader.Compile(New("sparse.wgsl", sparseColorSource, testOptions()), hw.ChipsetTU102, nvshader.DefaultOptions())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if n := s.Info.Props.NumColorResults; n != 2 {
		t.Errorf("NumColorResults = %d, want 2", n)
	}

	out := s.Slots.Outputs
	if a, _ := out[1][0].Addr(); a != 4 {
		t.Errorf("colour 2 = %#x, want 0x4", a)
	}
	if a, ok := out[2][0].Addr(); !ok || a != 8 {
		t.Errorf("sample mask = %v, want 0x8", out[2][0])
	}
	if a, ok := out[3][2].Addr(); !ok || a != 9 {
		t.Errorf("depth = %v, want 0x9", out[3][2])
	}

	// Attachments 0 and 2 are present in the output mask.
	if w := s.Header.Words[18]; w != 0xf0f {
		t.Errorf("word 18 = %#x, want 0xf0f", w)
	}
}
