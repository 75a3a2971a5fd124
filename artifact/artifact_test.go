// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package artifact

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/gogpu/nvshader"
	"github.com/gogpu/nvshader/codegen/desc"
	"github.com/gogpu/nvshader/hw"
)

func compile(t *testing.T, src string, chipset hw.Chipset) *nvshader.Shader {
	t.Helper()
	gen, err := desc.Parse([]byte(src))
	if err != nil {
		t.Fatalf("desc.Parse: %v", err)
	}
	s, err := nvshader.Compile(gen, chipset, nvshader.DefaultOptions())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return s
}

const vertexDesc = `
stage = "vertex"
code = "0102030405060708"

[counters]
max_gpr = 7

[props]
clip_distances = 2

[[inputs]]
semantic = "generic"
mask = 0x7

[[outputs]]
semantic = "position"

[[outputs]]
semantic = "clip_dist"
mask = 0x3
`

func TestRoundTrip(t *testing.T) {
	s := compile(t, vertexDesc, hw.ChipsetGM200)
	want := FromShader("vs", s)

	data, err := MarshalShader("vs", s)
	if err != nil {
		t.Fatalf("MarshalShader: %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", got, want)
	}
	if !bytes.Equal(got.Image(), s.Image()) {
		t.Errorf("record image differs from shader image")
	}
}

func TestFromShaderSlots(t *testing.T) {
	r := FromShader("vs", compile(t, vertexDesc, hw.ChipsetGM200))

	if r.Stage != "vertex" || r.Chipset != hw.ChipsetGM200 || r.NumGPRs != 8 {
		t.Errorf("record = %+v", r)
	}
	if len(r.Header) != 20 {
		t.Errorf("len(Header) = %d, want 20", len(r.Header))
	}
	if r.Inputs[0].Slots != [4]int32{0x20, 0x21, 0x22, -1} {
		t.Errorf("input slots = %v", r.Inputs[0].Slots)
	}
	if r.Outputs[1].Semantic != "clip_dist" || r.Outputs[1].Slots != [4]int32{0xb0, 0xb1, -1, -1} {
		t.Errorf("clip distance output = %+v", r.Outputs[1])
	}
	if r.VTG.ClipEnable != 0x3 {
		t.Errorf("ClipEnable = %#x", r.VTG.ClipEnable)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	s := compile(t, vertexDesc, hw.ChipsetTU102)
	a, err := MarshalShader("vs", s)
	if err != nil {
		t.Fatal(err)
	}
	b, err := MarshalShader("vs", compile(t, vertexDesc, hw.ChipsetTU102))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("encoding is not deterministic")
	}
}

func TestCompute(t *testing.T) {
	s := compile(t, "stage = \"compute\"\ncode = \"00000000\"\n[props]\nworkgroup = [32, 1, 1]\n", hw.ChipsetGA102)
	data, err := MarshalShader("cs", s)
	if err != nil {
		t.Fatal(err)
	}
	r, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if r.Header != nil || r.Workgroup != [3]uint32{32, 1, 1} || len(r.Image()) != 4 {
		t.Errorf("record = %+v", r)
	}
}

func TestUnmarshalErrors(t *testing.T) {
	good := FromShader("vs", compile(t, vertexDesc, hw.ChipsetGK104))

	tests := []struct {
		name   string
		mutate func(r *Record)
		want   string
	}{
		{"version", func(r *Record) { r.Version = 2 }, "version"},
		{"stage", func(r *Record) { r.Stage = "mesh" }, "unknown stage"},
		{"header size", func(r *Record) { r.Chipset = hw.ChipsetTU102 }, "header"},
		{"compute header", func(r *Record) { r.Stage = "compute" }, "compute"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := *good
			tt.mutate(&r)
			data, err := Marshal(&r)
			if err != nil {
				t.Fatal(err)
			}
			_, err = Unmarshal(data)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want mention of %q", err, tt.want)
			}
		})
	}

	if _, err := Unmarshal([]byte{0xff, 0x00}); err == nil {
		t.Error("garbage accepted")
	}
}
