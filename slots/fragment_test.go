// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package slots

import (
	"errors"
	"testing"

	"github.com/gogpu/nvshader/hw"
	"github.com/gogpu/nvshader/program"
)

func colors(indices ...uint8) []program.Variable {
	vars := make([]program.Variable, len(indices))
	for i, idx := range indices {
		vars[i] = program.Variable{Semantic: program.SemColor, Index: idx, Mask: 0xf}
	}
	return vars
}

func TestCompactColorRanks(t *testing.T) {
	// Ranks follow attachment order, not declaration order.
	orders := [][]uint8{
		{0, 2, 5},
		{5, 2, 0},
		{2, 5, 0},
	}
	wantRank := map[uint8]uint32{0: 0, 2: 1, 5: 2}

	for _, order := range orders {
		p := &program.Info{
			Stage:   program.StageFragment,
			Outputs: colors(order...),
			Props:   program.Properties{NumColorResults: 3},
		}
		out := make([]program.Slots, len(p.Outputs))
		if err := CompactFragmentOutputs(p, kepler, out); err != nil {
			t.Fatalf("CompactFragmentOutputs(%v): %v", order, err)
		}
		for i, v := range p.Outputs {
			for c := range 4 {
				a, ok := out[i][c].Addr()
				want := wantRank[v.Index]*4 + uint32(c)
				if !ok || a != want {
					t.Errorf("order %v: color %d.%d = %v, want %#x", order, v.Index, c, out[i][c], want)
				}
			}
		}
	}
}

func TestCompactSampleMaskAndDepth(t *testing.T) {
	tests := []struct {
		name       string
		chipset    hw.Chipset
		sampleMask bool
		depth      bool
		wantMask   uint32
		wantDepth  uint32
	}{
		{"fermi depth only", 0x0c1, false, true, 0, 8},
		{"kepler depth only", 0x0e4, false, true, 0, 9},
		{"kepler mask and depth", 0x0e4, true, true, 8, 9},
		{"fermi mask and depth", 0x0c1, true, true, 8, 9},
		{"turing mask only", 0x164, true, false, 8, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &program.Info{
				Stage:   program.StageFragment,
				Outputs: colors(0, 1),
				Props:   program.Properties{NumColorResults: 2},
			}
			if tt.sampleMask {
				p.Outputs = append(p.Outputs, program.Variable{Semantic: program.SemSampleMask, Mask: 0x1})
				p.Props.SampleMask = program.Int(len(p.Outputs) - 1)
			}
			if tt.depth {
				p.Outputs = append(p.Outputs, program.Variable{Semantic: program.SemFragDepth, Mask: 0x4})
				p.Props.FragDepth = program.Int(len(p.Outputs) - 1)
			}

			out := make([]program.Slots, len(p.Outputs))
			if err := CompactFragmentOutputs(p, hw.Lookup(tt.chipset), out); err != nil {
				t.Fatalf("CompactFragmentOutputs: %v", err)
			}

			if tt.sampleMask {
				a, ok := out[*p.Props.SampleMask][0].Addr()
				if !ok || a != tt.wantMask {
					t.Errorf("sample mask slot = %v, want %#x", out[*p.Props.SampleMask][0], tt.wantMask)
				}
			}
			if tt.depth {
				slots := out[*p.Props.FragDepth]
				a, ok := slots[2].Addr()
				if !ok || a != tt.wantDepth {
					t.Errorf("depth slot = %v, want %#x", slots[2], tt.wantDepth)
				}
				if slots[0].Assigned() || slots[1].Assigned() || slots[3].Assigned() {
					t.Errorf("depth should only use component z, got %v", slots)
				}
				// Depth never aliases a colour register.
				if a < uint32(len(colors(0, 1)))*4 {
					t.Errorf("depth slot %#x overlaps colour registers", a)
				}
			}
		})
	}
}

func TestCompactSparseColorsWithDepth(t *testing.T) {
	// Attachments 0 and 2 occupy two registers, whatever the attachment
	// count says.
	tests := []struct {
		name       string
		numColors  int
		sampleMask bool
		wantMask   uint32
		wantDepth  uint32
	}{
		{"depth", 2, false, 0, 9},
		{"depth with attachment count", 3, false, 0, 9},
		{"mask and depth", 3, true, 8, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &program.Info{
				Stage:   program.StageFragment,
				Outputs: colors(0, 2),
				Props:   program.Properties{NumColorResults: tt.numColors},
			}
			if tt.sampleMask {
				p.Outputs = append(p.Outputs, program.Variable{Semantic: program.SemSampleMask, Mask: 0x1})
				p.Props.SampleMask = program.Int(len(p.Outputs) - 1)
			}
			p.Outputs = append(p.Outputs, program.Variable{Semantic: program.SemFragDepth, Mask: 0x4})
			p.Props.FragDepth = program.Int(len(p.Outputs) - 1)

			out := make([]program.Slots, len(p.Outputs))
			if err := CompactFragmentOutputs(p, hw.Lookup(hw.ChipsetTU102), out); err != nil {
				t.Fatalf("CompactFragmentOutputs: %v", err)
			}
			if a, _ := out[1][3].Addr(); a != 7 {
				t.Errorf("colour 2.w = %#x, want 0x7", a)
			}
			if tt.sampleMask {
				if a, ok := out[*p.Props.SampleMask][0].Addr(); !ok || a != tt.wantMask {
					t.Errorf("sample mask slot = %v, want %#x", out[*p.Props.SampleMask][0], tt.wantMask)
				}
			}
			if a, ok := out[*p.Props.FragDepth][2].Addr(); !ok || a != tt.wantDepth {
				t.Errorf("depth slot = %v, want %#x", out[*p.Props.FragDepth][2], tt.wantDepth)
			}
		})
	}
}

func TestCompactRejectsBadOutputs(t *testing.T) {
	tests := []struct {
		name string
		p    *program.Info
		kind program.ErrorKind
	}{
		{
			name: "attachment 8",
			p: &program.Info{
				Stage:   program.StageFragment,
				Outputs: colors(8),
				Props:   program.Properties{NumColorResults: 1},
			},
			kind: program.ErrRangeOverflow,
		},
		{
			name: "dangling depth index",
			p: &program.Info{
				Stage:   program.StageFragment,
				Outputs: colors(0),
				Props:   program.Properties{NumColorResults: 1, FragDepth: program.Int(4)},
			},
			kind: program.ErrInvalidSemantic,
		},
		{
			name: "colour count below outputs",
			p: &program.Info{
				Stage:   program.StageFragment,
				Outputs: colors(0, 1, 2),
				Props:   program.Properties{NumColorResults: 2},
			},
			kind: program.ErrInvalidSemantic,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := make([]program.Slots, len(tt.p.Outputs))
			err := CompactFragmentOutputs(tt.p, kepler, out)
			if !errors.Is(err, &program.Error{Kind: tt.kind}) {
				t.Errorf("error = %v, want %v", err, tt.kind)
			}
		})
	}
}

func TestAssignFragmentUsesCompaction(t *testing.T) {
	p := &program.Info{
		Stage: program.StageFragment,
		Inputs: []program.Variable{
			{Semantic: program.SemGeneric, Index: 1, Mask: 0xf},
		},
		Outputs: colors(3),
		Props:   program.Properties{NumColorResults: 1},
	}
	table, err := Assign(p, kepler)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if a, _ := table.Inputs[0][0].Addr(); a != 0x90/4 {
		t.Errorf("generic 1 input = %#x, want %#x", a, 0x90/4)
	}
	if a, _ := table.Outputs[0][0].Addr(); a != 0 {
		t.Errorf("colour 3 output = %#x, want 0", a)
	}
}
