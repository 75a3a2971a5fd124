// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package header

import (
	"github.com/gogpu/nvshader/program"
)

// VTG header layout.
const (
	vtgWordInputMap  = 5
	vtgWordOutputMap = 13
	vtgWordOutputCap = 4

	// vtgOutputSkip is the word address of the first output slot the map
	// covers; the tessellation factors and patch data below it are never
	// per-vertex outputs.
	vtgOutputSkip = 0x40 / 4

	// vtgProgramType is the common word 0 value; the stage goes in bits
	// 10-13.
	vtgProgramType = 0x20061

	// vtgOutputRangeEmpty is the initial parallel output read range in word 4
	// (min 0xff, max 0x00).
	vtgOutputRangeEmpty = 0xff000
)

// outputRange tracks the slots of outputs the shader reads back. It is
// empty until the first update, and an empty range leaves word 4 untouched.
type outputRange struct {
	min, max uint32
	set      bool
}

func (r *outputRange) extend(slot uint32) {
	if !r.set {
		r.min, r.max, r.set = slot, slot, true
		return
	}
	r.min = min(r.min, slot)
	r.max = max(r.max, slot)
}

func (r *outputRange) apply(b *Builder) {
	if !r.set {
		return
	}
	b.SetField(vtgWordOutputCap, 12, 8, r.min)
	b.SetField(vtgWordOutputCap, 24, 8, r.max)
}

func encodeVertex(b *Builder, p *program.Info, t *program.SlotTable, enc *Encoded) error {
	b.Set(0, vtgProgramType|1<<10)
	b.Set(vtgWordOutputCap, vtgOutputRangeEmpty)
	return encodeVTG(b, p, t, enc)
}

// encodeVTG writes the input/output maps, system value bits and clip state
// shared by all VTG stages.
func encodeVTG(b *Builder, p *program.Info, t *program.SlotTable, enc *Encoded) error {
	for i, v := range p.Inputs {
		if v.Flags.Has(program.FlagPatch) {
			continue
		}
		for _, s := range t.Inputs[i] {
			a, ok := s.Addr()
			if !ok {
				continue
			}
			b.SetBit(vtgWordInputMap+int(a/32), int(a%32))
		}
	}

	var oread outputRange
	for i, v := range p.Outputs {
		if v.Flags.Has(program.FlagPatch) {
			continue
		}
		for _, s := range t.Outputs[i] {
			slot, ok := s.Addr()
			if !ok {
				continue
			}
			if slot < vtgOutputSkip {
				return program.Errorf(program.ErrRangeOverflow, p.Stage,
					"output slot below the per-vertex output map").
					At(program.DirOutput, v).WithAddress(slot * 4)
			}
			a := slot - vtgOutputSkip
			b.SetBit(vtgWordOutputMap+int(a/32), int(a%32))
			if v.Flags.Has(program.FlagOutputRead) {
				oread.extend(slot)
			}
		}
	}

	for _, sv := range p.SysVals {
		switch sv.Semantic {
		case program.SemPrimitiveID:
			b.SetBit(5, 24)
		case program.SemInstanceID:
			b.SetBit(10, 30)
		case program.SemVertexID:
			b.SetBit(10, 31)
		case program.SemTessCoord:
			// The mask is not known here. Either coordinate being read
			// almost always means both are.
			oread.extend(0x2f0 / 4)
			oread.extend(0x2f4 / 4)
		}
	}
	oread.apply(b)

	clip, cull := p.Props.ClipDistances, p.Props.CullDistances
	if clip < 0 || cull < 0 || clip+cull > 8 {
		return program.Errorf(program.ErrRangeOverflow, p.Stage,
			"%d clip and %d cull distances exceed 8 planes", clip, cull)
	}
	nclip, ncull := uint8(clip), uint8(cull)
	enc.VTG.ClipEnable = uint8(lowMask(nclip))
	enc.VTG.CullEnable = uint8(lowMask(ncull) << nclip)
	for i := range ncull {
		enc.VTG.ClipMode |= 1 << ((nclip + i) * 4)
	}

	switch ucp := p.Props.UserClipPlanes; {
	case ucp == nil:
		enc.VTG.NumUCPs = NumUCPsDisabled
	case *ucp < 0 || *ucp > 8:
		return program.Errorf(program.ErrRangeOverflow, p.Stage,
			"%d user clip planes exceed 8", *ucp)
	default:
		enc.VTG.NumUCPs = uint8(*ucp)
	}
	enc.VTG.LayerViewportRelative = p.Props.LayerViewportRelative

	return b.Err()
}
