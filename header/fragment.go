// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package header

import (
	"github.com/gogpu/nvshader/hw"
	"github.com/gogpu/nvshader/program"
)

// Interpolation mode codes of the fragment input map.
const (
	InterpFlat        = 1
	InterpPerspective = 2
	InterpLinear      = 3
)

// Fragment header layout.
const (
	fsProgramType = 0x20062 | 5<<10

	fsWord0Discard       = 0x8000
	fsWord0MultipleColor = 0x4000

	// fsWord5FragCoordW is always set: the hardware traps when the w
	// component of the fragment coordinate is masked off.
	fsWord5FragCoordW = 0x80000000
	// fsWord5SampleLocations marks position xy read for sample locations.
	fsWord5SampleLocations = 0x30000000
	// fsWord5FramebufferRead marks position xy and layer read.
	fsWord5FramebufferRead = 0x32000000

	fsWordInterpMap = 4
	fsWordSystem    = 5
	fsWordClip      = 14
	fsWordColorOut  = 18
	fsWordOutputs   = 19

	fsOutputSampleMask = 0x1
	fsOutputDepth      = 0x2
)

// Word address ranges of the fragment input map.
const (
	fsSystemFirst = 0x060 / 4
	fsSystemLast  = 0x07c / 4
	fsClipFirst   = 0x2c0 / 4
	fsClipLast    = 0x2fc / 4
	fsClipOrigin  = 0x280 / 4
	fsClipMask    = 0x07ff0000
	fsInterpFirst = 0x040 / 4
	fsInterpLast  = 0x380 / 4
	fsTexCoordCut = 0x300 / 4
)

// InterpMode returns the 2-bit interpolation code of a fragment input.
func InterpMode(v program.Variable) uint8 {
	switch {
	case v.Flags.Has(program.FlagFlat):
		return InterpFlat
	case v.Flags.Has(program.FlagLinear):
		return InterpLinear
	default:
		return InterpPerspective
	}
}

func encodeFragment(b *Builder, p *program.Info, t *program.SlotTable, caps hw.Caps, enc *Encoded) error {
	props := &p.Props

	b.Set(0, fsProgramType)
	b.Set(fsWordSystem, fsWord5FragCoordW)

	if props.UsesDiscard {
		b.Or(0, fsWord0Discard)
	}
	if !props.SeparateFragData {
		b.Or(0, fsWord0MultipleColor)
	}
	if props.SampleMask != nil {
		b.Or(fsWordOutputs, fsOutputSampleMask)
	}
	if props.WritesDepth {
		b.Or(fsWordOutputs, fsOutputDepth)
		enc.Flags[0] = FlagDisableZCull
	}

	for i, v := range p.Inputs {
		m := InterpMode(v)
		if v.Semantic == program.SemColor {
			if int(v.Index) >= len(enc.FS.ColorInterp) {
				return program.Errorf(program.ErrRangeOverflow, p.Stage,
					"colour input index out of range").At(program.DirInput, v)
			}
			enc.FS.Colors |= 1 << v.Index
			if v.Flags.Has(program.FlagCentroid) {
				enc.FS.ColorInterp[v.Index] = m | (v.Mask << 4)
			}
		}

		slots := t.Inputs[i]
		base, ok := slots.Base()
		if !ok {
			continue
		}
		for _, s := range slots {
			a, ok := s.Addr()
			if !ok {
				continue
			}
			switch {
			case base >= fsSystemFirst && base <= fsSystemLast:
				b.SetBit(fsWordSystem, 24+int(a-fsSystemFirst))
			case base >= fsClipFirst && base <= fsClipLast:
				b.Or(fsWordClip, (1<<(a-fsClipOrigin))&fsClipMask)
			default:
				if a < fsInterpFirst || a > fsInterpLast {
					continue
				}
				bit := a * 2
				if base >= fsTexCoordCut {
					bit -= 32
				}
				b.Or(fsWordInterpMap+int(bit/32), uint32(m)<<(bit%32))
			}
		}
	}

	if props.ReadsSampleLocations && caps.SampleLocationsViaPosition {
		b.Or(fsWordSystem, fsWord5SampleLocations)
	}

	for _, v := range p.Outputs {
		if v.Semantic == program.SemColor {
			b.SetField(fsWordColorOut, 4*int(v.Index), 4, 0xf)
		}
	}

	// With no colour attachments the shader still has to run, and the
	// hardware only launches it when some colour output is declared.
	if props.NumColorResults == 0 && !props.WritesDepth {
		b.Or(fsWordColorOut, 0xf)
	}

	enc.FS.EarlyZ = props.EarlyFragmentTests
	enc.FS.SampleMaskIn = props.UsesSampleMaskIn
	enc.FS.ReadsFramebuffer = props.ReadsFramebuffer
	enc.FS.PostDepthCoverage = props.PostDepthCoverage

	if enc.FS.ReadsFramebuffer {
		b.Or(fsWordSystem, fsWord5FramebufferRead)
	}
	return b.Err()
}
