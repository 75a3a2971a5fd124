// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package slots

import (
	"github.com/gogpu/nvshader/hw"
	"github.com/gogpu/nvshader/program"
)

// MaxColorAttachments is the number of fragment colour outputs (MRT).
const MaxColorAttachments = 8

// CompactFragmentOutputs assigns fragment output registers. Colour outputs
// are packed by the rank of their attachment index, since skipped MRT
// positions have no registers allocated. The sample mask follows the last
// compacted colour register and depth follows it in component z.
func CompactFragmentOutputs(p *program.Info, caps hw.Caps, out []program.Slots) error {
	var present [MaxColorAttachments]bool
	for _, v := range p.Outputs {
		if v.Semantic != program.SemColor {
			continue
		}
		if int(v.Index) >= MaxColorAttachments {
			return program.Errorf(program.ErrRangeOverflow, p.Stage,
				"colour attachment %d exceeds %d", v.Index, MaxColorAttachments).
				At(program.DirOutput, v)
		}
		present[v.Index] = true
	}

	var rank [MaxColorAttachments]uint32
	next := uint32(0)
	for i, ok := range present {
		if ok {
			rank[i] = next
			next++
		}
	}

	for i, v := range p.Outputs {
		if v.Semantic != program.SemColor {
			continue
		}
		for c := range 4 {
			out[i][c] = program.SlotAt(rank[v.Index]*4 + uint32(c))
		}
	}

	if p.Props.NumColorResults < int(next) {
		return program.Errorf(program.ErrInvalidSemantic, p.Stage,
			"%d colour results reported for %d colour outputs", p.Props.NumColorResults, next)
	}

	// The sample mask and depth follow the dense colour registers.
	count := next * 4
	if p.Props.SampleMask != nil {
		i, err := outputIndex(p, *p.Props.SampleMask, "sample mask")
		if err != nil {
			return err
		}
		out[i][0] = program.SlotAt(count)
		count++
	} else if caps.ReserveSampleMaskSlot {
		count++
	}

	if p.Props.FragDepth != nil {
		i, err := outputIndex(p, *p.Props.FragDepth, "depth")
		if err != nil {
			return err
		}
		out[i][2] = program.SlotAt(count)
	}
	return nil
}

func outputIndex(p *program.Info, i int, what string) (int, error) {
	if i < 0 || i >= len(p.Outputs) {
		return 0, program.Errorf(program.ErrInvalidSemantic, p.Stage,
			"%s output index %d out of range (%d outputs)", what, i, len(p.Outputs))
	}
	return i, nil
}
