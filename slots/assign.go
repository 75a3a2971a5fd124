// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package slots

import (
	"errors"

	"github.com/gogpu/nvshader/hw"
	"github.com/gogpu/nvshader/program"
)

const (
	// vertexInputBase is the byte address of the first positional vertex
	// attribute.
	vertexInputBase = 0x80
	// vertexInputStride is the byte distance between vertex attributes.
	vertexInputStride = 0x10
)

// Assign computes the slot table of a program. Compute programs get an
// empty table.
func Assign(p *program.Info, caps hw.Caps) (*program.SlotTable, error) {
	table := program.NewSlotTable(p)
	if p.Stage == program.StageCompute {
		return table, nil
	}

	var err error
	if p.Stage == program.StageVertex {
		err = assignVertexInputs(p, table.Inputs)
	} else {
		err = assignGeneral(p, program.DirInput, table.Inputs)
	}
	if err != nil {
		return nil, withStage(err, p.Stage)
	}

	if p.Stage == program.StageFragment {
		err = CompactFragmentOutputs(p, caps, table.Outputs)
	} else {
		err = assignGeneral(p, program.DirOutput, table.Outputs)
	}
	if err != nil {
		return nil, withStage(err, p.Stage)
	}
	return table, nil
}

// assignVertexInputs binds vertex attributes by declaration order. Instance
// and vertex IDs keep their dedicated addresses and do not consume an
// attribute position.
func assignVertexInputs(p *program.Info, out []program.Slots) error {
	n := uint32(0)
	for i, v := range p.Inputs {
		switch v.Semantic {
		case program.SemInstanceID, program.SemVertexID:
			a, err := InputAddress(v.Semantic, 0)
			if err != nil {
				return err
			}
			out[i][0] = program.SlotAt(a / 4)
			continue
		}
		for c := range 4 {
			if v.Active(c) {
				out[i][c] = program.SlotAt((vertexInputBase + n*vertexInputStride + uint32(c)*ComponentStride) / 4)
			}
		}
		n++
	}
	return nil
}

// assignGeneral maps every active component to its semantic table address.
func assignGeneral(p *program.Info, dir program.Direction, out []program.Slots) error {
	for i, v := range p.Vars(dir) {
		if v.Mask == 0 {
			continue
		}
		a, err := Address(dir, v.Semantic, v.Index)
		if err != nil {
			return err
		}
		for c := range 4 {
			if v.Active(c) {
				out[i][c] = program.SlotAt((a + uint32(c)*ComponentStride) / 4)
			}
		}
	}
	return nil
}

func withStage(err error, stage program.Stage) error {
	var perr *program.Error
	if errors.As(err, &perr) {
		perr.Stage = stage
	}
	return err
}
