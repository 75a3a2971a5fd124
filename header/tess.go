// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package header

import (
	"github.com/gogpu/nvshader/hw"
	"github.com/gogpu/nvshader/program"
)

// TESS_MODE values.
const (
	TessModePrimIsolines  = 0x0
	TessModePrimTriangles = 0x1
	TessModePrimQuads     = 0x2

	TessModeSpacingEqual          = 0x00
	TessModeSpacingFractionalOdd  = 0x10
	TessModeSpacingFractionalEven = 0x20

	TessModeCW        = 0x100
	TessModeConnected = 0x200

	// TessModeInvalid is recorded when the program does not define a
	// tessellation domain.
	TessModeInvalid = 0xffffffff
)

const maxGeometryInstances = 32

func encodeTessCtrl(b *Builder, p *program.Info, t *program.SlotTable, caps hw.Caps, enc *Encoded) error {
	// Output patch constants: at least the tessellation factors.
	opcs := uint32(6)
	if p.Props.NumPatchConstants > 0 {
		opcs = 8 + uint32(p.Props.NumPatchConstants)*4
	}
	if opcs > 0xff {
		return program.Errorf(program.ErrRangeOverflow, p.Stage,
			"%d patch constants exceed the header field", p.Props.NumPatchConstants)
	}

	b.Set(0, vtgProgramType|2<<10)
	b.SetField(1, 24, 8, opcs)
	b.SetField(2, 24, 8, uint32(p.Props.OutputPatchSize))
	b.Set(vtgWordOutputCap, vtgOutputRangeEmpty)

	if err := encodeVTG(b, p, t, enc); err != nil {
		return err
	}

	if caps.SplitPatchConstantCount {
		// The high nibble sits between the min and max of the output
		// read range, so it goes in after the outputs.
		b.SetField(3, 28, 4, opcs&0x0f)
		b.Or(vtgWordOutputCap, (opcs&0xf0)<<16)
	}

	enc.VTG.TessMode = tessMode(p.Props)
	return b.Err()
}

func encodeTessEval(b *Builder, p *program.Info, t *program.SlotTable, enc *Encoded) error {
	b.Set(0, vtgProgramType|3<<10)
	b.Set(vtgWordOutputCap, vtgOutputRangeEmpty)

	if err := encodeVTG(b, p, t, enc); err != nil {
		return err
	}

	enc.VTG.TessMode = tessMode(p.Props)
	b.Or(18, 0x3<<12)
	return b.Err()
}

func encodeGeometry(b *Builder, p *program.Info, t *program.SlotTable, enc *Encoded) error {
	b.Set(0, vtgProgramType|4<<10)
	b.SetField(2, 24, 8, uint32(min(max(p.Props.GeometryInstances, 0), maxGeometryInstances)))

	switch p.Props.GeometryOutputPrim {
	case program.PrimPoints:
		b.Set(3, 0x01000000)
		b.Or(0, 0xf0000000)
	case program.PrimLineStrip:
		b.Set(3, 0x06000000)
		b.Or(0, 0x10000000)
	case program.PrimTriangleStrip:
		b.Set(3, 0x07000000)
		b.Or(0, 0x10000000)
	default:
		return program.Errorf(program.ErrInvalidSemantic, p.Stage,
			"unsupported geometry output primitive %d", p.Props.GeometryOutputPrim)
	}

	b.Set(vtgWordOutputCap, uint32(min(max(p.Props.GeometryMaxVertices, 1), 1024)))

	return encodeVTG(b, p, t, enc)
}

// tessMode derives the TESS_MODE state of a tessellation stage.
func tessMode(props program.Properties) uint32 {
	if props.TessOutputPrim == program.PrimNone {
		return TessModeInvalid
	}

	var mode uint32
	switch props.TessDomain {
	case program.TessDomainIsolines:
		mode = TessModePrimIsolines
	case program.TessDomainTriangles:
		mode = TessModePrimTriangles
	case program.TessDomainQuads:
		mode = TessModePrimQuads
	default:
		return TessModeInvalid
	}

	// Isolines want the CW bit to mark connected lines; the CONNECTED bit
	// is rejected for them.
	if props.TessOutputPrim != program.PrimPoints {
		if props.TessDomain == program.TessDomainIsolines {
			mode |= TessModeCW
		} else {
			mode |= TessModeConnected
		}
	}

	// Clockwise winding sets CW for every output primitive, points
	// included.
	if props.TessClockwise {
		mode |= TessModeCW
	}

	switch props.TessSpacing {
	case program.TessSpacingFractionalOdd:
		mode |= TessModeSpacingFractionalOdd
	case program.TessSpacingFractionalEven:
		mode |= TessModeSpacingFractionalEven
	default:
		mode |= TessModeSpacingEqual
	}
	return mode
}
