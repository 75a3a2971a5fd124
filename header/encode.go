// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package header

import (
	"github.com/gogpu/nvshader/hw"
	"github.com/gogpu/nvshader/program"
)

// Header word 0 bits shared by all stages.
const (
	word0GlobalWrite = 1 << 16
	word0LocalMemory = 1 << 26
	word0FP64        = 1 << 27
)

// Encode builds the header and derived state of a slot-assigned program.
// Counters add the local memory, global access and FP64 bits.
func Encode(p *program.Info, table *program.SlotTable, caps hw.Caps, c program.Counters) (*Encoded, error) {
	tls, err := alignTLS(p.Stage, c.TLSSpace)
	if err != nil {
		return nil, err
	}

	enc := &Encoded{TLSSpace: tls}
	if !p.Stage.HasHeader() {
		return enc, nil
	}

	b := NewBuilder(caps, p.Stage)
	switch p.Stage {
	case program.StageVertex:
		err = encodeVertex(b, p, table, enc)
	case program.StageTessCtrl:
		err = encodeTessCtrl(b, p, table, caps, enc)
	case program.StageTessEval:
		err = encodeTessEval(b, p, table, enc)
	case program.StageGeometry:
		err = encodeGeometry(b, p, table, enc)
	case program.StageFragment:
		err = encodeFragment(b, p, table, caps, enc)
	default:
		err = program.Errorf(program.ErrInvalidSemantic, p.Stage, "no header layout for stage %d", p.Stage)
	}
	if err != nil {
		return nil, err
	}

	if tls != 0 {
		b.Or(0, word0LocalMemory)
		b.Or(1, tls)
	}
	if c.GlobalAccess != 0 {
		b.Or(0, word0LocalMemory)
	}
	if c.GlobalAccess&program.GlobalWrite != 0 {
		b.Or(0, word0GlobalWrite)
	}
	if c.FP64 {
		b.Or(0, word0FP64)
	}
	if err := b.Err(); err != nil {
		return nil, err
	}

	enc.Header = b.Header()
	return enc, nil
}

// alignTLS rounds the local memory size up to 16 bytes and checks it
// against the hardware limit.
func alignTLS(stage program.Stage, size uint32) (uint32, error) {
	if size >= hw.MaxTLSSpace {
		return 0, program.Errorf(program.ErrResourceLimit, stage,
			"local memory of %d bytes exceeds the %d byte limit", size, hw.MaxTLSSpace).
			WithAddress(size)
	}
	return (size + 0xf) &^ 0xf, nil
}
