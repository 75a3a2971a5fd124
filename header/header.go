// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package header

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Header is a frozen shader header.
type Header struct {
	Words []uint32
}

// Size returns the header size in bytes.
func (h *Header) Size() int {
	if h == nil {
		return 0
	}
	return len(h.Words) * 4
}

// Bytes returns the header in the little-endian layout read by the GPU.
func (h *Header) Bytes() []byte {
	if h == nil {
		return nil
	}
	buf := make([]byte, 0, h.Size())
	for _, w := range h.Words {
		buf = binary.LittleEndian.AppendUint32(buf, w)
	}
	return buf
}

// Dump writes one line per word, addressed by byte offset.
func (h *Header) Dump(w io.Writer) error {
	for i, word := range h.Words {
		if _, err := fmt.Fprintf(w, "HDR[%02x] = 0x%08x\n", i*4, word); err != nil {
			return err
		}
	}
	return nil
}

// VTGState is the vertex/tessellation/geometry state derived alongside the
// header and programmed through separate methods at draw time.
type VTGState struct {
	ClipEnable uint8
	CullEnable uint8
	// ClipMode holds one 4-bit mode group per clip plane.
	ClipMode uint32
	// NumUCPs is the user clip plane count, or NumUCPsDisabled.
	NumUCPs               uint8
	LayerViewportRelative bool
	// TessMode is the TESS_MODE value for tessellation stages.
	TessMode uint32
}

// NumUCPsDisabled is recorded when user clip planes are disabled. It is
// larger than any real plane count so the state is always re-emitted.
const NumUCPsDisabled = 8 + 1

// FragmentState is the fragment state derived alongside the header.
type FragmentState struct {
	// Colors has bit i set when colour input i is read.
	Colors uint8
	// ColorInterp holds mode | mask<<4 for colour inputs whose
	// interpolation follows the draw-time shade model.
	ColorInterp       [2]uint8
	EarlyZ            bool
	SampleMaskIn      bool
	ReadsFramebuffer  bool
	PostDepthCoverage bool
}

// Side flag values.
const (
	// FlagDisableZCull deactivates ZCULL for shaders writing depth.
	FlagDisableZCull = 0x11
)

// Encoded is the result of header encoding.
type Encoded struct {
	// Header is nil for compute shaders.
	Header *Header
	// Flags are side flags stored next to the header.
	Flags [2]uint32

	VTG VTGState
	FS  FragmentState

	// TLSSpace is the local memory size rounded up to 16 bytes.
	TLSSpace uint32
}
