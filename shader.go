// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package nvshader

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/gogpu/nvshader/header"
	"github.com/gogpu/nvshader/program"
)

// Shader is a compiled shader ready for upload.
type Shader struct {
	// Info is the I/O description reported by the code generator.
	Info program.Info

	// Slots holds the hardware address of every input and output
	// component.
	Slots *program.SlotTable

	// Header is the shader program header, nil for compute shaders.
	Header *header.Header

	// Flags are side flags stored next to the header.
	Flags [2]uint32

	VTG header.VTGState
	FS  header.FragmentState

	// Code is the machine code.
	Code []byte

	NumGPRs     int
	NumBarriers int

	// TLSSpace is the per-thread local memory size, aligned to 16 bytes.
	TLSSpace     uint32
	SharedMemory uint32

	// Workgroup is the compute workgroup size.
	Workgroup [3]uint32
}

// Stage returns the shader stage.
func (s *Shader) Stage() program.Stage {
	return s.Info.Stage
}

// HeaderSize returns the header size in bytes: 0x50 or 0x80 depending on
// the hardware generation, 0 for compute shaders.
func (s *Shader) HeaderSize() int {
	return s.Header.Size()
}

// NeedsTLS reports whether the shader uses per-thread local memory.
func (s *Shader) NeedsTLS() bool {
	return s.TLSSpace > 0
}

// Image returns the bytes to upload: the little-endian header directly
// followed by the code.
func (s *Shader) Image() []byte {
	img := make([]byte, 0, s.HeaderSize()+len(s.Code))
	img = append(img, s.Header.Bytes()...)
	return append(img, s.Code...)
}

// Dump writes the header words and the code, eight words per line.
func (s *Shader) Dump(w io.Writer) error {
	if s.Header != nil {
		if _, err := fmt.Fprintf(w, "dumping HDR for %s shader\n", s.Info.Stage); err != nil {
			return err
		}
		if err := s.Header.Dump(w); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "shader binary code (%#x bytes):\n", len(s.Code)); err != nil {
		return err
	}

	var line []string
	for pos := 0; pos+4 <= len(s.Code); pos += 4 {
		line = append(line, fmt.Sprintf("%08x", binary.LittleEndian.Uint32(s.Code[pos:])))
		if len(line) == 8 {
			if _, err := fmt.Fprintln(w, strings.Join(line, " ")); err != nil {
				return err
			}
			line = line[:0]
		}
	}
	if len(line) > 0 {
		if _, err := fmt.Fprintln(w, strings.Join(line, " ")); err != nil {
			return err
		}
	}
	return nil
}
