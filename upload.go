// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package nvshader

import (
	"fmt"
)

// Upload sizing. The slack covers the instruction prefetch past the end
// of the code.
const (
	UploadSlack     = 4096
	UploadAlignment = 256
)

// Allocator provides GPU-visible memory for shader images.
type Allocator interface {
	// Alloc returns a mapping of at least size bytes at a GPU address
	// aligned to align.
	Alloc(size, align uint64) (mem []byte, addr uint64, err error)
}

// Upload copies the shader image into memory from the allocator and
// returns its GPU address. The header starts at the returned address and
// the code follows it.
func Upload(s *Shader, a Allocator) (uint64, error) {
	img := s.Image()
	size := uint64(len(img)) + UploadSlack
	mem, addr, err := a.Alloc(size, UploadAlignment)
	if err != nil {
		return 0, fmt.Errorf("upload %s shader: %w", s.Info.Stage, err)
	}
	if uint64(len(mem)) < size {
		return 0, fmt.Errorf("upload %s shader: allocator returned %d bytes, need %d",
			s.Info.Stage, len(mem), size)
	}
	if addr%UploadAlignment != 0 {
		return 0, fmt.Errorf("upload %s shader: address %#x is not %d-byte aligned",
			s.Info.Stage, addr, UploadAlignment)
	}
	copy(mem, img)
	return addr, nil
}
