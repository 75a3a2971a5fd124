// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package header

import (
	"golang.org/x/exp/constraints"

	"github.com/gogpu/nvshader/hw"
	"github.com/gogpu/nvshader/program"
)

// Builder accumulates header words for one shader.
//
// Writes outside the generation's header size or outside a 32-bit word are
// not applied. The first such write is reported by Err as an
// ErrRangeOverflow, so encoders can issue a run of writes and check once.
type Builder struct {
	words [hw.MaxHeaderWords]uint32
	n     int
	stage program.Stage
	err   error
}

// NewBuilder returns an empty builder sized for the given generation.
func NewBuilder(caps hw.Caps, stage program.Stage) *Builder {
	return &Builder{n: caps.HeaderWords(), stage: stage}
}

// Len returns the header size in words.
func (b *Builder) Len() int {
	return b.n
}

// Set replaces a whole word.
func (b *Builder) Set(word int, v uint32) {
	if b.check(word, 0, 32) {
		b.words[word] = v
	}
}

// Or sets the bits of v in a word.
func (b *Builder) Or(word int, v uint32) {
	if b.check(word, 0, 32) {
		b.words[word] |= v
	}
}

// SetBit sets a single bit.
func (b *Builder) SetBit(word, bit int) {
	if b.check(word, bit, 1) {
		b.words[word] |= 1 << bit
	}
}

// SetField replaces a width-bit field at bit offset off. Bits of v above
// width are dropped.
func (b *Builder) SetField(word, off, width int, v uint32) {
	if !b.check(word, off, width) {
		return
	}
	m := lowMask(width) << off
	b.words[word] = b.words[word]&^m | (v<<off)&m
}

// Word returns a word, or 0 when out of range.
func (b *Builder) Word(word int) uint32 {
	if word < 0 || word >= b.n {
		return 0
	}
	return b.words[word]
}

// Field reads a width-bit field at bit offset off.
func (b *Builder) Field(word, off, width int) uint32 {
	if off < 0 || off >= 32 {
		return 0
	}
	return b.Word(word) >> off & lowMask(width)
}

// Err returns the first out-of-range write, if any.
func (b *Builder) Err() error {
	return b.err
}

// Header freezes the accumulated words into a Header.
func (b *Builder) Header() *Header {
	words := make([]uint32, b.n)
	copy(words, b.words[:b.n])
	return &Header{Words: words}
}

func (b *Builder) check(word, off, width int) bool {
	if word >= 0 && word < b.n && off >= 0 && width > 0 && off+width <= 32 {
		return true
	}
	if b.err == nil {
		b.err = program.Errorf(program.ErrRangeOverflow, b.stage,
			"header write word %d bits [%d,%d) outside %d-word header", word, off, off+width, b.n).
			WithAddress(uint32(max(word, 0)*32 + max(off, 0)))
	}
	return false
}

// lowMask returns a mask with the low n bits set.
func lowMask[T constraints.Integer](n T) uint32 {
	if n >= 32 {
		return ^uint32(0)
	}
	if n <= 0 {
		return 0
	}
	return 1<<uint(n) - 1
}
