// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package slots

import "github.com/gogpu/nvshader/program"

// ComponentStride is the byte distance between consecutive components of
// one variable.
const ComponentStride = 0x4

// entry is one row of the semantic address table.
type entry struct {
	base   uint32
	stride uint32
	// count bounds the semantic index; 0 means the semantic is not indexed.
	count uint8
	// present is false for semantics without an address in this direction.
	present bool
	// noAddress marks semantics that exist but have no varying address
	// (edge flag output).
	noAddress bool
}

func fixed(base uint32) entry {
	return entry{base: base, present: true}
}

func indexed(base, stride uint32, count uint8) entry {
	return entry{base: base, stride: stride, count: count, present: true}
}

// Note: using a[0x270] in fragment shaders may fault even with fewer than
// 124 scalar varyings in use.
var inputTable = func() (t [256]entry) {
	t[program.SemTessOuter] = indexed(0x000, 0x4, 4)
	t[program.SemTessInner] = indexed(0x010, 0x4, 2)
	t[program.SemPatch] = indexed(0x020, 0x10, 4)
	t[program.SemPrimitiveID] = fixed(0x060)
	t[program.SemLayer] = fixed(0x064)
	t[program.SemViewportIndex] = fixed(0x068)
	t[program.SemPointSize] = fixed(0x06c)
	t[program.SemPosition] = fixed(0x070)
	t[program.SemGeneric] = indexed(0x080, 0x10, 32)
	t[program.SemFog] = fixed(0x2e8)
	t[program.SemColor] = indexed(0x280, 0x10, 2)
	t[program.SemBackColor] = indexed(0x2a0, 0x10, 2)
	t[program.SemClipDist] = indexed(0x2c0, 0x10, 2)
	t[program.SemClipVertex] = fixed(0x270)
	t[program.SemPointCoord] = fixed(0x2e0)
	t[program.SemTessCoord] = fixed(0x2f0)
	t[program.SemInstanceID] = fixed(0x2f8)
	t[program.SemVertexID] = fixed(0x2fc)
	t[program.SemTexCoord] = indexed(0x300, 0x10, 8)
	return t
}()

var outputTable = func() (t [256]entry) {
	t[program.SemTessOuter] = indexed(0x000, 0x4, 4)
	t[program.SemTessInner] = indexed(0x010, 0x4, 2)
	t[program.SemPatch] = indexed(0x020, 0x10, 4)
	t[program.SemPrimitiveID] = fixed(0x060)
	t[program.SemLayer] = fixed(0x064)
	t[program.SemViewportIndex] = fixed(0x068)
	t[program.SemPointSize] = fixed(0x06c)
	t[program.SemPosition] = fixed(0x070)
	t[program.SemGeneric] = indexed(0x080, 0x10, 32)
	t[program.SemFog] = fixed(0x2e8)
	t[program.SemColor] = indexed(0x280, 0x10, 2)
	t[program.SemBackColor] = indexed(0x2a0, 0x10, 2)
	t[program.SemClipDist] = indexed(0x2c0, 0x10, 2)
	t[program.SemClipVertex] = fixed(0x270)
	t[program.SemTexCoord] = indexed(0x300, 0x10, 8)
	t[program.SemViewportMask] = fixed(0x3a0)
	t[program.SemEdgeFlag] = entry{present: true, noAddress: true}
	return t
}()

// InputAddress returns the byte address of an input semantic.
func InputAddress(sem program.Semantic, index uint8) (uint32, error) {
	return lookup(&inputTable, program.DirInput, sem, index)
}

// OutputAddress returns the byte address of an output semantic.
func OutputAddress(sem program.Semantic, index uint8) (uint32, error) {
	return lookup(&outputTable, program.DirOutput, sem, index)
}

// Address returns the byte address of a semantic in the given direction.
func Address(dir program.Direction, sem program.Semantic, index uint8) (uint32, error) {
	if dir == program.DirOutput {
		return OutputAddress(sem, index)
	}
	return InputAddress(sem, index)
}

// lookup returns a *program.Error without stage context; callers that know
// the stage fill it in.
func lookup(t *[256]entry, dir program.Direction, sem program.Semantic, index uint8) (uint32, error) {
	e := t[sem]
	v := program.Variable{Semantic: sem, Index: index}
	if !e.present {
		return 0, program.Errorf(program.ErrInvalidSemantic, 0,
			"no %s address for semantic %s", dir, sem).At(dir, v)
	}
	if e.noAddress {
		return 0, program.Errorf(program.ErrInvalidSemantic, 0,
			"semantic %s has no varying address", sem).At(dir, v)
	}
	if e.count == 0 {
		// Non-indexed semantics ignore the index.
		return e.base, nil
	}
	if index >= e.count {
		return 0, program.Errorf(program.ErrRangeOverflow, 0,
			"index %d exceeds %d %s slots", index, e.count, sem).At(dir, v).
			WithAddress(e.base + uint32(index)*e.stride)
	}
	return e.base + uint32(index)*e.stride, nil
}
