// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package wgslgen

import (
	"github.com/gogpu/naga/ir"

	"github.com/gogpu/nvshader/codegen"
	"github.com/gogpu/nvshader/program"
)

// scanner walks the statements reachable from an entry point. Entry point
// bodies are held inline, so only called functions are tracked by handle.
type scanner struct {
	m       *ir.Module
	r       *codegen.Result
	visited map[ir.FunctionHandle]bool
}

// scanCounters fills the discard, barrier, global memory and FP64 figures.
func scanCounters(m *ir.Module, entry *ir.Function, r *codegen.Result) {
	s := scanner{m: m, r: r, visited: make(map[ir.FunctionHandle]bool)}
	s.block(entry, entry.Body)

	for _, gv := range m.GlobalVariables {
		if gv.Space == ir.SpaceStorage {
			r.Counters.GlobalAccess |= program.GlobalRead
		}
	}
	for _, t := range m.Types {
		if usesFP64(t.Inner) {
			r.Counters.FP64 = true
			break
		}
	}
}

func (s *scanner) function(h ir.FunctionHandle) {
	if s.visited[h] || int(h) >= len(s.m.Functions) {
		return
	}
	s.visited[h] = true
	fn := &s.m.Functions[h]
	s.block(fn, fn.Body)
}

func (s *scanner) block(fn *ir.Function, b ir.Block) {
	for _, st := range b {
		switch k := st.Kind.(type) {
		case ir.StmtKill:
			s.r.Info.Props.UsesDiscard = true
		case ir.StmtBarrier:
			// All workgroup barriers share hardware barrier 0.
			s.r.Counters.NumBarriers = 1
		case ir.StmtStore:
			s.store(fn, k.Pointer)
		case ir.StmtAtomic:
			s.store(fn, k.Pointer)
		case ir.StmtBlock:
			s.block(fn, k.Block)
		case ir.StmtIf:
			s.block(fn, k.Accept)
			s.block(fn, k.Reject)
		case ir.StmtSwitch:
			for _, c := range k.Cases {
				s.block(fn, c.Body)
			}
		case ir.StmtLoop:
			s.block(fn, k.Body)
			s.block(fn, k.Continuing)
		case ir.StmtCall:
			s.function(k.Function)
		}
	}
}

// store records a global write when the pointer is rooted in a storage
// buffer.
func (s *scanner) store(fn *ir.Function, ptr ir.ExpressionHandle) {
	for int(ptr) < len(fn.Expressions) {
		switch e := fn.Expressions[ptr].Kind.(type) {
		case ir.ExprAccess:
			ptr = e.Base
		case ir.ExprAccessIndex:
			ptr = e.Base
		case ir.ExprGlobalVariable:
			if int(e.Variable) < len(s.m.GlobalVariables) &&
				s.m.GlobalVariables[e.Variable].Space == ir.SpaceStorage {
				s.r.Counters.GlobalAccess |= program.GlobalRead | program.GlobalWrite
			}
			return
		default:
			return
		}
	}
}

func usesFP64(t ir.TypeInner) bool {
	switch t := t.(type) {
	case ir.ScalarType:
		return t.Kind == ir.ScalarFloat && t.Width == 8
	case ir.VectorType:
		return usesFP64(t.Scalar)
	case ir.MatrixType:
		return usesFP64(t.Scalar)
	}
	return false
}
