// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package codegen defines the boundary to the code generator that turns a
// shader into machine code.
//
// The generator owns parsing, lowering, instruction selection and register
// allocation. It reports the program's I/O description together with the
// code and resource counters; the nvshader package then assigns slots and
// encodes the hardware header.
package codegen

import (
	"fmt"

	"github.com/gogpu/nvshader/hw"
	"github.com/gogpu/nvshader/program"
)

// Target selects the hardware and optimization settings for one
// generation.
type Target struct {
	Chipset    hw.Chipset
	OptLevel   int
	DebugFlags uint32
}

// Result is the output of a code generator run.
type Result struct {
	Info     program.Info
	Code     []byte
	Counters program.Counters
}

// Generator produces code and I/O information for a shader.
type Generator interface {
	Generate(t Target) (*Result, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(t Target) (*Result, error)

// Generate calls f(t).
func (f GeneratorFunc) Generate(t Target) (*Result, error) {
	return f(t)
}

// Pass post-processes a generator result.
type Pass struct {
	Name string
	// MinOptLevel is the lowest Target.OptLevel at which the pass runs.
	MinOptLevel int
	Run         func(r *Result, t Target) error
}

// WithPasses returns a generator that runs gen and then every pass enabled
// at the target's optimization level, in order.
func WithPasses(gen Generator, passes ...Pass) Generator {
	return GeneratorFunc(func(t Target) (*Result, error) {
		r, err := gen.Generate(t)
		if err != nil {
			return nil, err
		}
		for _, p := range passes {
			if t.OptLevel < p.MinOptLevel {
				continue
			}
			if err := p.Run(r, t); err != nil {
				return nil, fmt.Errorf("pass %s: %w", p.Name, err)
			}
		}
		return r, nil
	})
}

// DefaultPasses are the result checks every generator output goes through.
func DefaultPasses() []Pass {
	return []Pass{
		{Name: "stamp-chipset", Run: stampChipset},
		{Name: "check-code", Run: checkCode},
		{Name: "check-counters", Run: checkCounters},
		{Name: "drop-inactive", MinOptLevel: 1, Run: dropInactive},
	}
}

func stampChipset(r *Result, t Target) error {
	r.Info.Chipset = t.Chipset
	return nil
}

// checkCode rejects code that is not a whole number of 32-bit
// instruction words.
func checkCode(r *Result, _ Target) error {
	if len(r.Code)%4 != 0 {
		return fmt.Errorf("code size %d is not a multiple of 4", len(r.Code))
	}
	return nil
}

func checkCounters(r *Result, _ Target) error {
	if r.Counters.MaxGPR < 0 {
		return fmt.Errorf("negative register count %d", r.Counters.MaxGPR)
	}
	if r.Counters.NumBarriers < 0 {
		return fmt.Errorf("negative barrier count %d", r.Counters.NumBarriers)
	}
	return nil
}

// dropInactive removes inputs and system values with no active
// component. Outputs are kept because the fragment properties refer to
// them by index, and vertex inputs are kept because attributes are bound
// by declaration position.
func dropInactive(r *Result, _ Target) error {
	if r.Info.Stage != program.StageVertex {
		r.Info.Inputs = filterActive(r.Info.Inputs)
	}
	r.Info.SysVals = filterActive(r.Info.SysVals)
	return nil
}

func filterActive(vars []program.Variable) []program.Variable {
	var out []program.Variable
	for _, v := range vars {
		if v.Mask != 0 {
			out = append(out, v)
		}
	}
	return out
}
