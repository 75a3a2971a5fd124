// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package wgslgen implements a code generator front end for WGSL shaders.
//
// The shader is parsed, lowered and validated by naga. The entry point's
// bindings are gathered into a program I/O description and the module is
// emitted as SPIR-V, which is carried as the code payload.
package wgslgen

import (
	"fmt"
	"sort"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/spirv"

	"github.com/gogpu/nvshader/codegen"
	"github.com/gogpu/nvshader/program"
)

// Options configures the WGSL front end.
type Options struct {
	// EntryPoint selects the entry point by name. It may be empty when
	// the module has exactly one.
	EntryPoint string

	// MaxGPR is reported as the register count, since SPIR-V code is not
	// register allocated.
	MaxGPR int

	// SPIRVVersion is the version of the emitted SPIR-V payload.
	SPIRVVersion spirv.Version

	// Validate enables IR validation before gathering.
	Validate bool
}

// DefaultOptions returns options for the sole entry point of a module.
func DefaultOptions() Options {
	return Options{SPIRVVersion: spirv.Version1_3, Validate: true}
}

// Generator compiles one WGSL entry point.
type Generator struct {
	name   string
	source string
	opts   Options
}

// New returns a generator for WGSL source. The name is used in error
// messages.
func New(name, source string, opts Options) *Generator {
	return &Generator{name: name, source: source, opts: opts}
}

// Name returns the generator name.
func (g *Generator) Name() string {
	return g.name
}

// Generate compiles the entry point. DebugFlags != 0 keeps debug names in
// the SPIR-V payload.
func (g *Generator) Generate(t codegen.Target) (*codegen.Result, error) {
	ast, err := naga.Parse(g.source)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", g.name, err)
	}
	module, err := naga.LowerWithSource(ast, g.source)
	if err != nil {
		return nil, fmt.Errorf("%s: lowering error: %w", g.name, err)
	}
	if g.opts.Validate {
		verrs, err := naga.Validate(module)
		if err != nil {
			return nil, fmt.Errorf("%s: validation error: %w", g.name, err)
		}
		if len(verrs) > 0 {
			return nil, fmt.Errorf("%s: validation failed: %w", g.name, &verrs[0])
		}
	}

	ep, err := g.entryPoint(module)
	if err != nil {
		return nil, err
	}
	r, err := Gather(module, ep)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", g.name, err)
	}
	r.Counters.MaxGPR = g.opts.MaxGPR

	r.Code, err = naga.GenerateSPIRV(module, spirv.Options{
		Version: g.opts.SPIRVVersion,
		Debug:   t.DebugFlags != 0,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", g.name, err)
	}
	return r, nil
}

func (g *Generator) entryPoint(m *ir.Module) (*ir.EntryPoint, error) {
	if g.opts.EntryPoint == "" {
		if len(m.EntryPoints) != 1 {
			return nil, fmt.Errorf("%s: %d entry points, select one by name", g.name, len(m.EntryPoints))
		}
		return &m.EntryPoints[0], nil
	}
	for i := range m.EntryPoints {
		if m.EntryPoints[i].Name == g.opts.EntryPoint {
			return &m.EntryPoints[i], nil
		}
	}
	return nil, fmt.Errorf("%s: no entry point %q", g.name, g.opts.EntryPoint)
}

// binding is one flattened entry point binding.
type binding struct {
	b  ir.Binding
	ty ir.TypeHandle
}

// Gather builds the I/O description and counters of an entry point.
func Gather(m *ir.Module, ep *ir.EntryPoint) (*codegen.Result, error) {
	fn := &ep.Function

	r := &codegen.Result{}
	switch ep.Stage {
	case ir.StageVertex:
		r.Info.Stage = program.StageVertex
	case ir.StageFragment:
		r.Info.Stage = program.StageFragment
		r.Info.Props.SeparateFragData = true
	case ir.StageCompute:
		r.Info.Stage = program.StageCompute
		r.Info.Props.Workgroup = ep.Workgroup
	default:
		return nil, fmt.Errorf("entry point %q: unsupported stage %d", ep.Name, ep.Stage)
	}

	var in []binding
	for _, arg := range fn.Arguments {
		in = flatten(m, in, arg.Binding, arg.Type)
	}
	var out []binding
	if fn.Result != nil {
		out = flatten(m, out, fn.Result.Binding, fn.Result.Type)
	}

	g := gatherer{m: m, r: r}
	for _, b := range in {
		if err := g.input(b); err != nil {
			return nil, fmt.Errorf("entry point %q: %w", ep.Name, err)
		}
	}
	for _, b := range out {
		if err := g.output(b); err != nil {
			return nil, fmt.Errorf("entry point %q: %w", ep.Name, err)
		}
	}
	if r.Info.Stage == program.StageVertex {
		// Vertex attributes are bound in location order.
		sort.SliceStable(r.Info.Inputs, func(i, j int) bool {
			return r.Info.Inputs[i].Index < r.Info.Inputs[j].Index
		})
	}

	scanCounters(m, fn, r)
	return r, nil
}

// flatten expands struct-typed arguments and results into their member
// bindings.
func flatten(m *ir.Module, dst []binding, b *ir.Binding, ty ir.TypeHandle) []binding {
	if b != nil {
		return append(dst, binding{b: *b, ty: ty})
	}
	if int(ty) >= len(m.Types) {
		return dst
	}
	if st, ok := m.Types[ty].Inner.(ir.StructType); ok {
		for _, mem := range st.Members {
			dst = flatten(m, dst, mem.Binding, mem.Type)
		}
	}
	return dst
}

type gatherer struct {
	m *ir.Module
	r *codegen.Result
}

func (g *gatherer) input(b binding) error {
	info := &g.r.Info
	switch bb := b.b.(type) {
	case ir.LocationBinding:
		if info.Stage == program.StageCompute {
			return fmt.Errorf("compute input at location %d", bb.Location)
		}
		v, err := g.generic(bb, b.ty)
		if err != nil {
			return err
		}
		info.Inputs = append(info.Inputs, v)
	case ir.BuiltinBinding:
		switch bb.Builtin {
		case ir.BuiltinPosition:
			info.Inputs = append(info.Inputs, program.Variable{Semantic: program.SemPosition, Mask: 0xf})
		case ir.BuiltinVertexIndex:
			g.sysval(program.SemVertexID)
		case ir.BuiltinInstanceIndex:
			g.sysval(program.SemInstanceID)
		case ir.BuiltinFrontFacing:
			g.sysval(program.SemFace)
		case ir.BuiltinSampleIndex:
			g.sysval(program.SemSampleID)
		case ir.BuiltinSampleMask:
			g.sysval(program.SemSampleMask)
			info.Props.UsesSampleMaskIn = true
		case ir.BuiltinLocalInvocationID:
			g.sysval(program.SemLocalInvocationID)
		case ir.BuiltinWorkGroupID:
			g.sysval(program.SemWorkgroupID)
		case ir.BuiltinNumWorkGroups:
			g.sysval(program.SemNumWorkgroups)
		case ir.BuiltinGlobalInvocationID, ir.BuiltinLocalInvocationIndex:
			// Derived from the workgroup and local ids.
			g.sysval(program.SemWorkgroupID)
			g.sysval(program.SemLocalInvocationID)
		default:
			return fmt.Errorf("unsupported input builtin %d", bb.Builtin)
		}
	}
	return nil
}

func (g *gatherer) output(b binding) error {
	info := &g.r.Info
	props := &info.Props
	switch bb := b.b.(type) {
	case ir.LocationBinding:
		if info.Stage == program.StageFragment {
			if bb.Location >= 8 {
				return fmt.Errorf("colour output at location %d exceeds 8 attachments", bb.Location)
			}
			info.Outputs = append(info.Outputs, program.Variable{
				Semantic: program.SemColor,
				Index:    uint8(bb.Location),
				Mask:     0xf,
			})
			props.NumColorResults++
			return nil
		}
		v, err := g.generic(bb, b.ty)
		if err != nil {
			return err
		}
		info.Outputs = append(info.Outputs, v)
	case ir.BuiltinBinding:
		switch bb.Builtin {
		case ir.BuiltinPosition:
			info.Outputs = append(info.Outputs, program.Variable{Semantic: program.SemPosition, Mask: 0xf})
		case ir.BuiltinFragDepth:
			props.FragDepth = program.Int(len(info.Outputs))
			props.WritesDepth = true
			info.Outputs = append(info.Outputs, program.Variable{Semantic: program.SemFragDepth, Mask: 0x4})
		case ir.BuiltinSampleMask:
			props.SampleMask = program.Int(len(info.Outputs))
			info.Outputs = append(info.Outputs, program.Variable{Semantic: program.SemSampleMask, Mask: 0x1})
		default:
			return fmt.Errorf("unsupported output builtin %d", bb.Builtin)
		}
	}
	return nil
}

func (g *gatherer) generic(b ir.LocationBinding, ty ir.TypeHandle) (program.Variable, error) {
	if b.Location >= 32 {
		return program.Variable{}, fmt.Errorf("location %d exceeds 32 generic varyings", b.Location)
	}
	v := program.Variable{
		Semantic: program.SemGeneric,
		Index:    uint8(b.Location),
		Mask:     componentMask(g.m, ty),
	}
	if b.Interpolation != nil {
		switch b.Interpolation.Kind {
		case ir.InterpolationFlat:
			v.Flags |= program.FlagFlat
		case ir.InterpolationLinear:
			v.Flags |= program.FlagLinear
		}
		if b.Interpolation.Sampling == ir.SamplingCentroid {
			v.Flags |= program.FlagCentroid
		}
	} else if isInteger(g.m, ty) {
		v.Flags |= program.FlagFlat
	}
	return v, nil
}

func (g *gatherer) sysval(sem program.Semantic) {
	if g.r.Info.HasSysVal(sem) {
		return
	}
	g.r.Info.SysVals = append(g.r.Info.SysVals, program.Variable{Semantic: sem, Mask: 0x1})
}

// componentMask returns the active component mask of a varying type.
func componentMask(m *ir.Module, ty ir.TypeHandle) uint8 {
	if int(ty) >= len(m.Types) {
		return 0xf
	}
	switch t := m.Types[ty].Inner.(type) {
	case ir.ScalarType:
		return 0x1
	case ir.VectorType:
		return uint8(1)<<t.Size - 1
	default:
		return 0xf
	}
}

func isInteger(m *ir.Module, ty ir.TypeHandle) bool {
	if int(ty) >= len(m.Types) {
		return false
	}
	var s ir.ScalarType
	switch t := m.Types[ty].Inner.(type) {
	case ir.ScalarType:
		s = t
	case ir.VectorType:
		s = t.Scalar
	default:
		return false
	}
	return s.Kind == ir.ScalarSint || s.Kind == ir.ScalarUint
}
