// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package desc implements a code generator that reads a precompiled
// program from a TOML description.
//
// A description names the stage, lists the declared variables and stage
// properties, and carries the machine code as hex:
//
//	stage = "fragment"
//	code = "0f00000000000000"
//
//	[counters]
//	max_gpr = 12
//
//	[props]
//	num_color_results = 1
//
//	[[outputs]]
//	semantic = "color"
//	mask = 0xf
//
// It is used to compile code produced by an external backend and to drive
// the header encoder from tests and the command line.
package desc

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/gogpu/nvshader/codegen"
	"github.com/gogpu/nvshader/program"
)

// Description is the TOML form of a compiled program.
type Description struct {
	Name     string     `toml:"name"`
	Stage    string     `toml:"stage"`
	Code     string     `toml:"code"`
	Counters Counters   `toml:"counters"`
	Props    Props      `toml:"props"`
	Inputs   []Variable `toml:"inputs"`
	Outputs  []Variable `toml:"outputs"`
	SysVals  []Variable `toml:"sysvals"`
}

// Variable describes one declared variable.
type Variable struct {
	Semantic string `toml:"semantic"`
	Index    uint8  `toml:"index"`
	// Mask defaults to 0xf when omitted.
	Mask  *uint8   `toml:"mask"`
	Flags []string `toml:"flags"`
}

// Counters are the resource figures of the code.
type Counters struct {
	MaxGPR       int    `toml:"max_gpr"`
	TLSSpace     uint32 `toml:"tls_space"`
	SharedMemory uint32 `toml:"shared_memory"`
	NumBarriers  int    `toml:"num_barriers"`
	GlobalRead   bool   `toml:"global_read"`
	GlobalWrite  bool   `toml:"global_write"`
	FP64         bool   `toml:"fp64"`
}

// Props are the stage properties.
type Props struct {
	NumColorResults      int  `toml:"num_color_results"`
	SampleMask           *int `toml:"sample_mask"`
	FragDepth            *int `toml:"frag_depth"`
	UsesDiscard          bool `toml:"uses_discard"`
	EarlyFragmentTests   bool `toml:"early_fragment_tests"`
	WritesDepth          bool `toml:"writes_depth"`
	ReadsFramebuffer     bool `toml:"reads_framebuffer"`
	PostDepthCoverage    bool `toml:"post_depth_coverage"`
	SeparateFragData     bool `toml:"separate_frag_data"`
	UsesSampleMaskIn     bool `toml:"uses_sample_mask_in"`
	ReadsSampleLocations bool `toml:"reads_sample_locations"`

	ClipDistances         int  `toml:"clip_distances"`
	CullDistances         int  `toml:"cull_distances"`
	UserClipPlanes        *int `toml:"user_clip_planes"`
	LayerViewportRelative bool `toml:"layer_viewport_relative"`

	NumPatchConstants int    `toml:"num_patch_constants"`
	OutputPatchSize   int    `toml:"output_patch_size"`
	TessDomain        string `toml:"tess_domain"`
	TessSpacing       string `toml:"tess_spacing"`
	TessOutputPrim    string `toml:"tess_output_prim"`
	TessClockwise     bool   `toml:"tess_clockwise"`

	GeometryOutputPrim  string `toml:"geometry_output_prim"`
	GeometryInstances   int    `toml:"geometry_instances"`
	GeometryMaxVertices int    `toml:"geometry_max_vertices"`

	Workgroup [3]uint32 `toml:"workgroup"`
}

var flagNames = map[string]program.Flags{
	"patch":       program.FlagPatch,
	"flat":        program.FlagFlat,
	"linear":      program.FlagLinear,
	"centroid":    program.FlagCentroid,
	"output_read": program.FlagOutputRead,
}

var domainNames = map[string]program.TessDomain{
	"":          program.TessDomainNone,
	"isolines":  program.TessDomainIsolines,
	"triangles": program.TessDomainTriangles,
	"quads":     program.TessDomainQuads,
}

var spacingNames = map[string]program.TessSpacing{
	"":                program.TessSpacingEqual,
	"equal":           program.TessSpacingEqual,
	"fractional_odd":  program.TessSpacingFractionalOdd,
	"fractional_even": program.TessSpacingFractionalEven,
}

var primitiveNames = map[string]program.Primitive{
	"":               program.PrimNone,
	"points":         program.PrimPoints,
	"line_strip":     program.PrimLineStrip,
	"triangle_strip": program.PrimTriangleStrip,
	"triangles":      program.PrimTriangles,
	"lines":          program.PrimLines,
}

// Generator returns descriptions as generator results. The target does
// not affect the output.
type Generator struct {
	desc *Description
}

// New returns a generator for an already decoded description.
func New(d *Description) *Generator {
	return &Generator{desc: d}
}

// Parse decodes a TOML description.
func Parse(data []byte) (*Generator, error) {
	var d Description
	md, err := toml.Decode(string(data), &d)
	if err != nil {
		return nil, fmt.Errorf("desc: %w", err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return nil, fmt.Errorf("desc: unknown key %q", undec[0].String())
	}
	return New(&d), nil
}

// Load reads and decodes a TOML description file.
func Load(path string) (*Generator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	g, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if g.desc.Name == "" {
		g.desc.Name = path
	}
	return g, nil
}

// Name returns the description name.
func (g *Generator) Name() string {
	return g.desc.Name
}

// Generate converts the description into a code generator result.
func (g *Generator) Generate(codegen.Target) (*codegen.Result, error) {
	d := g.desc
	stage, ok := program.ParseStage(d.Stage)
	if !ok {
		return nil, fmt.Errorf("desc: unknown stage %q", d.Stage)
	}

	r := &codegen.Result{Info: program.Info{Stage: stage}}
	var err error
	if r.Info.Inputs, err = variables(d.Inputs, "input"); err != nil {
		return nil, err
	}
	if r.Info.Outputs, err = variables(d.Outputs, "output"); err != nil {
		return nil, err
	}
	if r.Info.SysVals, err = variables(d.SysVals, "sysval"); err != nil {
		return nil, err
	}
	if r.Info.Props, err = d.Props.properties(); err != nil {
		return nil, err
	}
	r.Info.Props.SharedMemory = d.Counters.SharedMemory

	code := strings.Join(strings.Fields(d.Code), "")
	if r.Code, err = hex.DecodeString(code); err != nil {
		return nil, fmt.Errorf("desc: code: %w", err)
	}

	c := d.Counters
	r.Counters = program.Counters{
		MaxGPR:       c.MaxGPR,
		TLSSpace:     c.TLSSpace,
		SharedMemory: c.SharedMemory,
		NumBarriers:  c.NumBarriers,
		FP64:         c.FP64,
	}
	if c.GlobalRead {
		r.Counters.GlobalAccess |= program.GlobalRead
	}
	if c.GlobalWrite {
		r.Counters.GlobalAccess |= program.GlobalWrite
	}
	return r, nil
}

func variables(in []Variable, what string) ([]program.Variable, error) {
	out := make([]program.Variable, 0, len(in))
	for i, v := range in {
		sem, ok := program.ParseSemantic(v.Semantic)
		if !ok {
			return nil, fmt.Errorf("desc: %s %d: unknown semantic %q", what, i, v.Semantic)
		}
		pv := program.Variable{Semantic: sem, Index: v.Index, Mask: 0xf}
		if v.Mask != nil {
			if *v.Mask > 0xf {
				return nil, fmt.Errorf("desc: %s %d: mask %#x has more than 4 components", what, i, *v.Mask)
			}
			pv.Mask = *v.Mask
		}
		for _, name := range v.Flags {
			f, ok := flagNames[name]
			if !ok {
				return nil, fmt.Errorf("desc: %s %d: unknown flag %q", what, i, name)
			}
			pv.Flags |= f
		}
		out = append(out, pv)
	}
	return out, nil
}

func (p *Props) properties() (program.Properties, error) {
	props := program.Properties{
		NumColorResults:       p.NumColorResults,
		SampleMask:            p.SampleMask,
		FragDepth:             p.FragDepth,
		UsesDiscard:           p.UsesDiscard,
		EarlyFragmentTests:    p.EarlyFragmentTests,
		WritesDepth:           p.WritesDepth,
		ReadsFramebuffer:      p.ReadsFramebuffer,
		PostDepthCoverage:     p.PostDepthCoverage,
		SeparateFragData:      p.SeparateFragData,
		UsesSampleMaskIn:      p.UsesSampleMaskIn,
		ReadsSampleLocations:  p.ReadsSampleLocations,
		ClipDistances:         p.ClipDistances,
		CullDistances:         p.CullDistances,
		UserClipPlanes:        p.UserClipPlanes,
		LayerViewportRelative: p.LayerViewportRelative,
		NumPatchConstants:     p.NumPatchConstants,
		OutputPatchSize:       p.OutputPatchSize,
		TessClockwise:         p.TessClockwise,
		GeometryInstances:     p.GeometryInstances,
		GeometryMaxVertices:   p.GeometryMaxVertices,
		Workgroup:             p.Workgroup,
	}

	var ok bool
	if props.TessDomain, ok = domainNames[p.TessDomain]; !ok {
		return props, fmt.Errorf("desc: unknown tess_domain %q", p.TessDomain)
	}
	if props.TessSpacing, ok = spacingNames[p.TessSpacing]; !ok {
		return props, fmt.Errorf("desc: unknown tess_spacing %q", p.TessSpacing)
	}
	if props.TessOutputPrim, ok = primitiveNames[p.TessOutputPrim]; !ok {
		return props, fmt.Errorf("desc: unknown tess_output_prim %q", p.TessOutputPrim)
	}
	if props.GeometryOutputPrim, ok = primitiveNames[p.GeometryOutputPrim]; !ok {
		return props, fmt.Errorf("desc: unknown geometry_output_prim %q", p.GeometryOutputPrim)
	}
	return props, nil
}
