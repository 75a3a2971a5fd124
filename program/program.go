// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package program

import "github.com/gogpu/nvshader/hw"

// Flags holds per-variable interpolation and routing flags.
type Flags uint8

const (
	// FlagPatch marks a per-patch tessellation variable.
	FlagPatch Flags = 1 << iota
	// FlagFlat disables interpolation.
	FlagFlat
	// FlagLinear requests linear (no perspective correction) interpolation.
	FlagLinear
	// FlagCentroid marks a colour input whose interpolation is overridden
	// per attachment at draw time.
	FlagCentroid
	// FlagOutputRead marks an output that the stage reads back.
	FlagOutputRead
)

// Has reports whether all bits of f2 are set in f.
func (f Flags) Has(f2 Flags) bool {
	return f&f2 == f2
}

// Variable is one declared shader input, output or system value.
type Variable struct {
	Semantic Semantic
	Index    uint8

	// Mask has bit c set when component c (x, y, z, w) is active.
	Mask uint8

	Flags Flags
}

// Active reports whether component c is active.
func (v Variable) Active(c int) bool {
	return v.Mask&(1<<c) != 0
}

// Direction tells whether a variable is read or written by the stage.
type Direction uint8

const (
	DirInput Direction = iota
	DirOutput
)

// String returns "input" or "output".
func (d Direction) String() string {
	if d == DirOutput {
		return "output"
	}
	return "input"
}

// TessDomain is the tessellation primitive domain.
type TessDomain uint8

const (
	TessDomainNone TessDomain = iota
	TessDomainIsolines
	TessDomainTriangles
	TessDomainQuads
)

// TessSpacing is the tessellation partitioning mode.
type TessSpacing uint8

const (
	TessSpacingEqual TessSpacing = iota
	TessSpacingFractionalOdd
	TessSpacingFractionalEven
)

// Primitive is an output primitive type of the tessellation or geometry
// stage.
type Primitive uint8

const (
	PrimNone Primitive = iota
	PrimPoints
	PrimLineStrip
	PrimTriangleStrip
	PrimTriangles
	PrimLines
)

// Properties holds the stage properties gathered by the code generator.
type Properties struct {
	// Fragment stage.

	// NumColorResults is the number of colour attachments written.
	NumColorResults int
	// SampleMask is the index into Outputs of the sample mask output.
	SampleMask *int
	// FragDepth is the index into Outputs of the depth output.
	FragDepth *int

	UsesDiscard          bool
	EarlyFragmentTests   bool
	WritesDepth          bool
	ReadsFramebuffer     bool
	PostDepthCoverage    bool
	SeparateFragData     bool
	UsesSampleMaskIn     bool
	ReadsSampleLocations bool

	// Vertex, tessellation and geometry stages.

	ClipDistances int
	CullDistances int
	// UserClipPlanes is the number of generated user clip planes, nil when
	// user clip plane generation is disabled.
	UserClipPlanes        *int
	LayerViewportRelative bool

	// Tessellation.

	NumPatchConstants int
	OutputPatchSize   int
	TessDomain        TessDomain
	TessSpacing       TessSpacing
	TessOutputPrim    Primitive
	TessClockwise     bool

	// Geometry.

	GeometryOutputPrim  Primitive
	GeometryInstances   int
	GeometryMaxVertices int

	// Compute.

	Workgroup    [3]uint32
	SharedMemory uint32
}

// GlobalAccess describes how a shader touches global memory.
type GlobalAccess uint8

const (
	GlobalRead GlobalAccess = 1 << iota
	GlobalWrite
)

// Counters are the resource figures reported by the code generator after
// register allocation.
type Counters struct {
	// MaxGPR is the highest general purpose register index used.
	MaxGPR int
	// TLSSpace is the per-thread local memory size in bytes.
	TLSSpace     uint32
	SharedMemory uint32
	NumBarriers  int
	GlobalAccess GlobalAccess
	FP64         bool
}

// Info is the complete I/O description of a compiled shader program.
type Info struct {
	Stage   Stage
	Chipset hw.Chipset

	Inputs  []Variable
	Outputs []Variable
	SysVals []Variable

	Props Properties
}

// Vars returns the variable list for the given direction.
func (p *Info) Vars(dir Direction) []Variable {
	if dir == DirOutput {
		return p.Outputs
	}
	return p.Inputs
}

// HasSysVal reports whether the program reads the given system value.
func (p *Info) HasSysVal(sem Semantic) bool {
	for _, sv := range p.SysVals {
		if sv.Semantic == sem {
			return true
		}
	}
	return false
}

// Int returns a pointer to n, for filling optional Properties fields.
func Int(n int) *int {
	return &n
}
