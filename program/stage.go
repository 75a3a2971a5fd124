// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package program

// Stage identifies a shader pipeline stage.
type Stage uint8

const (
	StageVertex Stage = iota
	StageTessCtrl
	StageTessEval
	StageGeometry
	StageFragment
	StageCompute

	// StageUnknown is reported when an error occurs before the stage is
	// known.
	StageUnknown Stage = 0xff
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageTessCtrl:
		return "tess_ctrl"
	case StageTessEval:
		return "tess_eval"
	case StageGeometry:
		return "geometry"
	case StageFragment:
		return "fragment"
	case StageCompute:
		return "compute"
	default:
		return "unknown"
	}
}

// IsVTG reports whether the stage uses the vertex/tessellation/geometry
// header layout.
func (s Stage) IsVTG() bool {
	return s <= StageGeometry
}

// HasHeader reports whether the stage carries a shader header.
// Compute shaders are launched without one.
func (s Stage) HasHeader() bool {
	return s != StageCompute
}

// ParseStage returns the stage with the given name.
func ParseStage(name string) (Stage, bool) {
	for s := StageVertex; s <= StageCompute; s++ {
		if s.String() == name {
			return s, true
		}
	}
	return 0, false
}
