// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package program

// Semantic identifies what a variable represents.
// Together with a variable's index it selects a hardware varying address.
type Semantic uint8

const (
	SemPosition Semantic = iota
	SemGeneric
	SemColor
	SemBackColor
	SemTexCoord
	SemClipDist
	SemClipVertex
	SemTessOuter
	SemTessInner
	SemPatch
	SemPrimitiveID
	SemLayer
	SemViewportIndex
	SemPointSize
	SemInstanceID
	SemVertexID
	SemFog
	SemPointCoord
	SemTessCoord
	SemViewportMask
	SemEdgeFlag
	SemSampleMask
	SemFragDepth
	SemFace
	SemSampleID
	SemSamplePos
	SemInvocationID
	SemLocalInvocationID
	SemWorkgroupID
	SemNumWorkgroups

	semCount
)

var semanticNames = [semCount]string{
	SemPosition:          "position",
	SemGeneric:           "generic",
	SemColor:             "color",
	SemBackColor:         "back_color",
	SemTexCoord:          "texcoord",
	SemClipDist:          "clip_dist",
	SemClipVertex:        "clip_vertex",
	SemTessOuter:         "tess_outer",
	SemTessInner:         "tess_inner",
	SemPatch:             "patch",
	SemPrimitiveID:       "primitive_id",
	SemLayer:             "layer",
	SemViewportIndex:     "viewport_index",
	SemPointSize:         "point_size",
	SemInstanceID:        "instance_id",
	SemVertexID:          "vertex_id",
	SemFog:               "fog",
	SemPointCoord:        "point_coord",
	SemTessCoord:         "tess_coord",
	SemViewportMask:      "viewport_mask",
	SemEdgeFlag:          "edge_flag",
	SemSampleMask:        "sample_mask",
	SemFragDepth:         "frag_depth",
	SemFace:              "face",
	SemSampleID:          "sample_id",
	SemSamplePos:         "sample_pos",
	SemInvocationID:      "invocation_id",
	SemLocalInvocationID: "local_invocation_id",
	SemWorkgroupID:       "workgroup_id",
	SemNumWorkgroups:     "num_workgroups",
}

// String returns the semantic name.
func (s Semantic) String() string {
	if s < semCount {
		return semanticNames[s]
	}
	return "unknown"
}

// ParseSemantic returns the semantic with the given name.
func ParseSemantic(name string) (Semantic, bool) {
	for s, n := range semanticNames {
		if n == name {
			return Semantic(s), true
		}
	}
	return 0, false
}
