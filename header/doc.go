// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package header encodes the shader program header read by the launch
// hardware of NVIDIA GPUs (Fermi and newer).
//
// The header is 20 words on GF100-class hardware and 32 words from TU102
// on. It routes vertex attributes and varyings, selects fragment
// interpolation modes and declares the colour outputs. Two layouts exist:
//
//   - VTG: vertex, tessellation control, tessellation evaluation and
//     geometry shaders share one input/output map layout
//   - fragment: interpolation map and output mask layout
//
// Compute shaders have no header.
//
// Encoding consumes a [program.Info] whose variables already carry slots
// (see package slots) and never inspects variables without assigned slots.
package header
