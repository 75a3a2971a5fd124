// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package artifact stores compiled shaders as canonical CBOR records.
//
// Canonical encoding makes the bytes a pure function of the shader, so
// artifacts can be compared and content-addressed.
package artifact

import (
	"encoding/binary"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/gogpu/nvshader"
	"github.com/gogpu/nvshader/header"
	"github.com/gogpu/nvshader/hw"
	"github.com/gogpu/nvshader/program"
)

// Version is the record format version written by Marshal.
const Version = 1

var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("artifact: failed to create CBOR enc mode: %v", err))
	}
	encMode = em
}

// Record is the persisted form of a compiled shader.
type Record struct {
	Version int        `cbor:"1,keyasint"`
	Name    string     `cbor:"2,keyasint,omitempty"`
	Stage   string     `cbor:"3,keyasint"`
	Chipset hw.Chipset `cbor:"4,keyasint"`

	// Header is empty for compute shaders.
	Header []uint32  `cbor:"5,keyasint,omitempty"`
	Flags  [2]uint32 `cbor:"6,keyasint"`
	Code   []byte    `cbor:"7,keyasint"`

	NumGPRs      int       `cbor:"8,keyasint"`
	NumBarriers  int       `cbor:"9,keyasint,omitempty"`
	TLSSpace     uint32    `cbor:"10,keyasint,omitempty"`
	SharedMemory uint32    `cbor:"11,keyasint,omitempty"`
	Workgroup    [3]uint32 `cbor:"12,keyasint"`

	VTG header.VTGState      `cbor:"13,keyasint"`
	FS  header.FragmentState `cbor:"14,keyasint"`

	Inputs  []Varying `cbor:"15,keyasint,omitempty"`
	Outputs []Varying `cbor:"16,keyasint,omitempty"`
}

// Varying is a declared variable with its assigned slots. Unassigned
// components are stored as -1.
type Varying struct {
	Semantic string   `cbor:"1,keyasint"`
	Index    uint8    `cbor:"2,keyasint,omitempty"`
	Mask     uint8    `cbor:"3,keyasint"`
	Flags    uint8    `cbor:"4,keyasint,omitempty"`
	Slots    [4]int32 `cbor:"5,keyasint"`
}

// FromShader builds the record of a compiled shader.
func FromShader(name string, s *nvshader.Shader) *Record {
	r := &Record{
		Version:      Version,
		Name:         name,
		Stage:        s.Info.Stage.String(),
		Chipset:      s.Info.Chipset,
		Flags:        s.Flags,
		Code:         s.Code,
		NumGPRs:      s.NumGPRs,
		NumBarriers:  s.NumBarriers,
		TLSSpace:     s.TLSSpace,
		SharedMemory: s.SharedMemory,
		Workgroup:    s.Workgroup,
		VTG:          s.VTG,
		FS:           s.FS,
	}
	if s.Header != nil {
		r.Header = append([]uint32(nil), s.Header.Words...)
	}
	if s.Slots != nil {
		r.Inputs = varyings(s.Info.Inputs, s.Slots.Inputs)
		r.Outputs = varyings(s.Info.Outputs, s.Slots.Outputs)
	}
	return r
}

func varyings(vars []program.Variable, slots []program.Slots) []Varying {
	if len(vars) == 0 {
		return nil
	}
	out := make([]Varying, len(vars))
	for i, v := range vars {
		out[i] = Varying{
			Semantic: v.Semantic.String(),
			Index:    v.Index,
			Mask:     v.Mask,
			Flags:    uint8(v.Flags),
		}
		for c := range out[i].Slots {
			out[i].Slots[c] = -1
			if i < len(slots) {
				if a, ok := slots[i][c].Addr(); ok {
					out[i].Slots[c] = int32(a)
				}
			}
		}
	}
	return out
}

// Image returns the upload image: the little-endian header followed by
// the code.
func (r *Record) Image() []byte {
	img := make([]byte, 0, len(r.Header)*4+len(r.Code))
	for _, w := range r.Header {
		img = binary.LittleEndian.AppendUint32(img, w)
	}
	return append(img, r.Code...)
}

// Marshal serializes a record to canonical CBOR.
func Marshal(r *Record) ([]byte, error) {
	return encMode.Marshal(r)
}

// MarshalShader serializes a compiled shader.
func MarshalShader(name string, s *nvshader.Shader) ([]byte, error) {
	return Marshal(FromShader(name, s))
}

// Unmarshal deserializes a record and checks its version and stage.
func Unmarshal(data []byte) (*Record, error) {
	var r Record
	if err := cbor.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("artifact: unmarshal record: %w", err)
	}
	if r.Version != Version {
		return nil, fmt.Errorf("artifact: unsupported record version %d", r.Version)
	}
	stage, ok := program.ParseStage(r.Stage)
	if !ok {
		return nil, fmt.Errorf("artifact: unknown stage %q", r.Stage)
	}
	if stage.HasHeader() {
		if n := len(r.Header) * 4; n != hw.Lookup(r.Chipset).HeaderSize {
			return nil, fmt.Errorf("artifact: %d byte header for %s", n, r.Chipset)
		}
	} else if len(r.Header) != 0 {
		return nil, fmt.Errorf("artifact: compute record carries a header")
	}
	return &r, nil
}
