// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package hw describes the NVIDIA hardware generations targeted by the
// shader header encoder.
//
// Every generation-dependent constant (header size, capability thresholds)
// is resolved through [Lookup] once per compile. Encoders consult the
// returned [Caps] instead of comparing chipset numbers themselves.
package hw

import (
	"fmt"
	"strconv"
	"strings"
)

// Chipset is the NVIDIA chipset number, e.g. 0x0e4 for GK104.
type Chipset uint16

// Known chipset thresholds. A chipset belongs to the newest generation whose
// threshold it reaches.
const (
	ChipsetGF100 Chipset = 0x0c0 // Fermi
	ChipsetGK104 Chipset = 0x0e0 // Kepler
	ChipsetGM107 Chipset = 0x110 // Maxwell
	ChipsetGM200 Chipset = 0x120 // Maxwell 2
	ChipsetGP100 Chipset = 0x130 // Pascal
	ChipsetGV100 Chipset = 0x140 // Volta
	ChipsetTU102 Chipset = 0x160 // Turing
	ChipsetGA102 Chipset = 0x170 // Ampere
)

// Header sizes in bytes.
const (
	GF100HeaderSize = 0x50
	TU102HeaderSize = 0x80

	// MaxHeaderWords is the word count of the largest header layout.
	MaxHeaderWords = TU102HeaderSize / 4
)

// MaxTLSSpace is the per-thread local memory limit (16 MiB, exclusive).
const MaxTLSSpace = 1 << 24

// Caps holds the generation-dependent constants for one chipset.
type Caps struct {
	Chipset Chipset

	// HeaderSize is the size of the shader header in bytes.
	HeaderSize int

	// ReserveSampleMaskSlot reserves a fragment output register after the
	// colour results even when no sample mask is written, so depth always
	// lands on the last colour register + 2 (Kepler+).
	ReserveSampleMaskSlot bool

	// SampleLocationsViaPosition requires the position input bits when the
	// fragment shader reads sample locations (GM200+).
	SampleLocationsViaPosition bool

	// SplitPatchConstantCount moves the tessellation control output patch
	// constant count into header words 3 and 4 (GM107+).
	SplitPatchConstantCount bool

	// GPRBias selects the Volta+ register count rule.
	GPRBias bool
}

// HeaderWords returns the header size in 32-bit words.
func (c Caps) HeaderWords() int {
	return c.HeaderSize / 4
}

// Lookup returns the capabilities of the given chipset.
func Lookup(c Chipset) Caps {
	caps := Caps{
		Chipset:    c,
		HeaderSize: GF100HeaderSize,
	}
	if c >= ChipsetTU102 {
		caps.HeaderSize = TU102HeaderSize
	}
	caps.ReserveSampleMaskSlot = c >= ChipsetGK104
	caps.SplitPatchConstantCount = c >= ChipsetGM107
	caps.SampleLocationsViaPosition = c >= ChipsetGM200
	caps.GPRBias = c >= ChipsetGV100
	return caps
}

// NumGPRs converts the highest register index used by the code generator
// into the register count programmed for the shader.
func (c Caps) NumGPRs(maxGPR int) int {
	if c.GPRBias {
		return min(maxGPR+5, 256)
	}
	return max(4, maxGPR+1)
}

// Generation returns the marketing name of the chipset's generation.
func (c Chipset) Generation() string {
	switch {
	case c >= ChipsetGA102:
		return "Ampere"
	case c >= ChipsetTU102:
		return "Turing"
	case c >= ChipsetGV100:
		return "Volta"
	case c >= ChipsetGP100:
		return "Pascal"
	case c >= ChipsetGM107:
		return "Maxwell"
	case c >= ChipsetGK104:
		return "Kepler"
	case c >= ChipsetGF100:
		return "Fermi"
	default:
		return "Unknown"
	}
}

// String formats the chipset the way the kernel driver reports it.
func (c Chipset) String() string {
	return fmt.Sprintf("NV%03X", uint16(c))
}

// ParseChipset parses a chipset number such as "0x164", "164" or "NV164".
// Bare numbers are read as hexadecimal.
func ParseChipset(s string) (Chipset, error) {
	t := strings.TrimSpace(strings.ToLower(s))
	t = strings.TrimPrefix(t, "nv")
	t = strings.TrimPrefix(t, "0x")
	v, err := strconv.ParseUint(t, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid chipset %q: %w", s, err)
	}
	if Chipset(v) < ChipsetGF100 {
		return 0, fmt.Errorf("unsupported chipset %q: headers require GF100 or newer", s)
	}
	return Chipset(v), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so chipsets can be
// written as strings in configuration files.
func (c *Chipset) UnmarshalText(text []byte) error {
	v, err := ParseChipset(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (c Chipset) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("0x%03x", uint16(c))), nil
}
