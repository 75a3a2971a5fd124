// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package program

import "fmt"

// Slot is the word address of one variable component in the hardware
// varying address space. The zero value is Unassigned.
type Slot struct {
	addr  uint16
	valid bool
}

// Unassigned is the slot of an inactive component.
var Unassigned Slot

// SlotAt returns an assigned slot at word address a.
func SlotAt(a uint32) Slot {
	return Slot{addr: uint16(a), valid: true}
}

// Addr returns the word address and whether the slot is assigned.
func (s Slot) Addr() (uint32, bool) {
	return uint32(s.addr), s.valid
}

// Assigned reports whether the slot holds an address.
func (s Slot) Assigned() bool {
	return s.valid
}

// String formats the slot as a word address.
func (s Slot) String() string {
	if !s.valid {
		return "-"
	}
	return fmt.Sprintf("%#03x", s.addr)
}

// Slots holds the slots of a variable's four components.
type Slots [4]Slot

// Base returns the word address of component 0 derived from any assigned
// component, since components are laid out contiguously.
func (s Slots) Base() (uint32, bool) {
	for c, slot := range s {
		if a, ok := slot.Addr(); ok && a >= uint32(c) {
			return a - uint32(c), true
		}
	}
	return 0, false
}

// SlotTable holds the slot assignment of every input and output variable,
// parallel to Info.Inputs and Info.Outputs.
type SlotTable struct {
	Inputs  []Slots
	Outputs []Slots
}

// NewSlotTable returns an all-unassigned table sized for p.
func NewSlotTable(p *Info) *SlotTable {
	return &SlotTable{
		Inputs:  make([]Slots, len(p.Inputs)),
		Outputs: make([]Slots, len(p.Outputs)),
	}
}

// For returns the slots for the given direction.
func (t *SlotTable) For(dir Direction) []Slots {
	if dir == DirOutput {
		return t.Outputs
	}
	return t.Inputs
}
