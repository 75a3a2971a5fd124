// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hw

import "testing"

func TestLookupHeaderSize(t *testing.T) {
	tests := []struct {
		chipset Chipset
		size    int
		words   int
	}{
		{ChipsetGF100, GF100HeaderSize, 20},
		{0x0e4, GF100HeaderSize, 20},
		{0x134, GF100HeaderSize, 20},
		{ChipsetGV100, GF100HeaderSize, 20},
		{ChipsetTU102, TU102HeaderSize, 32},
		{0x174, TU102HeaderSize, 32},
	}

	for _, tt := range tests {
		t.Run(tt.chipset.String(), func(t *testing.T) {
			caps := Lookup(tt.chipset)
			if caps.HeaderSize != tt.size {
				t.Errorf("HeaderSize = %#x, want %#x", caps.HeaderSize, tt.size)
			}
			if caps.HeaderWords() != tt.words {
				t.Errorf("HeaderWords() = %d, want %d", caps.HeaderWords(), tt.words)
			}
		})
	}
}

func TestLookupThresholds(t *testing.T) {
	fermi := Lookup(0x0c8)
	if fermi.ReserveSampleMaskSlot || fermi.SampleLocationsViaPosition || fermi.SplitPatchConstantCount || fermi.GPRBias {
		t.Errorf("Fermi caps = %+v, want no capabilities", fermi)
	}

	kepler := Lookup(0x0e4)
	if !kepler.ReserveSampleMaskSlot {
		t.Error("Kepler should reserve the sample mask slot")
	}
	if kepler.SplitPatchConstantCount {
		t.Error("Kepler should not split the patch constant count")
	}

	gm107 := Lookup(ChipsetGM107)
	if !gm107.SplitPatchConstantCount || gm107.SampleLocationsViaPosition {
		t.Errorf("GM107 caps = %+v", gm107)
	}

	gm200 := Lookup(0x124)
	if !gm200.SampleLocationsViaPosition {
		t.Error("GM200 should need position for sample locations")
	}

	volta := Lookup(ChipsetGV100)
	if !volta.GPRBias {
		t.Error("Volta should use the biased GPR count")
	}
}

func TestNumGPRs(t *testing.T) {
	tests := []struct {
		name    string
		chipset Chipset
		maxGPR  int
		want    int
	}{
		{"kepler minimum", 0x0e4, 0, 4},
		{"kepler", 0x0e4, 9, 10},
		{"volta", ChipsetGV100, 9, 14},
		{"volta clamp", ChipsetGV100, 254, 256},
		{"turing", 0x164, 0, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Lookup(tt.chipset).NumGPRs(tt.maxGPR); got != tt.want {
				t.Errorf("NumGPRs(%d) = %d, want %d", tt.maxGPR, got, tt.want)
			}
		})
	}
}

func TestParseChipset(t *testing.T) {
	tests := []struct {
		in      string
		want    Chipset
		wantErr bool
	}{
		{"0x164", 0x164, false},
		{"164", 0x164, false},
		{"NV0E4", 0x0e4, false},
		{" nv124 ", 0x124, false},
		{"0x50", 0, true},
		{"gk104", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseChipset(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseChipset(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseChipset(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestChipsetGeneration(t *testing.T) {
	tests := []struct {
		chipset Chipset
		want    string
	}{
		{0x0c1, "Fermi"},
		{0x0f0, "Kepler"},
		{0x118, "Maxwell"},
		{0x120, "Maxwell"},
		{0x13b, "Pascal"},
		{0x140, "Volta"},
		{0x166, "Turing"},
		{0x177, "Ampere"},
		{0x050, "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.chipset.Generation(); got != tt.want {
			t.Errorf("%v.Generation() = %q, want %q", tt.chipset, got, tt.want)
		}
	}
}

func TestChipsetText(t *testing.T) {
	var c Chipset
	if err := c.UnmarshalText([]byte("0x162")); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if c != 0x162 {
		t.Errorf("got %v, want NV162", c)
	}
	text, err := c.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}
	if string(text) != "0x162" {
		t.Errorf("MarshalText = %q, want %q", text, "0x162")
	}
	if c.String() != "NV162" {
		t.Errorf("String() = %q, want %q", c.String(), "NV162")
	}
}
