// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package config handles nvkc.toml compiler configuration.
//
//	[compiler]
//	chipset = "0x164"   # hexadecimal, as a string
//	opt_level = 3
//	debug_flags = 0
//	debug_dump = false
//
//	[batch]
//	jobs = 4
package config

import (
	"fmt"
	"os"
	"runtime"

	"github.com/BurntSushi/toml"

	"github.com/gogpu/nvshader"
	"github.com/gogpu/nvshader/hw"
)

// FileName is the configuration file looked up by the command line tool.
const FileName = "nvkc.toml"

// Config represents an nvkc.toml file.
type Config struct {
	Compiler Compiler `toml:"compiler"`
	Batch    Batch    `toml:"batch"`
}

// Compiler configures shader compilation.
type Compiler struct {
	Chipset    hw.Chipset `toml:"chipset"`
	OptLevel   int        `toml:"opt_level"`
	DebugFlags uint32     `toml:"debug_flags"`
	DebugDump  bool       `toml:"debug_dump"`
}

// Batch configures parallel compilation.
type Batch struct {
	// Jobs bounds the number of concurrent compilations.
	Jobs int `toml:"jobs"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	opts := nvshader.DefaultOptions()
	return &Config{
		Compiler: Compiler{
			Chipset:    hw.ChipsetTU102,
			OptLevel:   opts.OptLevel,
			DebugFlags: opts.DebugFlags,
			DebugDump:  opts.DebugDump,
		},
		Batch: Batch{Jobs: runtime.GOMAXPROCS(0)},
	}
}

// Parse decodes a configuration. Keys that are not present keep their
// defaults.
func Parse(data []byte) (*Config, error) {
	c := Default()
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return nil, err
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return nil, fmt.Errorf("unknown key %q", undec[0].String())
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Load reads a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	return c, nil
}

// LoadOrDefault loads path when it exists and returns the defaults
// otherwise.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

func (c *Config) validate() error {
	if c.Compiler.OptLevel < 0 {
		return fmt.Errorf("compiler.opt_level %d is negative", c.Compiler.OptLevel)
	}
	if c.Compiler.Chipset < hw.ChipsetGF100 {
		return fmt.Errorf("compiler.chipset %s predates Fermi", c.Compiler.Chipset)
	}
	if c.Batch.Jobs < 0 {
		return fmt.Errorf("batch.jobs %d is negative", c.Batch.Jobs)
	}
	return nil
}

// Options returns the compile options described by the configuration.
func (c *Config) Options() nvshader.Options {
	opts := nvshader.DefaultOptions()
	opts.OptLevel = c.Compiler.OptLevel
	opts.DebugFlags = c.Compiler.DebugFlags
	opts.DebugDump = c.Compiler.DebugDump
	opts.Jobs = c.Batch.Jobs
	return opts
}
