// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package nvshader finishes shaders for NVIDIA GPUs from Fermi through
// Ampere.
//
// A code generator produces machine code together with the shader's
// declared inputs, outputs and resource counters. nvshader assigns every
// varying component to its hardware attribute address and encodes the
// shader program header read by the launch hardware.
//
// Example usage:
//
//	gen, err := desc.Load("blend.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	shader, err := nvshader.Compile(gen, hw.ChipsetTU102, nvshader.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	image := shader.Image() // header followed by code
//
// WGSL shaders are compiled through the naga front end in codegen/wgslgen.
package nvshader

import (
	"io"
	"os"

	"github.com/gogpu/nvshader/codegen"
)

// Options configures shader compilation.
type Options struct {
	// OptLevel is passed to the code generator (default: 3).
	OptLevel int

	// DebugFlags are passed to the code generator.
	DebugFlags uint32

	// DebugDump prints the header and code words after compilation.
	DebugDump bool

	// DumpWriter receives the dump (default: os.Stderr).
	DumpWriter io.Writer

	// Jobs bounds the number of concurrent compilations in CompileBatch.
	// Values below 1 mean no limit.
	Jobs int

	// Passes run on the code generator result before slot assignment.
	// Nil selects codegen.DefaultPasses.
	Passes []codegen.Pass
}

// DefaultOptions returns sensible default options.
func DefaultOptions() Options {
	return Options{
		OptLevel:   3,
		DebugFlags: 0,
		DebugDump:  false,
	}
}

func (o *Options) dumpWriter() io.Writer {
	if o.DumpWriter != nil {
		return o.DumpWriter
	}
	return os.Stderr
}

func (o *Options) passes() []codegen.Pass {
	if o.Passes != nil {
		return o.Passes
	}
	return codegen.DefaultPasses()
}
