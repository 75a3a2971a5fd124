// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Command nvkc finishes shaders for NVIDIA GPUs.
//
// Usage:
//
//	nvkc [options] <input>...
//
// Inputs are WGSL shaders (.wgsl) or precompiled program descriptions
// (.toml). Each is compiled for the selected chipset, and the result is
// optionally written as a CBOR artifact.
//
// Examples:
//
//	nvkc shader.wgsl                       # Compile and summarize
//	nvkc -chipset 0x124 -dump blend.toml   # Print the header of a description
//	nvkc -o shader.nvs shader.wgsl         # Write an artifact
//	nvkc -o out/ a.wgsl b.wgsl c.toml      # Compile a batch in parallel
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/gogpu/nvshader"
	"github.com/gogpu/nvshader/config"
	"github.com/gogpu/nvshader/hw"
)

var (
	configPath = flag.String("config", config.FileName, "configuration file")
	chipset    = flag.String("chipset", "", "target chipset, hexadecimal (default: from config)")
	optLevel   = flag.Int("O", -1, "optimization level (default: from config)")
	entry      = flag.String("entry", "", "WGSL entry point (default: the only one)")
	maxGPR     = flag.Int("max-gpr", 0, "register count reported for WGSL shaders")
	output     = flag.String("o", "", "artifact file, or directory for several inputs")
	image      = flag.Bool("image", false, "write the raw upload image instead of an artifact")
	dump       = flag.Bool("dump", false, "print the shader header")
	jobs       = flag.Int("j", 0, "parallel compilations (default: from config)")
	verbose    = flag.Bool("v", false, "verbose logging")
	version    = flag.Bool("version", false, "print version")
)

const nvkcVersion = "0.1.0-dev"

func main() {
	flag.Usage = usage
	flag.Parse()

	if *version {
		fmt.Printf("nvkc version %s\n", nvkcVersion)
		return
	}

	args := flag.Args()
	if len(args) < 1 {
		printError("Usage", fmt.Errorf("no input file specified"))
		usage()
		os.Exit(1)
	}

	if *verbose {
		nvshader.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	if err := run(args); err != nil {
		printError("Error", err)
		os.Exit(1)
	}
}

func run(inputs []string) error {
	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		return err
	}
	target := cfg.Compiler.Chipset
	if *chipset != "" {
		if target, err = hw.ParseChipset(*chipset); err != nil {
			return err
		}
	}
	opts := cfg.Options()
	if *optLevel >= 0 {
		opts.OptLevel = *optLevel
	}
	if *jobs > 0 {
		opts.Jobs = *jobs
	}

	gens, err := loadGenerators(inputs, wgslOptions(*entry, *maxGPR))
	if err != nil {
		return err
	}
	var paths []string
	if *output != "" {
		if paths, err = outputPaths(*output, inputs, *image); err != nil {
			return err
		}
	}
	shaders, err := nvshader.CompileBatch(context.Background(), generators(gens), target, opts)
	if err != nil {
		return err
	}

	for i, s := range shaders {
		name := gens[i].Name()
		printSummary(name, target, s)
		if *dump {
			if err := printHeader(s); err != nil {
				return err
			}
		}
		if paths == nil {
			continue
		}
		path := paths[i]
		if err := writeShader(path, name, s, *image); err != nil {
			return err
		}
		printSuccess(fmt.Sprintf("wrote %s", path))
	}
	return nil
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: nvkc [options] <input.wgsl|input.toml>...\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  nvkc shader.wgsl                      Compile and summarize\n")
	fmt.Fprintf(os.Stderr, "  nvkc -chipset 0x124 -dump blend.toml  Print the header\n")
	fmt.Fprintf(os.Stderr, "  nvkc -o shader.nvs shader.wgsl        Write an artifact\n")
	fmt.Fprintf(os.Stderr, "  nvkc -o out/ a.wgsl b.toml            Compile a batch\n")
}
