// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/nvshader"
	"github.com/gogpu/nvshader/artifact"
	"github.com/gogpu/nvshader/codegen"
	"github.com/gogpu/nvshader/codegen/desc"
	"github.com/gogpu/nvshader/codegen/wgslgen"
)

// namedGenerator is a code generator that knows its input name.
type namedGenerator interface {
	codegen.Generator
	Name() string
}

func wgslOptions(entry string, maxGPR int) wgslgen.Options {
	opts := wgslgen.DefaultOptions()
	opts.EntryPoint = entry
	opts.MaxGPR = maxGPR
	return opts
}

// loadGenerators picks a generator for each input by extension.
func loadGenerators(paths []string, opts wgslgen.Options) ([]namedGenerator, error) {
	gens := make([]namedGenerator, 0, len(paths))
	for _, path := range paths {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".wgsl":
			source, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("cannot read %s: %w", path, err)
			}
			gens = append(gens, wgslgen.New(path, string(source), opts))
		case ".toml":
			g, err := desc.Load(path)
			if err != nil {
				return nil, err
			}
			gens = append(gens, g)
		default:
			return nil, fmt.Errorf("%s: unknown input type (want .wgsl or .toml)", path)
		}
	}
	return gens, nil
}

func generators(named []namedGenerator) []codegen.Generator {
	out := make([]codegen.Generator, len(named))
	for i, g := range named {
		out[i] = g
	}
	return out
}

// outputPath returns where the result for input is written. With several
// inputs, out names a directory.
func outputPath(out, input string, n int, raw bool) (string, error) {
	if n == 1 && !strings.HasSuffix(out, string(filepath.Separator)) {
		return out, nil
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return "", err
	}
	ext := ".nvs"
	if raw {
		ext = ".bin"
	}
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return filepath.Join(out, base+ext), nil
}

// outputPaths resolves the output of every input and rejects inputs that
// would overwrite each other.
func outputPaths(out string, inputs []string, raw bool) ([]string, error) {
	paths := make([]string, len(inputs))
	seen := make(map[string]string, len(inputs))
	for i, input := range inputs {
		path, err := outputPath(out, input, len(inputs), raw)
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[path]; ok {
			return nil, fmt.Errorf("%s and %s both write %s", prev, input, path)
		}
		seen[path] = input
		paths[i] = path
	}
	return paths, nil
}

func writeShader(path, name string, s *nvshader.Shader, raw bool) error {
	data := s.Image()
	if !raw {
		var err error
		if data, err = artifact.MarshalShader(name, s); err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("error writing output: %w", err)
	}
	return nil
}
