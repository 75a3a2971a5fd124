// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package nvshader

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/nvshader/codegen"
	"github.com/gogpu/nvshader/header"
	"github.com/gogpu/nvshader/hw"
	"github.com/gogpu/nvshader/program"
	"github.com/gogpu/nvshader/slots"
)

// Compile runs the code generator and finishes its result for the given
// chipset.
//
// The pipeline is:
//  1. Generate code and I/O information, then run the result passes
//  2. Assign hardware slots to every input and output component
//  3. Encode the shader header
//  4. Derive the register count from the generator's counters
//
// Code generator failures are reported as program.ErrCodegen. The
// returned Shader is never partially built.
func Compile(gen codegen.Generator, chipset hw.Chipset, opts Options) (*Shader, error) {
	caps := hw.Lookup(chipset)
	target := codegen.Target{
		Chipset:    chipset,
		OptLevel:   opts.OptLevel,
		DebugFlags: opts.DebugFlags,
	}

	r, err := codegen.WithPasses(gen, opts.passes()...).Generate(target)
	if err != nil {
		return nil, &program.Error{
			Kind:    program.ErrCodegen,
			Stage:   program.StageUnknown,
			Message: "code generation failed",
			Err:     err,
		}
	}
	info := &r.Info

	table, err := slots.Assign(info, caps)
	if err != nil {
		return nil, err
	}
	enc, err := header.Encode(info, table, caps, r.Counters)
	if err != nil {
		return nil, err
	}

	s := &Shader{
		Info:         *info,
		Slots:        table,
		Header:       enc.Header,
		Flags:        enc.Flags,
		VTG:          enc.VTG,
		FS:           enc.FS,
		Code:         r.Code,
		NumGPRs:      caps.NumGPRs(r.Counters.MaxGPR),
		NumBarriers:  r.Counters.NumBarriers,
		TLSSpace:     enc.TLSSpace,
		SharedMemory: max(r.Counters.SharedMemory, info.Props.SharedMemory),
		Workgroup:    info.Props.Workgroup,
	}

	Logger().Debug("nvshader: compiled",
		slog.String("stage", info.Stage.String()),
		slog.String("chipset", chipset.String()),
		slog.Int("header", s.HeaderSize()),
		slog.Int("code", len(s.Code)),
		slog.Int("gprs", s.NumGPRs),
	)

	if opts.DebugDump {
		// One write per shader keeps batch dumps from interleaving.
		var buf bytes.Buffer
		if err := s.Dump(&buf); err != nil {
			return nil, fmt.Errorf("dump: %w", err)
		}
		if _, err := opts.dumpWriter().Write(buf.Bytes()); err != nil {
			return nil, fmt.Errorf("dump: %w", err)
		}
	}
	return s, nil
}

// CompileBatch compiles several shaders concurrently for one chipset.
// Results are returned in the order of gens. The first failure cancels the
// remaining work and is returned.
func CompileBatch(ctx context.Context, gens []codegen.Generator, chipset hw.Chipset, opts Options) ([]*Shader, error) {
	out := make([]*Shader, len(gens))
	g, ctx := errgroup.WithContext(ctx)
	if opts.Jobs > 0 {
		g.SetLimit(opts.Jobs)
	}
	for i, gen := range gens {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s, err := Compile(gen, chipset, opts)
			if err != nil {
				return fmt.Errorf("shader %d: %w", i, err)
			}
			out[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	Logger().Info("nvshader: batch compiled",
		slog.Int("shaders", len(gens)),
		slog.String("chipset", chipset.String()),
	)
	return out, nil
}
