// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"golang.org/x/term"

	"github.com/gogpu/nvshader"
	"github.com/gogpu/nvshader/hw"
)

var (
	successColorFG = pterm.FgLightGreen
	successStyleBG = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	errorColorFG   = pterm.FgRed
	errorStyleBG   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	infoColorFG    = pterm.FgLightBlue
)

func printError(tag string, err error) {
	errorStyleBG.Print(tag)
	errorColorFG.Println(" " + err.Error())
}

func printSuccess(msg string) {
	successStyleBG.Print("Done")
	successColorFG.Println(" " + msg)
}

func printSummary(name string, chipset hw.Chipset, s *nvshader.Shader) {
	infoColorFG.Print(name)
	fmt.Printf(": %s shader for %s (%s), header %#x bytes, code %#x bytes, %d GPRs",
		s.Stage(), chipset, chipset.Generation(), s.HeaderSize(), len(s.Code), s.NumGPRs)
	if s.NeedsTLS() {
		fmt.Printf(", %d bytes local memory", s.TLSSpace)
	}
	fmt.Println()
}

// headerTable lays out the header words with their byte offsets.
func headerTable(s *nvshader.Shader) pterm.TableData {
	data := pterm.TableData{{"Offset", "Word", "Value"}}
	for i, w := range s.Header.Words {
		data = append(data, []string{
			fmt.Sprintf("0x%02x", i*4),
			fmt.Sprintf("%d", i),
			fmt.Sprintf("0x%08x", w),
		})
	}
	return data
}

// printHeader renders the header as a table on a terminal and as plain
// HDR lines otherwise, so redirected output stays diffable.
func printHeader(s *nvshader.Shader) error {
	if s.Header == nil {
		fmt.Println("  (compute shaders have no header)")
		return nil
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return s.Header.Dump(os.Stdout)
	}
	return pterm.DefaultTable.WithHasHeader().WithData(headerTable(s)).Render()
}
