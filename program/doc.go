// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package program defines the shader program description exchanged between
// the external code generator and the slot assignment and header encoding
// stages.
//
// # Structure
//
// An [Info] is produced once per compile by a code generator. It holds:
//   - Inputs, Outputs and SysVals: ordered [Variable] lists, each tagged
//     with a [Semantic] kind, a per-kind index and an active component mask
//   - Props: stage [Properties] such as clip distance counts or fragment
//     depth writes
//
// Slot assignment derives a [SlotTable] from an Info. Neither the Info nor
// its variables are modified after the generator returns.
//
// # Errors
//
// Contract violations and hardware limits are reported as [*Error] values
// carrying an [ErrorKind] plus the stage, semantic and address involved.
package program
