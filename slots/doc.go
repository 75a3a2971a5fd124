// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package slots assigns shader variable components to hardware varying
// addresses.
//
// Addresses come from a fixed semantic table ([InputAddress],
// [OutputAddress]) except in two places where the hardware binds by
// position:
//   - vertex inputs are packed in declaration order from 0x80
//   - fragment colour outputs are packed by attachment rank, followed by
//     the sample mask and depth registers ([CompactFragmentOutputs])
//
// All addresses stored in a [program.SlotTable] are word addresses (byte
// address / 4).
package slots
