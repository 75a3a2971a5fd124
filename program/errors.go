// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package program

import (
	"fmt"
	"strings"
)

// ErrorKind categorizes compile errors.
type ErrorKind uint8

const (
	// ErrCodegen indicates the external code generator failed.
	ErrCodegen ErrorKind = iota

	// ErrInvalidSemantic indicates a variable whose semantic has no
	// hardware address, or another upstream contract violation.
	ErrInvalidSemantic

	// ErrResourceLimit indicates a hardware resource limit was exceeded.
	ErrResourceLimit

	// ErrRangeOverflow indicates an address outside the encodable range.
	ErrRangeOverflow
)

// String returns a human-readable error kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrCodegen:
		return "Codegen"
	case ErrInvalidSemantic:
		return "InvalidSemantic"
	case ErrResourceLimit:
		return "ResourceLimit"
	case ErrRangeOverflow:
		return "RangeOverflow"
	default:
		return "Unknown"
	}
}

// Location identifies the variable an error refers to.
type Location struct {
	Direction Direction
	Semantic  Semantic
	Index     uint8
}

// Error is a compile error with enough context to find the upstream bug.
type Error struct {
	// Kind categorizes the error.
	Kind ErrorKind

	// Stage is the stage being compiled.
	Stage Stage

	// Var optionally identifies the offending variable.
	Var *Location

	// Address optionally holds the offending address or limit value.
	Address *uint32

	// Message provides details about the error.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s shader %s", e.Stage, e.Kind)
	if e.Var != nil {
		fmt.Fprintf(&sb, " (%s %s[%d])", e.Var.Direction, e.Var.Semantic, e.Var.Index)
	}
	if e.Address != nil {
		fmt.Fprintf(&sb, " at %#x", *e.Address)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind, so callers can test with
// errors.Is(err, &program.Error{Kind: program.ErrRangeOverflow}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// NewError creates an error without variable or address context.
func NewError(kind ErrorKind, stage Stage, message string) *Error {
	return &Error{Kind: kind, Stage: stage, Message: message}
}

// Errorf creates an error with a formatted message.
func Errorf(kind ErrorKind, stage Stage, format string, args ...any) *Error {
	return NewError(kind, stage, fmt.Sprintf(format, args...))
}

// At attaches the offending variable to the error.
func (e *Error) At(dir Direction, v Variable) *Error {
	e.Var = &Location{Direction: dir, Semantic: v.Semantic, Index: v.Index}
	return e
}

// WithAddress attaches the offending address to the error.
func (e *Error) WithAddress(a uint32) *Error {
	e.Address = &a
	return e
}

// IsInvalidSemantic returns true if the error is ErrInvalidSemantic.
func (e *Error) IsInvalidSemantic() bool {
	return e.Kind == ErrInvalidSemantic
}

// IsRangeOverflow returns true if the error is ErrRangeOverflow.
func (e *Error) IsRangeOverflow() bool {
	return e.Kind == ErrRangeOverflow
}
