package parser

import (
	"fmt"
)

// CompileErr batches compile-time diagnostics. Every message is prefixed with
// the current file name and 1-based line number, so callers only update the
// position and push plain message text.
type CompileErr struct {
	errors      []string
	lineNumber  int
	currentFile string
}

// NewCompileErr creates an empty accumulator positioned at the first line of
// the default source file.
func NewCompileErr() *CompileErr {
	return &CompileErr{lineNumber: 1, currentFile: "main.s"}
}

// SetFile updates the file name used for subsequent message prefixes.
func (e *CompileErr) SetFile(name string) {
	e.currentFile = name
}

// SetLine updates the 1-based line number used for subsequent prefixes.
func (e *CompileErr) SetLine(lineNumber int) {
	e.lineNumber = lineNumber
}

// Push appends a single diagnostic at the current position.
func (e *CompileErr) Push(message string) {
	e.errors = append(e.errors, fmt.Sprintf("%q line %d: %s", e.currentFile, e.lineNumber, message))
}

// Extend appends a batch of diagnostics, prefixing each with the current
// position.
func (e *CompileErr) Extend(messages []string) {
	for _, m := range messages {
		e.Push(m)
	}
}

// HasErrors reports whether any diagnostics have been recorded.
func (e *CompileErr) HasErrors() bool {
	return len(e.errors) > 0
}

// Result returns the accumulated diagnostics, or nil when the compile was
// clean.
func (e *CompileErr) Result() []string {
	if len(e.errors) == 0 {
		return nil
	}
	return e.errors
}

// Message wraps a single error string into the error-list shape used by the
// host surface.
func Message(message string) []string {
	return []string{message}
}

// InstructionErr batches the per-instruction constraint checks run by each
// operand validator. Messages carry no position prefix; the surrounding
// CompileErr adds it.
type InstructionErr struct {
	errors []string
}

// Push appends a constraint violation.
func (e *InstructionErr) Push(message string) {
	e.errors = append(e.errors, message)
}

// CheckImm8 records an error when the immediate does not fit in 8 bits.
func (e *InstructionErr) CheckImm8(immed uint32) {
	if immed > 0xFF {
		e.Push("Immediate value must be within 8 bits.")
	}
}

// CheckImm12 records an error when the immediate does not fit in 12 bits.
func (e *InstructionErr) CheckImm12(immed uint32) {
	if immed > 0xFFF {
		e.Push("Immediate value must be within 12 bits.")
	}
}

// CheckSP records an error when the register is the stack pointer. reg names
// the operand position (Rd, Rm, ...).
func (e *InstructionErr) CheckSP(r uint8, reg string) {
	if r == 13 {
		e.Push(fmt.Sprintf("%s is not allowed to be stack pointer.", reg))
	}
}

// CheckPC records an error when the register is the program counter.
func (e *InstructionErr) CheckPC(r uint8, reg string) {
	if r == 15 {
		e.Push(fmt.Sprintf("%s is not allowed to be program counter.", reg))
	}
}

// CheckSPOrPC records an error when the register is SP or PC.
func (e *InstructionErr) CheckSPOrPC(r uint8, reg string) {
	e.CheckPC(r, reg)
	e.CheckSP(r, reg)
}

// InvalidS records an error when the S extension is present but the
// instruction does not honor it.
func (e *InstructionErr) InvalidS(s bool) {
	if s {
		e.Push("S extension is not allowed for this instruction.")
	}
}

// Result returns the accumulated violations, or nil when all checks passed.
func (e *InstructionErr) Result() []string {
	if len(e.errors) == 0 {
		return nil
	}
	return e.errors
}

// InvalidArgs is the diagnostic for a line whose operands match none of the
// shapes an instruction accepts.
func InvalidArgs(line string) []string {
	return []string{fmt.Sprintf("%q contains invalid arguments.", line)}
}
