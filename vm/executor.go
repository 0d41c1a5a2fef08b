package vm

import (
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// DebugStatus reports how an execution step ended.
type DebugStatus int

const (
	DebugContinue   DebugStatus = iota // more lines remain
	DebugBreakpoint                    // the executed line carries a breakpoint
	DebugEnd                           // end of program or kill observed
)

// InputStatus signals that the program is waiting for host input. The host
// re-enters Run or DebugRun with std_input set, which lands in R[0].
type InputStatus int

const (
	InputNone InputStatus = iota
	InputGetChar
	InputGetNumber
)

// KillSwitch is the cooperative cancellation flag shared between the host
// commands. Run and DebugRun observe it once per step and clear it when
// taking it.
type KillSwitch struct {
	mu  sync.Mutex
	set bool
}

// Kill raises the switch.
func (k *KillSwitch) Kill() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.set = true
}

// Reset lowers the switch, as done at the start of every compile.
func (k *KillSwitch) Reset() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.set = false
}

// take observes and clears the switch in one operation.
func (k *KillSwitch) take() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	was := k.set
	k.set = false
	return was
}

// Run drives the program from the current PC until end of program, a kill,
// an input request, or a runtime error. stdInput, when non-nil, is written
// into R[0] before the first step (the answer to a previous input request).
// maxSteps, when nonzero, bounds the number of executed steps.
func (p *Program) Run(proc *Processor, kill *KillSwitch, stdInput *int32, maxSteps uint64) (string, InputStatus, DebugStatus, error) {
	var stdOut strings.Builder
	if stdInput != nil {
		proc.R[0] = uint32(*stdInput)
	}

	var steps uint64
	for {
		_, status, input, err := p.step(proc, kill, &stdOut)
		if err != nil {
			return stdOut.String(), InputNone, status, err
		}
		if status == DebugEnd {
			return stdOut.String(), InputNone, DebugEnd, nil
		}
		if input != InputNone {
			return stdOut.String(), input, status, nil
		}
		steps++
		if maxSteps > 0 && steps >= maxSteps {
			return stdOut.String(), InputNone, DebugEnd,
				fmt.Errorf("Program aborted after %d steps.", maxSteps)
		}
	}
}

// DebugRun executes exactly one line after sleeping the configured delay. It
// returns the executed line's file and 1-based line number for the frontend,
// or empty values when the program has ended.
func (p *Program) DebugRun(proc *Processor, kill *KillSwitch, stdInput *int32) (string, int, DebugStatus, InputStatus, string, error) {
	time.Sleep(time.Duration(p.DelayMS) * time.Millisecond)

	if stdInput != nil {
		proc.R[0] = uint32(*stdInput)
	}

	var stdOut strings.Builder
	line, status, input, err := p.step(proc, kill, &stdOut)
	if err != nil {
		return line.FileName, line.LineNumber, status, InputNone, stdOut.String(), err
	}
	if line == nil {
		return "", 0, status, input, stdOut.String(), nil
	}
	return line.FileName, line.LineNumber, status, input, stdOut.String(), nil
}

// step runs one iteration of the fetch/dispatch loop: kill and end-of-program
// checks, breakpoint status, PC advance, the condition-code test, predefined
// subroutine interception, and finally instruction dispatch. Runtime errors
// come back prefixed with the line's diagnostic position.
func (p *Program) step(proc *Processor, kill *KillSwitch, stdOut *strings.Builder) (*Line, DebugStatus, InputStatus, error) {
	if kill.take() {
		return nil, DebugEnd, InputNone, nil
	}
	pc := proc.R[PC]
	if pc >= uint32(len(p.Lines)) {
		return nil, DebugEnd, InputNone, nil
	}
	line := &p.Lines[pc]

	status := DebugContinue
	if line.Breakpoint {
		status = DebugBreakpoint
	}
	proc.R[PC]++

	// Conditional execution: a failed test skips the line entirely.
	if line.Ext.HasCC && !line.Ext.CC.Test(proc.N, proc.Z, proc.C, proc.V) {
		return line, status, InputNone, nil
	}

	// Branches to the predefined subroutines run host I/O instead of
	// jumping. bl still records the return address first.
	if line.Operands.Kind == OpLabel && line.Operands.Label.Kind != LabelIndex {
		if line.Mnemonic == "bl" {
			proc.R[LR] = proc.R[PC]
		}
		input, err := p.runPredefined(line, proc, stdOut)
		if err != nil {
			return line, status, InputNone, p.runtimeError(line, err)
		}
		return line, status, input, nil
	}

	inst, ok := instructionSet[line.Mnemonic]
	if !ok {
		return line, status, InputNone, p.runtimeError(line, fmt.Errorf("Unknown instruction %q.", line.Mnemonic))
	}
	if err := inst.Execute(line.Ext.S, &line.Operands, proc); err != nil {
		return line, status, InputNone, p.runtimeError(line, err)
	}
	return line, status, InputNone, nil
}

// runPredefined performs the host I/O bound to a sentinel label.
func (p *Program) runPredefined(line *Line, proc *Processor, stdOut *strings.Builder) (InputStatus, error) {
	switch line.Operands.Label.Kind {
	case LabelCR:
		stdOut.WriteString("\n")
	case LabelValue:
		fmt.Fprintf(stdOut, "%d", int32(proc.R[0]))
	case LabelPrintChar:
		r := proc.R[0]
		if r > utf8.MaxRune || (r >= 0xD800 && r <= 0xDFFF) {
			stdOut.WriteString("Warning. Register value is not a valid Unicode scalar value and cannot be converted to a character.")
		} else {
			stdOut.WriteRune(rune(r))
		}
	case LabelPrintf:
		slot := proc.R[0]
		if slot >= uint32(len(p.StringPool)) {
			return InputNone, fmt.Errorf("Cannot print string pointed to by register r0.")
		}
		stdOut.WriteString(p.StringPool[slot])
	case LabelGetChar:
		return InputGetChar, nil
	case LabelGetNumber:
		return InputGetNumber, nil
	}
	return InputNone, nil
}

// runtimeError prefixes an execution error with the offending line's
// diagnostic position.
func (p *Program) runtimeError(line *Line, err error) error {
	return fmt.Errorf("%q line %d: %s", line.FileName, line.LineNumber, err)
}
