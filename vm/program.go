package vm

import (
	"fmt"
	"strings"

	"github.com/kgrange/thumb-emulator/parser"
)

// ITStatus records an instruction's position relative to an IT block.
type ITStatus int

const (
	ITOut  ITStatus = iota // not governed by an IT block
	ITIn                   // inside a block, more instructions follow
	ITLast                 // final instruction of a block
)

// MnemonicExtension holds the decoration stripped from a mnemonic token: an
// optional condition-code suffix, the S flag, the .w wide qualifier, and the
// instruction's IT-block position.
type MnemonicExtension struct {
	CC       ConditionCode
	HasCC    bool
	S        bool
	W        bool
	ITStatus ITStatus
}

// Line is one compiled instruction. FileName and LineNumber exist for
// diagnostics only.
type Line struct {
	Mnemonic   string
	FileName   string
	LineNumber int
	Ext        MnemonicExtension
	Breakpoint bool
	Operands   Operands
}

// Program is the compiled artifact: the ordered line vector and the interned
// string pool, plus the per-instruction debug delay from the project
// manifest. It is immutable between a compile and the next reset.
type Program struct {
	Lines      []Line
	StringPool []string
	DelayMS    uint16
}

// NewProgram creates an empty program.
func NewProgram() *Program {
	return &Program{}
}

// Reset empties the compiled lines and string pool and installs the
// per-instruction delay for the next compile.
func (p *Program) Reset(delayMS uint16) {
	p.Lines = nil
	p.StringPool = nil
	p.DelayMS = delayMS
}

// LabelResolver resolves a label name to a compiled line index. Satisfied by
// the parser's label table.
type LabelResolver interface {
	Lookup(name string) (int, bool)
}

// NoLabels is an empty LabelResolver, for callers assembling label-free
// fragments.
type NoLabels struct{}

// Lookup always fails.
func (NoLabels) Lookup(string) (int, bool) { return 0, false }

// FindMnemonic identifies the instruction named by the line's first token,
// stripping decoration in priority order: the bare token, a trailing .w, a
// condition-code suffix, cc preceded by s, a trailing s, and s preceded by cc
// (so movseq and moveqs are equivalent). It returns the base mnemonic and the
// decoded extension.
func FindMnemonic(line string) (string, MnemonicExtension, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", MnemonicExtension{}, false
	}
	token := fields[0]

	for _, wide := range []bool{false, true} {
		tok := token
		if wide {
			if !strings.HasSuffix(tok, ".w") {
				continue
			}
			tok = strings.TrimSuffix(tok, ".w")
		}

		// bare token
		if _, ok := instructionSet[tok]; ok {
			return tok, MnemonicExtension{W: wide}, true
		}
		// condition-code suffix
		if len(tok) > 2 {
			if cc, ok := ParseConditionCode(tok[len(tok)-2:]); ok {
				base := tok[:len(tok)-2]
				if _, found := instructionSet[base]; found {
					return base, MnemonicExtension{CC: cc, HasCC: true, W: wide}, true
				}
				// s before the condition code: movseq
				if strings.HasSuffix(base, "s") {
					if _, found := instructionSet[base[:len(base)-1]]; found {
						return base[:len(base)-1], MnemonicExtension{CC: cc, HasCC: true, S: true, W: wide}, true
					}
				}
			}
		}
		// trailing s
		if strings.HasSuffix(tok, "s") && len(tok) > 1 {
			base := tok[:len(tok)-1]
			if _, found := instructionSet[base]; found {
				return base, MnemonicExtension{S: true, W: wide}, true
			}
			// condition code before the s: moveqs
			if len(base) > 2 {
				if cc, ok := ParseConditionCode(base[len(base)-2:]); ok {
					if _, found := instructionSet[base[:len(base)-2]]; found {
						return base[:len(base)-2], MnemonicExtension{CC: cc, HasCC: true, S: true, W: wide}, true
					}
				}
			}
		}
	}
	return "", MnemonicExtension{}, false
}

// CompileInstruction validates one instruction line and appends its compiled
// Line record. Branch targets resolve through the label table and fall back
// to the predefined-subroutine names; ldr's =label form resolves through the
// string-label map. Returned messages carry no position prefix.
func (p *Program) CompileInstruction(mnemonic string, ext MnemonicExtension, fileName string, lineNumber int,
	breakpoint bool, line string, labels LabelResolver, stringLabels map[string]int) []string {

	var operands Operands

	switch {
	case mnemonic == "b" || mnemonic == "bl":
		var errs parser.InstructionErr
		errs.InvalidS(ext.S)
		if !parser.IsLabel(line) {
			return append(errs.Result(), parser.InvalidArgs(line)...)
		}
		fields := strings.Fields(line)
		name := fields[len(fields)-1]
		ref, ok := p.resolveLabel(name, labels)
		if !ok {
			errs.Push(fmt.Sprintf("Label %q is not defined.", name))
		}
		if msgs := errs.Result(); msgs != nil {
			return msgs
		}
		operands = Operands{Kind: OpLabel, Label: ref}

	case mnemonic == "ldr" && parser.IsRtEqualImmed(line):
		nums, errs := parser.GetAllNumbers(line)
		if errs != nil {
			return errs
		}
		if len(nums) != 2 {
			return parser.InvalidArgs(line)
		}
		operands = Operands{Kind: OpRtImm, Rt: uint8(nums[0]), Literal: nums[1]}

	case mnemonic == "ldr" && parser.IsRtEqualLabel(line):
		nums, errs := parser.GetAllNumbers(line)
		if errs != nil {
			return errs
		}
		if len(nums) != 1 {
			return parser.InvalidArgs(line)
		}
		name := strings.TrimSpace(line[strings.Index(line, "=")+1:])
		slot, ok := stringLabels[name]
		if !ok {
			return parser.Message(fmt.Sprintf("String label %q is not defined.", name))
		}
		operands = Operands{Kind: OpRtLabel, Rt: uint8(nums[0]), Pool: slot}

	default:
		inst, ok := instructionSet[mnemonic]
		if !ok {
			return parser.Message("Invalid instruction.")
		}
		var errs []string
		operands, errs = inst.GetOperands(&ext, line)
		if errs != nil {
			return errs
		}
	}

	p.Lines = append(p.Lines, Line{
		Mnemonic:   mnemonic,
		FileName:   fileName,
		LineNumber: lineNumber,
		Ext:        ext,
		Breakpoint: breakpoint,
		Operands:   operands,
	})
	return nil
}

// resolveLabel resolves a branch target: global labels, then the current
// file's local labels, then the predefined subroutine names.
func (p *Program) resolveLabel(name string, labels LabelResolver) (LabelRef, bool) {
	if idx, ok := labels.Lookup(name); ok {
		return LabelRef{Kind: LabelIndex, Index: idx}, true
	}
	if kind, ok := predefinedLabels[name]; ok {
		return LabelRef{Kind: kind}, true
	}
	return LabelRef{}, false
}
