package vm

import (
	"errors"

	"github.com/kgrange/thumb-emulator/parser"
)

// Instruction is one entry in the mnemonic dispatch table. GetOperands runs
// at compile time: it classifies the line into an operand shape and applies
// the per-variant constraint checks. Execute runs at runtime against the
// processor state.
type Instruction interface {
	Mnemonic() string
	GetOperands(ext *MnemonicExtension, line string) (Operands, []string)
	Execute(sFlag bool, op *Operands, proc *Processor) error
}

// instructionSet is the mnemonic-keyed dispatch table, looked up on every
// instruction during compile.
var instructionSet = map[string]Instruction{
	"mov":  movInst{},
	"add":  addInst{name: "add", subtract: false},
	"sub":  addInst{name: "sub", subtract: true},
	"cmp":  cmpInst{},
	"b":    branchInst{name: "b", link: false},
	"bl":   branchInst{name: "bl", link: true},
	"str":  strInst{name: "str", size: sizeWord},
	"strh": strInst{name: "strh", size: sizeHalf},
	"strb": strInst{name: "strb", size: sizeByte},
	"ldr":  ldrInst{name: "ldr", size: sizeWord},
	"ldrh": ldrInst{name: "ldrh", size: sizeHalf},
	"ldrb": ldrInst{name: "ldrb", size: sizeByte},
}

// errInvalidOperands is the runtime error for an operand variant that should
// never reach Execute with a correct assembler.
var errInvalidOperands = errors.New("Wrong arguments given.")

// movInst implements MOV: register or immediate move. SP and PC are not
// allowed on either side. The immediate form takes any 32-bit value, like
// the wide mov32 pseudo-instruction.
type movInst struct{}

func (movInst) Mnemonic() string { return "mov" }

func (movInst) GetOperands(_ *MnemonicExtension, line string) (Operands, []string) {
	var errs parser.InstructionErr
	op, msgs := ParseOperands(line)
	if msgs != nil {
		return op, msgs
	}
	switch op.Kind {
	case OpRdImmed:
		errs.CheckSPOrPC(op.Rd, "Rd")
	case OpRdRm:
		errs.CheckSPOrPC(op.Rd, "Rd")
		errs.CheckSPOrPC(op.Rm, "Rm")
	default:
		return op, parser.InvalidArgs(line)
	}
	return op, errs.Result()
}

func (movInst) Execute(sFlag bool, op *Operands, proc *Processor) error {
	var value uint32
	switch op.Kind {
	case OpRdImmed:
		value = op.Immed
	case OpRdRm:
		value = proc.R[op.Rm]
	default:
		return errInvalidOperands
	}
	if sFlag {
		proc.SetNZ(value)
	}
	proc.R[op.Rd] = value
	return nil
}

// addInst implements ADD and SUB, which share shapes and only differ in the
// arithmetic and flag rules.
type addInst struct {
	name     string
	subtract bool
}

func (i addInst) Mnemonic() string { return i.name }

func (i addInst) GetOperands(_ *MnemonicExtension, line string) (Operands, []string) {
	var errs parser.InstructionErr
	op, msgs := ParseOperands(line)
	if msgs != nil {
		return op, msgs
	}
	switch op.Kind {
	case OpRdImmed, OpRdRnImmed:
		errs.CheckImm12(op.Immed)
	case OpRdRm, OpRdRnRm:
	default:
		return op, parser.InvalidArgs(line)
	}
	return op, errs.Result()
}

func (i addInst) Execute(sFlag bool, op *Operands, proc *Processor) error {
	var a, b uint32
	var dest uint8
	switch op.Kind {
	case OpRdImmed:
		dest, a, b = op.Rd, proc.R[op.Rd], op.Immed
	case OpRdRm:
		dest, a, b = op.Rd, proc.R[op.Rd], proc.R[op.Rm]
	case OpRdRnImmed:
		dest, a, b = op.Rd, proc.R[op.Rn], op.Immed
	case OpRdRnRm:
		dest, a, b = op.Rd, proc.R[op.Rn], proc.R[op.Rm]
	default:
		return errInvalidOperands
	}

	var result uint32
	if i.subtract {
		result = a - b
		if sFlag {
			proc.SetNZ(result)
			proc.C = a >= b // NOT borrow
			proc.V = subOverflows(a, b, result)
		}
	} else {
		result = a + b
		if sFlag {
			proc.SetNZ(result)
			proc.C = result < a // unsigned overflow
			proc.V = addOverflows(a, b, result)
		}
	}
	proc.R[dest] = result
	return nil
}

// cmpInst implements CMP: subtract and set flags, discarding the result. The
// S extension is rejected; the immediate form is limited to 8 bits unless .w
// is present.
type cmpInst struct{}

func (cmpInst) Mnemonic() string { return "cmp" }

func (cmpInst) GetOperands(ext *MnemonicExtension, line string) (Operands, []string) {
	var errs parser.InstructionErr
	op, msgs := ParseOperands(line)
	if msgs != nil {
		return op, msgs
	}
	errs.InvalidS(ext.S)
	switch op.Kind {
	case OpRdImmed:
		if !ext.W {
			errs.CheckImm8(op.Immed)
		}
		errs.CheckPC(op.Rd, "Rn")
	case OpRdRm:
		errs.CheckPC(op.Rd, "Rn")
		errs.CheckSPOrPC(op.Rm, "Rm")
	default:
		return op, parser.InvalidArgs(line)
	}
	return op, errs.Result()
}

func (cmpInst) Execute(_ bool, op *Operands, proc *Processor) error {
	var a, b uint32
	switch op.Kind {
	case OpRdImmed:
		a, b = proc.R[op.Rd], op.Immed
	case OpRdRm:
		a, b = proc.R[op.Rd], proc.R[op.Rm]
	default:
		return errInvalidOperands
	}
	result := a - b
	proc.SetNZ(result)
	proc.C = a >= b
	proc.V = subOverflows(a, b, result)
	return nil
}

// branchInst implements B and BL. Operand validation happens in the
// assembler, which resolves the label; Execute only sees index targets
// (predefined subroutines are intercepted by the execution engine).
type branchInst struct {
	name string
	link bool
}

func (i branchInst) Mnemonic() string { return i.name }

func (i branchInst) GetOperands(_ *MnemonicExtension, _ string) (Operands, []string) {
	// never reached; branch compilation runs through the label resolver
	return Operands{Kind: OpLabel}, nil
}

func (i branchInst) Execute(_ bool, op *Operands, proc *Processor) error {
	if op.Kind != OpLabel || op.Label.Kind != LabelIndex {
		return errInvalidOperands
	}
	if i.link {
		proc.R[LR] = proc.R[PC]
	}
	proc.R[PC] = uint32(op.Label.Index)
	return nil
}

// addOverflows reports signed overflow of a+b.
func addOverflows(a, b, result uint32) bool {
	return (a>>31 == b>>31) && (a>>31 != result>>31)
}

// subOverflows reports signed overflow of a-b.
func subOverflows(a, b, result uint32) bool {
	return (a>>31 != b>>31) && (a>>31 != result>>31)
}
