package vm

import (
	"github.com/kgrange/thumb-emulator/parser"
)

// OperandKind discriminates the Operands union.
type OperandKind int

const (
	OpNone       OperandKind = iota
	OpRdImmed                // Rd, #imm
	OpRdRm                   // Rd, Rm
	OpRdRnImmed              // Rd, Rn, #imm
	OpRdRnRm                 // Rd, Rn, Rm
	OpLabel                  // branch target
	OpRtRnImm                // Rt, [Rn] / Rt, [Rn, #imm]
	OpRtRnImmPost            // Rt, [Rn], #imm
	OpRtRnImmPre             // Rt, [Rn, #imm]!
	OpRtRnRm                 // Rt, [Rn, Rm] / Rt, [Rn, Rm, lsl #k]
	OpRtLabel                // Rt, =label (string pool slot)
	OpRtImm                  // Rt, =#imm (literal)
)

// LabelKind discriminates a resolved branch target: a line index or one of
// the predefined I/O subroutines.
type LabelKind int

const (
	LabelIndex LabelKind = iota
	LabelCR
	LabelValue
	LabelPrintChar
	LabelPrintf
	LabelGetChar
	LabelGetNumber
)

// LabelRef is a resolved branch target.
type LabelRef struct {
	Kind  LabelKind
	Index int // valid when Kind == LabelIndex
}

// predefinedLabels maps the reserved subroutine names (source is lowercased
// before matching) to their label kinds.
var predefinedLabels = map[string]LabelKind{
	"cr":        LabelCR,
	"value":     LabelValue,
	"printchar": LabelPrintChar,
	"printf":    LabelPrintf,
	"getchar":   LabelGetChar,
	"getnumber": LabelGetNumber,
}

// Operands is the shape-typed operand bundle attached to a compiled line.
// Kind selects which fields are meaningful.
type Operands struct {
	Kind OperandKind

	Rd, Rn, Rm, Rt uint8

	Immed uint32 // unsigned immediate for the Rd forms
	Imm   int32  // signed offset for the memory forms
	// HasImm distinguishes "[Rn]" (no offset) from "[Rn, #0]"
	HasImm bool

	Shift    uint8 // lsl amount for the register-offset memory form
	HasShift bool

	Label   LabelRef // branch target
	Pool    int      // string pool slot for Rt, =label
	Literal uint32   // literal for Rt, =#imm
}

// ParseOperands classifies a preprocessed, lowercased line into one of the
// operand shapes and extracts its register and immediate tokens. Branch and
// pseudo-load forms are handled by the assembler before this point.
func ParseOperands(line string) (Operands, []string) {
	nums, errs := parser.GetAllNumbers(line)
	if errs != nil {
		return Operands{}, errs
	}

	switch {
	case parser.IsRdImmed(line):
		if len(nums) != 2 {
			return Operands{}, parser.InvalidArgs(line)
		}
		return Operands{Kind: OpRdImmed, Rd: uint8(nums[0]), Immed: nums[1]}, nil

	case parser.IsRdRm(line):
		if len(nums) != 2 {
			return Operands{}, parser.InvalidArgs(line)
		}
		return Operands{Kind: OpRdRm, Rd: uint8(nums[0]), Rm: uint8(nums[1])}, nil

	case parser.IsRdRnImmed(line):
		if len(nums) != 3 {
			return Operands{}, parser.InvalidArgs(line)
		}
		return Operands{Kind: OpRdRnImmed, Rd: uint8(nums[0]), Rn: uint8(nums[1]), Immed: nums[2]}, nil

	case parser.IsRdRnRm(line):
		if len(nums) != 3 {
			return Operands{}, parser.InvalidArgs(line)
		}
		return Operands{Kind: OpRdRnRm, Rd: uint8(nums[0]), Rn: uint8(nums[1]), Rm: uint8(nums[2])}, nil

	case parser.IsRtRn(line):
		if len(nums) != 2 {
			return Operands{}, parser.InvalidArgs(line)
		}
		return Operands{Kind: OpRtRnImm, Rt: uint8(nums[0]), Rn: uint8(nums[1])}, nil

	case parser.IsRtRnImm(line):
		if len(nums) != 3 {
			return Operands{}, parser.InvalidArgs(line)
		}
		return Operands{Kind: OpRtRnImm, Rt: uint8(nums[0]), Rn: uint8(nums[1]), Imm: int32(nums[2]), HasImm: true}, nil

	case parser.IsRtRnImmPost(line):
		if len(nums) != 3 {
			return Operands{}, parser.InvalidArgs(line)
		}
		return Operands{Kind: OpRtRnImmPost, Rt: uint8(nums[0]), Rn: uint8(nums[1]), Imm: int32(nums[2]), HasImm: true}, nil

	case parser.IsRtRnImmPre(line):
		if len(nums) != 3 {
			return Operands{}, parser.InvalidArgs(line)
		}
		return Operands{Kind: OpRtRnImmPre, Rt: uint8(nums[0]), Rn: uint8(nums[1]), Imm: int32(nums[2]), HasImm: true}, nil

	case parser.IsRtRnRm(line):
		if len(nums) != 3 {
			return Operands{}, parser.InvalidArgs(line)
		}
		return Operands{Kind: OpRtRnRm, Rt: uint8(nums[0]), Rn: uint8(nums[1]), Rm: uint8(nums[2])}, nil

	case parser.IsRtRnRmShift(line):
		if len(nums) != 4 {
			return Operands{}, parser.InvalidArgs(line)
		}
		op := Operands{Kind: OpRtRnRm, Rt: uint8(nums[0]), Rn: uint8(nums[1]), Rm: uint8(nums[2]), HasShift: true}
		if nums[3] > 31 {
			return Operands{}, parser.Message("Shift amount must be between 0 and 31.")
		}
		op.Shift = uint8(nums[3])
		return op, nil
	}

	return Operands{}, parser.InvalidArgs(line)
}
