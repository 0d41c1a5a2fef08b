package vm

import (
	"fmt"

	"github.com/kgrange/thumb-emulator/parser"
)

// memSize is the access width of a load or store.
type memSize int

const (
	sizeByte memSize = 1
	sizeHalf memSize = 2
	sizeWord memSize = 4
)

// checkMemoryBounds validates that [address, address+size) lies within the
// simulated RAM and returns the address as a slice index.
func checkMemoryBounds(address uint32, size memSize) (int, error) {
	if uint64(address)+uint64(size) > MemorySize {
		return 0, fmt.Errorf("Memory address %d is out of bounds, the %d byte access must be within 0 to %d.", address, size, MemorySize)
	}
	return int(address), nil
}

// rtAndAddress computes the effective address for one of the memory operand
// variants, applying post/pre-index writeback to Rn. It returns the
// transfer register and the address.
func rtAndAddress(op *Operands, proc *Processor) (uint8, uint32, error) {
	switch op.Kind {
	case OpRtRnImm:
		return op.Rt, proc.R[op.Rn] + uint32(op.Imm), nil
	case OpRtRnImmPost:
		address := proc.R[op.Rn]
		proc.R[op.Rn] += uint32(op.Imm)
		return op.Rt, address, nil
	case OpRtRnImmPre:
		proc.R[op.Rn] += uint32(op.Imm)
		return op.Rt, proc.R[op.Rn], nil
	case OpRtRnRm:
		offset := proc.R[op.Rm]
		if op.HasShift {
			offset <<= op.Shift
		}
		return op.Rt, proc.R[op.Rn] + offset, nil
	}
	return 0, 0, errInvalidOperands
}

// validateMemoryOperands applies the shared compile-time checks for the
// load/store family.
func validateMemoryOperands(line string) (Operands, []string) {
	op, msgs := ParseOperands(line)
	if msgs != nil {
		return op, msgs
	}
	switch op.Kind {
	case OpRtRnImm, OpRtRnImmPost, OpRtRnImmPre, OpRtRnRm:
		return op, nil
	}
	return op, parser.InvalidArgs(line)
}

// strInst implements STR, STRH and STRB: store the least-significant 4, 2 or
// 1 bytes of R[Rt] little-endian at the effective address.
type strInst struct {
	name string
	size memSize
}

func (i strInst) Mnemonic() string { return i.name }

func (i strInst) GetOperands(_ *MnemonicExtension, line string) (Operands, []string) {
	return validateMemoryOperands(line)
}

func (i strInst) Execute(_ bool, op *Operands, proc *Processor) error {
	rt, address, err := rtAndAddress(op, proc)
	if err != nil {
		return err
	}
	index, err := checkMemoryBounds(address, i.size)
	if err != nil {
		return err
	}
	value := proc.R[rt]
	for n := 0; n < int(i.size); n++ {
		proc.Memory[index+n] = byte(value >> (8 * n))
	}
	return nil
}

// ldrInst implements LDR, LDRH and LDRB: zero-extend 4, 2 or 1 bytes from
// the effective address into R[Rt]. The =label and =#imm pseudo-forms are
// resolved at compile time into pool-slot and literal loads.
type ldrInst struct {
	name string
	size memSize
}

func (i ldrInst) Mnemonic() string { return i.name }

func (i ldrInst) GetOperands(_ *MnemonicExtension, line string) (Operands, []string) {
	return validateMemoryOperands(line)
}

func (i ldrInst) Execute(_ bool, op *Operands, proc *Processor) error {
	switch op.Kind {
	case OpRtLabel:
		proc.R[op.Rt] = uint32(op.Pool)
		return nil
	case OpRtImm:
		proc.R[op.Rt] = op.Literal
		return nil
	}

	rt, address, err := rtAndAddress(op, proc)
	if err != nil {
		return err
	}
	index, err := checkMemoryBounds(address, i.size)
	if err != nil {
		return err
	}
	var value uint32
	for n := 0; n < int(i.size); n++ {
		value |= uint32(proc.Memory[index+n]) << (8 * n)
	}
	proc.R[rt] = value
	return nil
}
