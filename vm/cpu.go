package vm

// MemorySize is the size of the simulated RAM in bytes.
const MemorySize = 1024

// Register aliases
const (
	SP = 13 // Stack Pointer
	LR = 14 // Link Register
	PC = 15 // Program Counter (index into the compiled line vector)
)

// Processor holds the complete machine state: 16 general registers, the four
// APSR condition flags, and a linear byte-addressed RAM. R[15] is the index
// of the next compiled line, not a byte address.
type Processor struct {
	R [16]uint32

	// APSR condition flags
	N bool // Negative (bit 31 of result)
	Z bool // Zero (result == 0)
	C bool // Carry (unsigned overflow / NOT borrow)
	V bool // Signed overflow

	Memory [MemorySize]byte
}

// NewProcessor creates a processor in its reset state.
func NewProcessor() *Processor {
	p := &Processor{}
	p.Reset()
	return p
}

// Reset zeroes registers, flags and memory, then reinitializes SP to the top
// of the full-descending stack.
func (p *Processor) Reset() {
	p.R = [16]uint32{}
	p.N, p.Z, p.C, p.V = false, false, false, false
	p.Memory = [MemorySize]byte{}
	p.R[SP] = MemorySize - 1
}

// SetNZ updates the N and Z flags from a result value. C and V are left
// untouched.
func (p *Processor) SetNZ(value uint32) {
	p.N = int32(value) < 0
	p.Z = value == 0
}
