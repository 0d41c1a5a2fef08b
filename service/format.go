package service

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/kgrange/thumb-emulator/vm"
)

// CPUState is the display form of the processor: 16 formatted registers and
// the four APSR flags.
type CPUState struct {
	R          []string
	N, Z, C, V bool
}

// MemoryState is the display form of the RAM: 1024 formatted bytes and the
// current stack pointer.
type MemoryState struct {
	Bytes []string
	SP    uint32
}

// registerFormatter returns the register formatter for a number format name.
// Unknown names fall back to unsigned.
func registerFormatter(numFormat string) func(uint32) string {
	switch numFormat {
	case "signed":
		return func(r uint32) string { return fmt.Sprintf("%d", int32(r)) }
	case "binary":
		return func(r uint32) string { return fmt.Sprintf("0b%032b", r) }
	case "hexadecimal":
		return func(r uint32) string { return fmt.Sprintf("0x%08x", r) }
	default:
		return func(r uint32) string { return fmt.Sprintf("%d", r) }
	}
}

// byteFormatter returns the memory-byte formatter for a number format name,
// using 8-bit representations.
func byteFormatter(numFormat string) func(byte) string {
	switch numFormat {
	case "signed":
		return func(b byte) string { return fmt.Sprintf("%d", int8(b)) }
	case "binary":
		return func(b byte) string { return fmt.Sprintf("0b%08b", b) }
	case "hexadecimal":
		return func(b byte) string { return fmt.Sprintf("0x%02x", b) }
	default:
		return func(b byte) string { return fmt.Sprintf("%d", b) }
	}
}

// DisplayCPU snapshots the processor's registers and flags, formatted in the
// chosen number system ("signed", "binary", "hexadecimal", anything else is
// unsigned).
func (h *Host) DisplayCPU(numFormat string) CPUState {
	h.procMu.Lock()
	defer h.procMu.Unlock()

	format := registerFormatter(numFormat)
	return CPUState{
		R: lo.Map(h.proc.R[:], func(r uint32, _ int) string { return format(r) }),
		N: h.proc.N,
		Z: h.proc.Z,
		C: h.proc.C,
		V: h.proc.V,
	}
}

// DisplayMemory snapshots the 1024 memory bytes, formatted in the chosen
// number system, together with SP for the frontend's stack marker.
func (h *Host) DisplayMemory(numFormat string) MemoryState {
	h.procMu.Lock()
	defer h.procMu.Unlock()

	format := byteFormatter(numFormat)
	return MemoryState{
		Bytes: lo.Map(h.proc.Memory[:], func(b byte, _ int) string { return format(b) }),
		SP:    h.proc.R[vm.SP],
	}
}
