package parser_test

import (
	"testing"

	"github.com/kgrange/thumb-emulator/parser"
)

func assertNumbers(t *testing.T, line string, want []uint32) {
	t.Helper()
	got, errs := parser.GetAllNumbers(line)
	if errs != nil {
		t.Fatalf("GetAllNumbers(%q) returned errors: %v", line, errs)
	}
	if len(got) != len(want) {
		t.Fatalf("GetAllNumbers(%q) = %v, want %v", line, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("GetAllNumbers(%q)[%d] = %d, want %d", line, i, got[i], want[i])
		}
	}
}

func TestGetAllNumbers(t *testing.T) {
	assertNumbers(t, "movseq r0, #10", []uint32{0, 10})
	assertNumbers(t, "adds r4, #-1", []uint32{4, 0xFFFFFFFF})
	assertNumbers(t, "ldr sp, #-0b100", []uint32{13, 0xFFFFFFFC})
	assertNumbers(t, "ldr r1, lr, #-0xa", []uint32{1, 14, 0xFFFFFFF6})
	assertNumbers(t, "ldr r10, [pc, #0x20]", []uint32{10, 15, 32})
	assertNumbers(t, "ldr r10, r0, r14, pc, #255", []uint32{10, 0, 14, 15, 255})
}

func TestGetAllNumbersRadixes(t *testing.T) {
	assertNumbers(t, "mov r1, #0b1100", []uint32{1, 12})
	assertNumbers(t, "mov r1, #0xffffffff", []uint32{1, 0xFFFFFFFF})
	assertNumbers(t, "cmp r2, #0", []uint32{2, 0})
}

func TestGetAllNumbersInvalidImmediate(t *testing.T) {
	_, errs := parser.GetAllNumbers("mov #afff")
	if len(errs) != 1 || errs[0] != "#afff is not a valid immediate value." {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestGetAllNumbersInvalidRegister(t *testing.T) {
	_, errs := parser.GetAllNumbers("mov r16, #1")
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errs)
	}
	if errs[0] != "Register r16 is invalid, only registers r0 to r15 are allowed." {
		t.Errorf("unexpected message: %s", errs[0])
	}
}

func TestGetAllNumbersOutOfBounds(t *testing.T) {
	if _, errs := parser.GetAllNumbers("mov r0, #4294967296"); errs == nil {
		t.Error("expected out-of-bounds error for 2^32")
	}
	if _, errs := parser.GetAllNumbers("mov r0, #0x1ffffffff"); errs == nil {
		t.Error("expected out-of-bounds error for 33-bit hex")
	}
}

func TestGetAllNumbersWhitespaceInvariant(t *testing.T) {
	a, errs := parser.GetAllNumbers("add r0,r1,#2")
	if errs != nil {
		t.Fatal(errs)
	}
	b, errs := parser.GetAllNumbers("add   r0 ,  r1 ,   #2")
	if errs != nil {
		t.Fatal(errs)
	}
	if len(a) != len(b) {
		t.Fatalf("token counts differ: %v vs %v", a, b)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("token %d differs: %d vs %d", i, a[i], b[i])
		}
	}
}

func TestIsRdImmed(t *testing.T) {
	cases := []struct {
		line string
		want bool
	}{
		{"mov  r0, #4", true},
		{"mov  r0,", false},
		{"mov  #4", false},
		{"movs  r2, #0b1100", true},
		{"moveq  r3, #0xffff", true},
		{"mov.w  r16,  #-0xa", true},
		{"movsvs.w  r12,#-4", true},
	}
	for _, c := range cases {
		if got := parser.IsRdImmed(c.line); got != c.want {
			t.Errorf("IsRdImmed(%q) = %v, want %v", c.line, got, c.want)
		}
	}
}

func TestIsRdRm(t *testing.T) {
	cases := []struct {
		line string
		want bool
	}{
		{"mov r0, r1", true},
		{"mov sp, pc", true},
		{"movscc pc, sp", true},
		{"moveq   r3,r1", true},
		{"mov r0, r", false},
		{"movsvs r0, #4", false},
	}
	for _, c := range cases {
		if got := parser.IsRdRm(c.line); got != c.want {
			t.Errorf("IsRdRm(%q) = %v, want %v", c.line, got, c.want)
		}
	}
}

func TestIsRdRnImmed(t *testing.T) {
	cases := []struct {
		line string
		want bool
	}{
		{"add r0, r1, #12", true},
		{"add.w r0,r1,#0xa", true},
		{"addcc    r12 , r13 , #0b11", true},
		{"adds r12, r,#0xa", false},
		{"adds r12, r1", false},
	}
	for _, c := range cases {
		if got := parser.IsRdRnImmed(c.line); got != c.want {
			t.Errorf("IsRdRnImmed(%q) = %v, want %v", c.line, got, c.want)
		}
	}
}

func TestIsRdRnRm(t *testing.T) {
	cases := []struct {
		line string
		want bool
	}{
		{"add r0, r1, sp", true},
		{"add.w r0,r1, pc", true},
		{"adds r12, r13, r14", true},
		{"adds r12, r,#0xa", false},
	}
	for _, c := range cases {
		if got := parser.IsRdRnRm(c.line); got != c.want {
			t.Errorf("IsRdRnRm(%q) = %v, want %v", c.line, got, c.want)
		}
	}
}

func TestMemoryShapes(t *testing.T) {
	if !parser.IsRtRn("ldr r0, [r1]") {
		t.Error("IsRtRn should match plain base form")
	}
	if parser.IsRtRn("ldr r0, [r1, #4]") {
		t.Error("IsRtRn should not match offset form")
	}
	cases := []struct {
		line string
		want bool
	}{
		{"ldr r0, [r1, #12", false},
		{"ldr r0  , [ r1  , #12  ]", true},
		{"ldr r0, [r1]", false},
		{"ldr r12,[r1,#0xaaff]", true},
		{"ldr pc, [sp, #0xaaff]", true},
	}
	for _, c := range cases {
		if got := parser.IsRtRnImm(c.line); got != c.want {
			t.Errorf("IsRtRnImm(%q) = %v, want %v", c.line, got, c.want)
		}
	}
	if !parser.IsRtRnImmPost("ldr r0, [r1], #4") {
		t.Error("post-index form should match")
	}
	if !parser.IsRtRnImmPre("ldr r0, [r1, #-4]!") {
		t.Error("pre-index form should match")
	}
	if !parser.IsRtRnRm("ldr r0, [r1, r2]") {
		t.Error("register-offset form should match")
	}
	if !parser.IsRtRnRmShift("ldr r0, [r1, r2, lsl #2]") {
		t.Error("shifted register-offset form should match")
	}
	if parser.IsRtRnRmShift("ldr r0, [r1, r2, lsr #2]") {
		t.Error("only lsl is accepted in the shifted form")
	}
}

func TestPseudoLoadShapes(t *testing.T) {
	if !parser.IsRtEqualLabel("ldr r0, =message") {
		t.Error("=label form should match")
	}
	if parser.IsRtEqualLabel("ldr r0, =#42") {
		t.Error("=label form should not match an immediate")
	}
	if !parser.IsRtEqualImmed("ldr r0, =#42") {
		t.Error("=#imm form should match")
	}
	if !parser.IsRtEqualImmed("ldr r0, =#-0x10") {
		t.Error("negative hex =#imm form should match")
	}
}

func TestIsLabel(t *testing.T) {
	if !parser.IsLabel("b loop") {
		t.Error("branch to label should match")
	}
	if !parser.IsLabel("bl print_value") {
		t.Error("underscored label should match")
	}
	if parser.IsLabel("b 4loop, extra") {
		t.Error("malformed target should not match")
	}
}
