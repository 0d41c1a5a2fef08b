package vm_test

import (
	"testing"

	"github.com/kgrange/thumb-emulator/vm"
)

func TestITBlockQueue(t *testing.T) {
	var block vm.ITBlock
	if msgs := block.HandleStatement("itee eq"); msgs != nil {
		t.Fatalf("itee eq: %v", msgs)
	}

	// itee: the leading t governs the first instruction with the base
	// condition, each e takes the opposite
	status, msgs := block.Status(vm.CondEQ, true)
	if msgs != nil || status != vm.ITIn {
		t.Errorf("first instruction: status %v, errs %v", status, msgs)
	}
	status, msgs = block.Status(vm.CondNE, true)
	if msgs != nil || status != vm.ITIn {
		t.Errorf("second instruction: status %v, errs %v", status, msgs)
	}
	status, msgs = block.Status(vm.CondNE, true)
	if msgs != nil || status != vm.ITLast {
		t.Errorf("third instruction: status %v, errs %v", status, msgs)
	}
	if block.Pending() {
		t.Error("queue should be drained")
	}

	// outside any block
	status, _ = block.Status(vm.CondEQ, true)
	if status != vm.ITOut {
		t.Errorf("outside block: status %v, want OUT", status)
	}
}

func TestITBlockWrongCondition(t *testing.T) {
	var block vm.ITBlock
	if msgs := block.HandleStatement("it eq"); msgs != nil {
		t.Fatal(msgs)
	}
	_, msgs := block.Status(vm.CondGT, true)
	if len(msgs) != 1 {
		t.Fatalf("expected condition mismatch error, got %v", msgs)
	}
}

func TestITBlockMissingCondition(t *testing.T) {
	var block vm.ITBlock
	if msgs := block.HandleStatement("it eq"); msgs != nil {
		t.Fatal(msgs)
	}
	_, msgs := block.Status(0, false)
	if len(msgs) != 1 {
		t.Fatalf("expected missing condition error, got %v", msgs)
	}
}

func TestITBlockNesting(t *testing.T) {
	var block vm.ITBlock
	if msgs := block.HandleStatement("itt eq"); msgs != nil {
		t.Fatal(msgs)
	}
	msgs := block.HandleStatement("it ne")
	if len(msgs) != 1 {
		t.Fatalf("nested IT must error, got %v", msgs)
	}
}

func TestITBlockBadBase(t *testing.T) {
	var block vm.ITBlock
	if msgs := block.HandleStatement("it zz"); msgs == nil {
		t.Error("invalid base condition must error")
	}
}
