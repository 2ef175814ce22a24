package solver

import "testing"

func TestRegistryAddAndLookup(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Add(Operator{ID: "op-b", Fitness: 2, Cycle: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := reg.Add(Operator{ID: "op-a", Fitness: 1, Cycle: 2}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if reg.Len() != 2 {
		t.Fatalf("len = %d, want 2", reg.Len())
	}
	op, ok := reg.Get("op-b")
	if !ok || op.Fitness != 2 {
		t.Fatalf("get op-b = %+v ok=%v", op, ok)
	}
	ids := reg.IDs()
	if len(ids) != 2 || ids[0] != "op-a" || ids[1] != "op-b" {
		t.Fatalf("ids = %v, want sorted [op-a op-b]", ids)
	}
	ops := reg.Operators()
	if len(ops) != 2 || ops[0].ID != "op-b" || ops[1].ID != "op-a" {
		t.Fatalf("operators = %+v, want insertion order", ops)
	}
}

func TestRegistryRejectsDuplicatesAndEmptyIDs(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Add(Operator{}); err == nil {
		t.Fatalf("expected empty id to fail")
	}
	if err := reg.Add(Operator{ID: "op-1"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := reg.Add(Operator{ID: "op-1"}); err == nil {
		t.Fatalf("expected duplicate id to fail")
	}
	if reg.Len() != 1 {
		t.Fatalf("len = %d, want 1", reg.Len())
	}
}
