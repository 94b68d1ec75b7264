package ir_test

import (
	"testing"

	"kiln/internal/ir"
)

func TestGeneratorStmtList(t *testing.T) {
	g := ir.NewGenerator("mod")
	a, _ := g.Var("a", 4, nil, false)
	b, _ := g.Var("b", 4, nil, false)
	c, _ := g.Var("c", 4, nil, false)

	s1, _ := b.AssignKind(a, ir.Blocking)
	s2, _ := c.AssignKind(a, ir.Blocking)
	g.AddStmt(s1)
	g.AddStmt(s2)
	g.AddStmt(s1) // duplicates are ignored
	if g.StmtsCount() != 2 {
		t.Fatalf("expected 2 statements, got %d", g.StmtsCount())
	}
	if g.GetStmt(0) != s1 || g.GetStmt(1) != s2 {
		t.Fatalf("statement order must be insertion order")
	}
	g.RemoveStmt(s1)
	if g.StmtsCount() != 1 || g.GetStmt(0) != s2 {
		t.Fatalf("remove must keep the remaining order")
	}
}

func TestGeneratorEnum(t *testing.T) {
	g := ir.NewGenerator("mod")
	def, err := g.Enum("state_t", map[string]int64{"IDLE": 0, "RUN": 1}, 2)
	if err != nil {
		t.Fatalf("enum: %v", err)
	}
	if def.Member("IDLE").Const.Value != 0 || def.Member("RUN").Const.Value != 1 {
		t.Fatalf("enum members must keep their values")
	}
}

func TestEnumValueRange(t *testing.T) {
	g := ir.NewGenerator("mod")
	if _, err := g.Enum("state_t", map[string]int64{"X": 4}, 2); err == nil {
		t.Fatalf("expected out-of-range enum value to be rejected")
	}
}

func TestNamedBlocks(t *testing.T) {
	g := ir.NewGenerator("mod")
	blk := ir.NewCombinational()
	if err := g.AddNamedBlock("logic_blk", blk); err != nil {
		t.Fatalf("label: %v", err)
	}
	if g.GetNamedBlock("logic_blk") != blk {
		t.Fatalf("labeled block must be retrievable")
	}
	if err := g.AddNamedBlock("logic_blk", ir.NewCombinational()); err == nil {
		t.Fatalf("expected duplicate label to be rejected")
	}
}

func TestInstantiateChecksPorts(t *testing.T) {
	top := ir.NewGenerator("top")
	child := ir.NewGenerator("leaf")
	if _, err := child.Port(ir.In, "a", 4, nil, ir.Data, false); err != nil {
		t.Fatalf("port: %v", err)
	}
	if err := top.AddChild("leaf0", child); err != nil {
		t.Fatalf("add child: %v", err)
	}
	x, _ := top.Var("x", 4, nil, false)

	if _, err := top.Instantiate(child, map[string]*ir.Var{"nope": x}); err == nil {
		t.Fatalf("expected unknown port to be rejected")
	}
	stmt, err := top.Instantiate(child, map[string]*ir.Var{"a": x})
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	if stmt.Inst.Target != child {
		t.Fatalf("instantiation must reference the child")
	}
}

func TestSwitchConstruction(t *testing.T) {
	g := ir.NewGenerator("mod")
	s, _ := g.Var("s", 2, nil, false)
	sw := ir.NewSwitch(s)

	c0, _ := g.Constant(0, 2, false)
	if _, err := sw.AddCase(c0); err != nil {
		t.Fatalf("case: %v", err)
	}
	dup, _ := g.Constant(0, 2, false)
	if _, err := sw.AddCase(dup); err == nil {
		t.Fatalf("expected duplicate case value to be rejected")
	}
	if _, err := sw.AddCase(nil); err != nil {
		t.Fatalf("default: %v", err)
	}
	if _, err := sw.AddCase(nil); err == nil {
		t.Fatalf("expected a second default to be rejected")
	}
}

func TestSequentialSensitivity(t *testing.T) {
	g := ir.NewGenerator("mod")
	clk, _ := g.Port(ir.In, "clk", 1, nil, ir.Clock, false)
	seq, err := ir.NewSequential(ir.EdgeVar{Edge: ir.Posedge, Var: clk})
	if err != nil {
		t.Fatalf("sequential: %v", err)
	}
	if err := seq.AddSensitivity(ir.Posedge, clk); err == nil {
		t.Fatalf("expected duplicate sensitivity entry to be rejected")
	}
	if err := seq.AddSensitivity(ir.Negedge, clk); err != nil {
		t.Fatalf("a different edge on the same var is fine: %v", err)
	}
}
