package kiln_test

import (
	"strings"
	"testing"

	"kiln"
)

func TestEndToEnd(t *testing.T) {
	top := kiln.NewGenerator("counter")
	clk, _ := top.Port(kiln.In, "clk", 1, nil, kiln.Clock, false)
	rst, _ := top.Port(kiln.In, "rst", 1, nil, kiln.AsyncReset, false)
	out, _ := top.Port(kiln.Out, "value", 8, nil, kiln.Data, false)
	count, _ := top.Var("count", 8, nil, false)

	seq, err := kiln.NewSequential(
		kiln.EdgeVar{Edge: kiln.Posedge, Var: clk},
		kiln.EdgeVar{Edge: kiln.Posedge, Var: rst},
	)
	if err != nil {
		t.Fatalf("sequential: %v", err)
	}
	next, err := count.AddConst(1)
	if err != nil {
		t.Fatalf("expr: %v", err)
	}
	zero, _ := top.Constant(0, 8, false)

	ifStmt := kiln.NewIf(rst)
	resetStmt, _ := count.AssignKind(zero, kiln.NonBlocking)
	if err := ifStmt.AddThen(resetStmt); err != nil {
		t.Fatalf("then: %v", err)
	}
	stepStmt, _ := count.AssignKind(next, kiln.NonBlocking)
	if err := ifStmt.AddElse(stepStmt); err != nil {
		t.Fatalf("else: %v", err)
	}
	if err := seq.Add(ifStmt); err != nil {
		t.Fatalf("add: %v", err)
	}
	top.AddStmt(seq)

	mirror, _ := out.AssignKind(count, kiln.Blocking)
	top.AddStmt(mirror)

	srcs, err := kiln.GenerateVerilog(top)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	src := srcs["counter"]
	for _, fragment := range []string{
		"module counter (",
		"always_ff @(posedge clk, posedge rst) begin",
		"if (rst) begin",
		"count <= 8'h0;",
		"else count <= count + 8'h1;",
		"assign value = count;",
		"endmodule   // counter",
	} {
		if !strings.Contains(src, fragment) {
			t.Fatalf("missing %q in:\n%s", fragment, src)
		}
	}
}

func TestFacadePasses(t *testing.T) {
	top := kiln.NewGenerator("mod")
	a, _ := top.Port(kiln.In, "a", 1, nil, kiln.Data, false)
	b, _ := top.Port(kiln.Out, "b", 1, nil, kiln.Data, false)

	m := kiln.NewPassManager()
	err := m.Register("wire-through", func(g *kiln.Generator) error {
		stmt, err := b.AssignKind(a, kiln.Blocking)
		if err != nil {
			return err
		}
		g.AddStmt(stmt)
		return nil
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := m.Run(top); err != nil {
		t.Fatalf("run: %v", err)
	}
	srcs, err := kiln.GenerateVerilog(top)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(srcs["mod"], "assign b = a;") {
		t.Fatalf("pass mutation must be visible in emission:\n%s", srcs["mod"])
	}
}

func TestErrorCode(t *testing.T) {
	top := kiln.NewGenerator("mod")
	if _, err := top.Constant(300, 8, false); err == nil {
		t.Fatalf("expected an out-of-range constant to fail")
	} else if kiln.ErrorCode(err) != kiln.CodeConstOutOfRange {
		t.Fatalf("expected CodeConstOutOfRange, got %v", err)
	}
}
