package codegen_test

import (
	"strings"
	"testing"

	"kiln/internal/codegen"
	"kiln/internal/ir"
)

func TestCreateStub(t *testing.T) {
	top := ir.NewGenerator("soc")
	top.Port(ir.In, "clk", 1, nil, ir.Clock, false)
	top.Port(ir.In, "data_in", 16, nil, ir.Data, true)
	mem, _ := top.Port(ir.Out, "mem", 8, []uint32{4}, ir.Data, false)
	mem.IsPacked = true
	top.Port(ir.Out, "done", 1, nil, ir.Data, false)

	// internals must not leak into the stub
	x, _ := top.Var("scratch", 8, nil, false)
	c, _ := top.Constant(1, 8, false)
	stmt, _ := x.AssignKind(c, ir.Blocking)
	top.AddStmt(stmt)

	stub, err := codegen.CreateStub(top)
	if err != nil {
		t.Fatalf("stub: %v", err)
	}

	want := "module soc (\n" +
		"  input logic clk,\n" +
		"  input logic signed [15:0] data_in,\n" +
		"  output logic done,\n" +
		"  output logic [3:0] [7:0] mem\n" +
		");\n" +
		"\n" +
		"endmodule   // soc\n"
	if stub != want {
		t.Fatalf("unexpected stub:\n%s\nwant:\n%s", stub, want)
	}
	if strings.Contains(stub, "scratch") {
		t.Fatalf("stub must not contain internals:\n%s", stub)
	}
}

func TestStubClonesInterfacePorts(t *testing.T) {
	def := busDefinition(t, 8)
	top := ir.NewGenerator("soc")
	ref, err := top.InterfaceInstance(def, "bus_if")
	if err != nil {
		t.Fatalf("instance: %v", err)
	}
	if _, err := top.InterfacePort(ref, "bus_port"); err != nil {
		t.Fatalf("interface port: %v", err)
	}
	top.Port(ir.In, "clk", 1, nil, ir.Clock, false)

	stub, err := codegen.CreateStub(top)
	if err != nil {
		t.Fatalf("stub: %v", err)
	}
	// interface ports degrade to plain logic ports in the stub
	want := "module soc (\n" +
		"  inout logic bus_port,\n" +
		"  input logic clk\n" +
		");\n" +
		"\n" +
		"endmodule   // soc\n"
	if stub != want {
		t.Fatalf("unexpected stub:\n%s\nwant:\n%s", stub, want)
	}
	if len(top.PortNames()) != 2 || !strings.Contains(stub, "bus_port") {
		t.Fatalf("the stub port set must equal top's")
	}
}

func TestStubPortSetMatchesTop(t *testing.T) {
	top := ir.NewGenerator("soc")
	top.Port(ir.In, "a", 4, nil, ir.Data, false)
	top.Port(ir.Out, "b", 2, []uint32{8}, ir.Data, true)

	stub, err := codegen.CreateStub(top)
	if err != nil {
		t.Fatalf("stub: %v", err)
	}
	for _, decl := range []string{
		"input logic [3:0] a",
		"output logic signed [1:0] b [7:0]",
	} {
		if !strings.Contains(stub, decl) {
			t.Fatalf("missing port %q in stub:\n%s", decl, stub)
		}
	}
}
