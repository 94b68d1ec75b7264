package codegen_test

import (
	"strings"
	"testing"

	"kiln/internal/codegen"
	"kiln/internal/diag"
	"kiln/internal/ir"
)

func busDefinition(t *testing.T, dataWidth uint32) *ir.InterfaceDefinition {
	t.Helper()
	def := ir.NewInterface("bus")
	if err := def.Var("data", dataWidth, nil); err != nil {
		t.Fatalf("var: %v", err)
	}
	if err := def.Var("valid", 1, nil); err != nil {
		t.Fatalf("var: %v", err)
	}
	mp, err := def.ModPort("consumer")
	if err != nil {
		t.Fatalf("modport: %v", err)
	}
	if err := mp.SetInput("data"); err != nil {
		t.Fatalf("input: %v", err)
	}
	if err := mp.SetInput("valid"); err != nil {
		t.Fatalf("input: %v", err)
	}
	return def
}

func addInstance(t *testing.T, g *ir.Generator, def *ir.InterfaceDefinition, name string) {
	t.Helper()
	ref, err := g.InterfaceInstance(def, name)
	if err != nil {
		t.Fatalf("instance: %v", err)
	}
	g.AddStmt(ir.NewInterfaceInstantiation(ref))
}

func TestInterfaceAggregation(t *testing.T) {
	top := ir.NewGenerator("top")
	child := ir.NewGenerator("leaf")
	if err := top.AddChild("leaf0", child); err != nil {
		t.Fatalf("child: %v", err)
	}
	addInstance(t, top, busDefinition(t, 8), "bus0")
	addInstance(t, child, busDefinition(t, 8), "bus1")

	infos, err := codegen.ExtractInterfaceInfo(top)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("expected one definition, got %d", len(infos))
	}
	src, ok := infos["bus"]
	if !ok {
		t.Fatalf("missing bus definition: %v", infos)
	}
	want := "interface bus;\n" +
		"  logic [7:0] data;\n" +
		"  logic valid;\n" +
		"  modport consumer(input data, input valid);\n" +
		"endinterface\n"
	if src != want {
		t.Fatalf("unexpected interface source:\n%s\nwant:\n%s", src, want)
	}
	if strings.Count(src, "data") != 2 {
		t.Fatalf("every var must appear once in the body and once in the modport:\n%s", src)
	}
}

func TestInterfaceMismatch(t *testing.T) {
	top := ir.NewGenerator("top")
	child := ir.NewGenerator("leaf")
	if err := top.AddChild("leaf0", child); err != nil {
		t.Fatalf("child: %v", err)
	}
	addInstance(t, top, busDefinition(t, 8), "bus0")
	addInstance(t, child, busDefinition(t, 16), "bus1")

	_, err := codegen.ExtractInterfaceInfo(top)
	if err == nil {
		t.Fatalf("expected mismatching definitions to be rejected")
	}
	if diag.CodeOf(err) != diag.InterfaceMismatch {
		t.Fatalf("expected InterfaceMismatch, got %v", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "top") || !strings.Contains(msg, "leaf0") {
		t.Fatalf("the error must name both offenders: %s", msg)
	}
}

func TestInterfaceWithPorts(t *testing.T) {
	def := ir.NewInterface("link")
	if err := def.Input("clk", 1); err != nil {
		t.Fatalf("port: %v", err)
	}
	if err := def.Var("payload", 32, nil); err != nil {
		t.Fatalf("var: %v", err)
	}
	mp, _ := def.ModPort("rx")
	mp.SetInput("payload")

	top := ir.NewGenerator("top")
	addInstance(t, top, def, "link0")

	infos, err := codegen.ExtractInterfaceInfo(top)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	want := "interface link(\n" +
		"  input logic clk\n" +
		");\n" +
		"  logic [31:0] payload;\n" +
		"  modport rx(input payload);\n" +
		"endinterface\n"
	if infos["link"] != want {
		t.Fatalf("unexpected interface source:\n%s\nwant:\n%s", infos["link"], want)
	}
}

func TestEmptyModPortFatal(t *testing.T) {
	def := ir.NewInterface("bad")
	def.Var("data", 8, nil)
	if _, err := def.ModPort("hollow"); err != nil {
		t.Fatalf("modport: %v", err)
	}
	top := ir.NewGenerator("top")
	addInstance(t, top, def, "bad0")

	_, err := codegen.ExtractInterfaceInfo(top)
	if err == nil {
		t.Fatalf("expected an empty modport to be rejected")
	}
	if diag.CodeOf(err) != diag.EmptyModPort {
		t.Fatalf("expected EmptyModPort, got %v", err)
	}
}

func TestInterfaceInstantiationEmission(t *testing.T) {
	def := busDefinition(t, 8)
	g := ir.NewGenerator("mod")
	addInstance(t, g, def, "bus0")

	res, err := codegen.Generate(g, codegen.Options{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(res.Sources["mod"], "bus bus0();\n") {
		t.Fatalf("missing interface instantiation:\n%s", res.Sources["mod"])
	}
}

func TestInterfacePortHeader(t *testing.T) {
	def := busDefinition(t, 8)
	proj, err := def.Project("consumer")
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	g := ir.NewGenerator("mod")
	ref, err := g.InterfaceInstance(proj, "bus_if")
	if err != nil {
		t.Fatalf("instance: %v", err)
	}
	if _, err := g.InterfacePort(ref, "bus_port"); err != nil {
		t.Fatalf("interface port: %v", err)
	}
	if _, err := g.Port(ir.In, "clk", 1, nil, ir.Clock, false); err != nil {
		t.Fatalf("port: %v", err)
	}

	got := emit(t, g)
	want := "module mod (\n" +
		"  bus.consumer bus_if,\n" +
		"  input logic clk\n" +
		");\n"
	if !strings.HasPrefix(got, want) {
		t.Fatalf("interface ports must precede scalar ports:\n%s", got)
	}
}
