package codegen_test

import (
	"strings"
	"testing"

	"kiln/internal/codegen"
	"kiln/internal/ir"
)

func buildSoC(t *testing.T) (*ir.Generator, *ir.Stmt) {
	t.Helper()
	top := ir.NewGenerator("soc")
	a, _ := top.Port(ir.In, "a", 4, nil, ir.Data, false)
	b, _ := top.Port(ir.Out, "b", 4, nil, ir.Data, false)
	stmt, _ := b.AssignKind(a, ir.Blocking)
	top.AddStmt(stmt)

	core := ir.NewGenerator("core")
	core.Port(ir.In, "clk", 1, nil, ir.Clock, false)
	if err := top.AddChild("core0", core); err != nil {
		t.Fatalf("child: %v", err)
	}

	rom := ir.NewGenerator("rom")
	rom.External = true
	if err := top.AddChild("rom0", rom); err != nil {
		t.Fatalf("child: %v", err)
	}
	return top, stmt
}

func TestGenerateVerilogTree(t *testing.T) {
	top, _ := buildSoC(t)
	srcs, err := codegen.GenerateVerilog(top)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(srcs) != 2 {
		t.Fatalf("expected two modules, got %v", len(srcs))
	}
	if _, ok := srcs["soc"]; !ok {
		t.Fatalf("missing top module")
	}
	if _, ok := srcs["core"]; !ok {
		t.Fatalf("missing child module")
	}
	if _, ok := srcs["rom"]; ok {
		t.Fatalf("external modules must not be emitted")
	}
	if !strings.HasSuffix(srcs["soc"], "endmodule   // soc\n") {
		t.Fatalf("modules must end with the endmodule trailer:\n%s", srcs["soc"])
	}
}

func TestDebugLineRecording(t *testing.T) {
	top, stmt := buildSoC(t)
	top.Debug = true
	res, err := codegen.Generate(top, codegen.Options{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	line, ok := res.Lines[stmt]
	if !ok {
		t.Fatalf("debug emission must record the assignment's line")
	}
	lines := strings.Split(res.Sources["soc"], "\n")
	if line < 1 || line > len(lines) {
		t.Fatalf("recorded line %d out of range", line)
	}
	if got := lines[line-1]; got != "assign b = a;" {
		t.Fatalf("line %d should hold the assignment, got %q", line, got)
	}
}

func TestNoDebugNoLines(t *testing.T) {
	top, _ := buildSoC(t)
	res, err := codegen.Generate(top, codegen.Options{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(res.Lines) != 0 {
		t.Fatalf("line recording must be off without the debug flag, got %v", res.Lines)
	}
}

func TestNameCollisionLastWriteWins(t *testing.T) {
	top := ir.NewGenerator("top")
	first := ir.NewGenerator("dup")
	first.Port(ir.In, "a", 1, nil, ir.Data, false)
	second := ir.NewGenerator("dup")
	second.Port(ir.In, "zz", 1, nil, ir.Data, false)
	top.AddChild("d0", first)
	top.AddChild("d1", second)

	srcs, err := codegen.GenerateVerilog(top)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(srcs["dup"], "zz") {
		t.Fatalf("name collisions must resolve last-write-wins:\n%s", srcs["dup"])
	}
}

func TestParallelEmissionDeterminism(t *testing.T) {
	codegen.SetNumCPUs(4)
	defer codegen.SetNumCPUs(0)
	top, _ := buildSoC(t)
	first, err := codegen.GenerateVerilog(top)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	for i := 0; i < 16; i++ {
		again, err := codegen.GenerateVerilog(top)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		for name, src := range first {
			if again[name] != src {
				t.Fatalf("run %d differs for %s", i, name)
			}
		}
	}
}
