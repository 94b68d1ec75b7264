package debugdb_test

import (
	"path/filepath"
	"testing"

	"kiln/internal/codegen"
	"kiln/internal/debugdb"
	"kiln/internal/ir"
)

func buildDesign(t *testing.T) (*ir.Generator, codegen.LineInfo) {
	t.Helper()
	top := ir.NewGenerator("soc")
	top.Debug = true
	a, _ := top.Port(ir.In, "a", 4, nil, ir.Data, false)
	b, _ := top.Port(ir.Out, "b", 4, nil, ir.Data, false)
	stmt, _ := b.AssignKind(a, ir.Blocking)
	top.AddStmt(stmt)

	core := ir.NewGenerator("core")
	core.Port(ir.In, "clk", 1, nil, ir.Clock, false)
	if err := top.AddChild("core0", core); err != nil {
		t.Fatalf("child: %v", err)
	}
	x, _ := top.Var("x", 1, nil, false)
	inst, err := top.Instantiate(core, map[string]*ir.Var{"clk": x})
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	top.AddStmt(inst)

	res, err := codegen.Generate(top, codegen.Options{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	return top, res.Lines
}

func TestSaveLoadRoundTrip(t *testing.T) {
	top, lines := buildDesign(t)

	db := debugdb.NewDatabase("soc")
	db.SetBreakPoints(lines)
	v := top.GetVar("x")
	db.SetVariableMapping(map[*ir.Generator]map[string]*ir.Var{
		top: {"x_src": v},
	})
	db.CollectStructure(top)

	path := filepath.Join(t.TempDir(), "debug", "soc.db")
	if err := db.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	var payload debugdb.Payload
	ok, err := debugdb.Load(path, &payload)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !ok {
		t.Fatalf("expected the database file to exist")
	}
	if payload.TopName != "soc" {
		t.Fatalf("expected top name soc, got %s", payload.TopName)
	}
	if len(payload.BreakPoints) == 0 {
		t.Fatalf("expected break points from the emission lines")
	}
	for _, bp := range payload.BreakPoints {
		if bp.Line < 1 {
			t.Fatalf("line numbers are 1-based, got %d", bp.Line)
		}
	}
	if len(payload.Variables) != 1 || payload.Variables[0].Source != "x_src" {
		t.Fatalf("unexpected variable mapping: %v", payload.Variables)
	}
	if len(payload.Hierarchy) != 1 || payload.Hierarchy[0].Child != "soc.core0" {
		t.Fatalf("unexpected hierarchy: %v", payload.Hierarchy)
	}
	if len(payload.Connections) != 1 {
		t.Fatalf("expected one recorded connection, got %v", payload.Connections)
	}
}

func TestLoadMissingFile(t *testing.T) {
	var payload debugdb.Payload
	ok, err := debugdb.Load(filepath.Join(t.TempDir(), "absent.db"), &payload)
	if err != nil {
		t.Fatalf("a missing file is not an error: %v", err)
	}
	if ok {
		t.Fatalf("a missing file must report ok=false")
	}
}

func TestBreakPointsSkipVars(t *testing.T) {
	top, lines := buildDesign(t)
	_ = top
	db := debugdb.NewDatabase("")
	db.SetBreakPoints(lines)

	var payload debugdb.Payload
	path := filepath.Join(t.TempDir(), "soc.db")
	if err := db.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := debugdb.Load(path, &payload); err != nil {
		t.Fatalf("load: %v", err)
	}
	if payload.TopName != "TOP" {
		t.Fatalf("expected the default top name, got %s", payload.TopName)
	}
	// ports and vars are recorded by the emitter too; only statements
	// become break points
	stmts := 0
	for node := range lines {
		if _, ok := node.(*ir.Stmt); ok {
			stmts++
		}
	}
	if len(payload.BreakPoints) != stmts {
		t.Fatalf("expected %d break points, got %d", stmts, len(payload.BreakPoints))
	}
}
