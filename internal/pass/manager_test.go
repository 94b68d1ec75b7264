package pass_test

import (
	"errors"
	"testing"

	"kiln/internal/ir"
	"kiln/internal/pass"
)

func TestManagerRunsInOrder(t *testing.T) {
	m := pass.NewManager()
	var order []string
	for _, name := range []string{"first", "second", "third"} {
		if err := m.Register(name, func(*ir.Generator) error {
			order = append(order, name)
			return nil
		}); err != nil {
			t.Fatalf("register: %v", err)
		}
	}
	if err := m.Run(ir.NewGenerator("top")); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(order) != 3 || order[0] != "first" || order[1] != "second" || order[2] != "third" {
		t.Fatalf("expected registration order, got %v", order)
	}
	if got := len(m.Timings().Spans); got != 3 {
		t.Fatalf("expected 3 timed spans, got %d", got)
	}
}

func TestManagerFailFast(t *testing.T) {
	m := pass.NewManager()
	boom := errors.New("boom")
	ran := 0
	m.Register("a", func(*ir.Generator) error { ran++; return nil })
	m.Register("b", func(*ir.Generator) error { return boom })
	m.Register("c", func(*ir.Generator) error { ran++; return nil })
	if err := m.Run(ir.NewGenerator("top")); !errors.Is(err, boom) {
		t.Fatalf("expected the pass error, got %v", err)
	}
	if ran != 1 {
		t.Fatalf("expected the manager to stop at the first error, ran %d extra passes", ran-1)
	}
}

func TestManagerMidRunRegistration(t *testing.T) {
	m := pass.NewManager()
	var order []string
	m.Register("a", func(*ir.Generator) error {
		order = append(order, "a")
		return m.Register("late", func(*ir.Generator) error {
			order = append(order, "late")
			return nil
		})
	})
	m.Register("b", func(*ir.Generator) error {
		order = append(order, "b")
		return nil
	})
	if err := m.Run(ir.NewGenerator("top")); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(order) != 3 || order[2] != "late" {
		t.Fatalf("a pass registered mid-run must execute in the same sweep, got %v", order)
	}
}

func TestManagerDuplicateName(t *testing.T) {
	m := pass.NewManager()
	m.Register("a", func(*ir.Generator) error { return nil })
	if err := m.Register("a", func(*ir.Generator) error { return nil }); err == nil {
		t.Fatalf("expected duplicate pass name to be rejected")
	}
}
