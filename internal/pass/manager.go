package pass

import (
	"kiln/internal/diag"
	"kiln/internal/ir"
	"kiln/internal/observ"
)

// Pass is a callable that walks a generator tree and may mutate the IR.
// Passes are expected to be idempotent when re-run after a pass that did
// not change the tree.
type Pass func(*ir.Generator) error

// Manager runs named passes in registration order, fail-fast. A running
// pass may register further passes; they execute in the same sweep.
type Manager struct {
	names  []string
	passes map[string]Pass
	timer  *observ.Timer
}

// NewManager returns an empty pass manager.
func NewManager() *Manager {
	return &Manager{
		passes: make(map[string]Pass),
		timer:  observ.NewTimer(),
	}
}

// Register appends a named pass. Duplicate names are rejected.
func (m *Manager) Register(name string, p Pass) error {
	if _, ok := m.passes[name]; ok {
		return diag.Newf(diag.DuplicateName, nil, "pass %s is already registered", name)
	}
	m.passes[name] = p
	m.names = append(m.names, name)
	return nil
}

// Names returns registered pass names in execution order.
func (m *Manager) Names() []string { return m.names }

// Run executes every registered pass over top, stopping at the first
// error. Passes registered mid-run execute after the current tail.
func (m *Manager) Run(top *ir.Generator) error {
	m.timer = observ.NewTimer()
	for i := 0; i < len(m.names); i++ {
		name := m.names[i]
		span := m.timer.Begin(name)
		err := m.passes[name](top)
		m.timer.End(span, "")
		if err != nil {
			return err
		}
	}
	return nil
}

// Timings reports per-pass durations for the last Run.
func (m *Manager) Timings() observ.Report { return m.timer.Report() }

// RunPasses executes an ordered list of anonymous passes over top,
// fail-fast.
func RunPasses(top *ir.Generator, passes ...Pass) error {
	for _, p := range passes {
		if err := p(top); err != nil {
			return err
		}
	}
	return nil
}
