package ir

import (
	"kiln/internal/diag"
)

// IfaceSignal describes one port or var of an interface definition.
type IfaceSignal struct {
	Name      string
	Width     uint32
	Size      []uint32
	Signed    bool
	Direction PortDirection // ports only
}

// ModPortDef is a named directional view over an interface's signals.
type ModPortDef struct {
	Name    string
	Inputs  []string
	Outputs []string

	def *InterfaceDefinition
}

// Ports returns every signal name visible through the modport.
func (m *ModPortDef) Ports() []string {
	out := make([]string, 0, len(m.Inputs)+len(m.Outputs))
	out = append(out, m.Inputs...)
	out = append(out, m.Outputs...)
	return out
}

// SetInput marks a definition signal as a modport input.
func (m *ModPortDef) SetInput(name string) error {
	if !m.def.hasSignal(name) {
		return diag.Newf(diag.UnknownVar, []Node{m.def}, "%s has no signal %s", m.def.name, name)
	}
	m.Inputs = append(m.Inputs, name)
	return nil
}

// SetOutput marks a definition signal as a modport output.
func (m *ModPortDef) SetOutput(name string) error {
	if !m.def.hasSignal(name) {
		return diag.Newf(diag.UnknownVar, []Node{m.def}, "%s has no signal %s", m.def.name, name)
	}
	m.Outputs = append(m.Outputs, name)
	return nil
}

// InterfaceDefinition is a reusable bundle of ports, vars and modports.
// One definition may back many instances across the generator tree; the
// aggregation pass checks that all instances agree and emits the
// definition once.
type InterfaceDefinition struct {
	name string

	ports     map[string]IfaceSignal
	portNames []string

	vars     map[string]IfaceSignal
	varNames []string

	modPorts     map[string]*ModPortDef
	modPortNames []string

	// modport projections reference the parent definition
	parent  *InterfaceDefinition
	modPort *ModPortDef
}

// NewInterface returns an empty interface definition.
func NewInterface(name string) *InterfaceDefinition {
	return &InterfaceDefinition{
		name:     name,
		ports:    make(map[string]IfaceSignal),
		vars:     make(map[string]IfaceSignal),
		modPorts: make(map[string]*ModPortDef),
	}
}

// KindName implements diag.Node.
func (d *InterfaceDefinition) KindName() string { return "interface" }

func (d *InterfaceDefinition) String() string { return d.DefName() }

// DefName is the emitted type name; modport projections render as
// "parent.modport".
func (d *InterfaceDefinition) DefName() string {
	if d.parent != nil {
		return d.parent.DefName() + "." + d.modPort.Name
	}
	return d.name
}

// IsModPort reports whether this definition is a modport projection.
func (d *InterfaceDefinition) IsModPort() bool { return d.parent != nil }

// ModPortName returns the projected modport name, empty for full
// definitions.
func (d *InterfaceDefinition) ModPortName() string {
	if d.modPort == nil {
		return ""
	}
	return d.modPort.Name
}

// Root returns the projected parent definition, or the definition itself.
func (d *InterfaceDefinition) Root() *InterfaceDefinition {
	if d.parent != nil {
		return d.parent
	}
	return d
}

func (d *InterfaceDefinition) checkSignalName(name string) error {
	if _, ok := d.ports[name]; ok {
		return diag.Newf(diag.DuplicateName, []Node{d}, "port %s already exists in %s", name, d.name)
	}
	if _, ok := d.vars[name]; ok {
		return diag.Newf(diag.DuplicateName, []Node{d}, "var %s already exists in %s", name, d.name)
	}
	return nil
}

// Port adds a directional port to the definition.
func (d *InterfaceDefinition) Port(dir PortDirection, name string, width uint32, size []uint32) error {
	if err := d.checkSignalName(name); err != nil {
		return err
	}
	d.ports[name] = IfaceSignal{Name: name, Width: width, Size: normalizeSize(size), Direction: dir}
	d.portNames = append(d.portNames, name)
	return nil
}

// Input adds an input port.
func (d *InterfaceDefinition) Input(name string, width uint32) error {
	return d.Port(In, name, width, nil)
}

// Output adds an output port.
func (d *InterfaceDefinition) Output(name string, width uint32) error {
	return d.Port(Out, name, width, nil)
}

// Var adds an internal signal to the definition.
func (d *InterfaceDefinition) Var(name string, width uint32, size []uint32) error {
	if err := d.checkSignalName(name); err != nil {
		return err
	}
	d.vars[name] = IfaceSignal{Name: name, Width: width, Size: normalizeSize(size)}
	d.varNames = append(d.varNames, name)
	return nil
}

// ModPort adds a named directional view. Signal names are validated
// against the definition as they are added.
func (d *InterfaceDefinition) ModPort(name string) (*ModPortDef, error) {
	if _, ok := d.modPorts[name]; ok {
		return nil, diag.Newf(diag.DuplicateName, []Node{d},
			"modport %s already exists in %s", name, d.name)
	}
	mp := &ModPortDef{Name: name, def: d}
	d.modPorts[name] = mp
	d.modPortNames = append(d.modPortNames, name)
	return mp, nil
}

func (d *InterfaceDefinition) hasSignal(name string) bool {
	if _, ok := d.ports[name]; ok {
		return true
	}
	_, ok := d.vars[name]
	return ok
}

// Project returns the modport projection of the definition, used to type
// interface ports that expose one side of the bundle.
func (d *InterfaceDefinition) Project(modPortName string) (*InterfaceDefinition, error) {
	mp, ok := d.modPorts[modPortName]
	if !ok {
		return nil, diag.Newf(diag.UnknownVar, []Node{d},
			"%s has no modport %s", d.name, modPortName)
	}
	return &InterfaceDefinition{parent: d, modPort: mp}, nil
}

// PortNames returns port names in declaration order.
func (d *InterfaceDefinition) PortNames() []string { return d.portNames }

// VarNames returns var names in declaration order.
func (d *InterfaceDefinition) VarNames() []string { return d.varNames }

// ModPortNames returns modport names in declaration order.
func (d *InterfaceDefinition) ModPortNames() []string { return d.modPortNames }

// PortSignal returns the named port descriptor.
func (d *InterfaceDefinition) PortSignal(name string) (IfaceSignal, bool) {
	s, ok := d.ports[name]
	return s, ok
}

// VarSignal returns the named var descriptor.
func (d *InterfaceDefinition) VarSignal(name string) (IfaceSignal, bool) {
	s, ok := d.vars[name]
	return s, ok
}

// ModPortDefByName returns the named modport.
func (d *InterfaceDefinition) ModPortDefByName(name string) (*ModPortDef, bool) {
	mp, ok := d.modPorts[name]
	return mp, ok
}

func sameSignal(a, b IfaceSignal) bool {
	if a.Name != b.Name || a.Width != b.Width || a.Signed != b.Signed || a.Direction != b.Direction {
		return false
	}
	if len(a.Size) != len(b.Size) {
		return false
	}
	for i := range a.Size {
		if a.Size[i] != b.Size[i] {
			return false
		}
	}
	return true
}

// SameDefinition reports whether two definitions agree on ordered ports,
// port attributes, vars, var attributes and modports.
func SameDefinition(a, b *InterfaceDefinition) bool {
	if a == b {
		return true
	}
	if a.DefName() != b.DefName() || a.IsModPort() != b.IsModPort() {
		return false
	}
	if len(a.portNames) != len(b.portNames) || len(a.varNames) != len(b.varNames) ||
		len(a.modPortNames) != len(b.modPortNames) {
		return false
	}
	for i, name := range a.portNames {
		if b.portNames[i] != name || !sameSignal(a.ports[name], b.ports[name]) {
			return false
		}
	}
	for i, name := range a.varNames {
		if b.varNames[i] != name || !sameSignal(a.vars[name], b.vars[name]) {
			return false
		}
	}
	for i, name := range a.modPortNames {
		if b.modPortNames[i] != name {
			return false
		}
		ma, mb := a.modPorts[name], b.modPorts[name]
		if len(ma.Inputs) != len(mb.Inputs) || len(ma.Outputs) != len(mb.Outputs) {
			return false
		}
		for j := range ma.Inputs {
			if ma.Inputs[j] != mb.Inputs[j] {
				return false
			}
		}
		for j := range ma.Outputs {
			if ma.Outputs[j] != mb.Outputs[j] {
				return false
			}
		}
	}
	return true
}

// InterfaceRef is one named instance of an interface definition inside a
// generator. Signal accessors materialize vars lazily so the instance's
// signals can participate in assignments.
type InterfaceRef struct {
	Name string
	Def  *InterfaceDefinition

	gen     *Generator
	signals map[string]*Var
}

func newInterfaceRef(g *Generator, def *InterfaceDefinition, name string) *InterfaceRef {
	return &InterfaceRef{
		Name:    name,
		Def:     def,
		gen:     g,
		signals: make(map[string]*Var),
	}
}

// KindName implements diag.Node.
func (r *InterfaceRef) KindName() string { return "interface instance" }

func (r *InterfaceRef) String() string { return r.Def.DefName() + " " + r.Name }

// Generator returns the owning generator.
func (r *InterfaceRef) Generator() *Generator { return r.gen }

// DeclPort materializes a definition port as a standalone port var, used
// when emitting the interface declaration itself.
func (r *InterfaceRef) DeclPort(name string) (*Var, error) {
	sig, ok := r.Def.Root().PortSignal(name)
	if !ok {
		return nil, diag.Newf(diag.UnknownPort, []Node{r},
			"%s has no port %s", r.Def.DefName(), name)
	}
	v := newVar(r.gen, name, sig.Width, sig.Signed, PortIO)
	v.Size = normalizeSize(sig.Size)
	v.Port = &PortInfo{Direction: sig.Direction}
	return v, nil
}

// DeclVar materializes a definition var as a standalone var, used when
// emitting the interface declaration itself.
func (r *InterfaceRef) DeclVar(name string) (*Var, error) {
	sig, ok := r.Def.Root().VarSignal(name)
	if !ok {
		return nil, diag.Newf(diag.UnknownVar, []Node{r},
			"%s has no var %s", r.Def.DefName(), name)
	}
	v := newVar(r.gen, name, sig.Width, sig.Signed, Base)
	v.Size = normalizeSize(sig.Size)
	return v, nil
}

// Signal returns the var standing for one interface signal, rendered as
// "<instance>.<signal>".
func (r *InterfaceRef) Signal(name string) (*Var, error) {
	if v, ok := r.signals[name]; ok {
		return v, nil
	}
	root := r.Def.Root()
	sig, ok := root.PortSignal(name)
	if !ok {
		sig, ok = root.VarSignal(name)
	}
	if !ok {
		return nil, diag.Newf(diag.UnknownVar, []Node{r},
			"%s has no signal %s", r.Def.DefName(), name)
	}
	v := newVar(r.gen, r.Name+"."+name, sig.Width, sig.Signed, Base)
	v.Size = normalizeSize(sig.Size)
	r.signals[name] = v
	return v, nil
}
