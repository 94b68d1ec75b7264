package ir

import (
	"kiln/internal/diag"
)

// Generator is a hardware module under construction: a named scope owning
// ports, variables, parameters, enums, functions, interface instances,
// child instances and an ordered statement list.
type Generator struct {
	Name         string
	InstanceName string
	// External marks a black-box module; the code generator emits nothing
	// for it.
	External bool
	// Debug turns on emission line recording for the debug side channel.
	Debug   bool
	Comment string

	parent *Generator

	ports     map[string]*Var
	portNames []string

	vars     map[string]*Var
	varNames []string

	params     map[string]*Var
	paramNames []string

	enums     map[string]*EnumDef
	enumNames []string

	funcs     map[string]*Stmt
	funcNames []string

	ifaces     map[string]*InterfaceRef
	ifaceNames []string

	children   []*Generator
	childIndex map[string]*Generator

	stmts []*Stmt

	namedBlocks map[string]*Stmt
	blockLabels []string
}

// NewGenerator returns an empty generator with the given module name.
func NewGenerator(name string) *Generator {
	return &Generator{
		Name:        name,
		ports:       make(map[string]*Var),
		vars:        make(map[string]*Var),
		params:      make(map[string]*Var),
		enums:       make(map[string]*EnumDef),
		funcs:       make(map[string]*Stmt),
		ifaces:      make(map[string]*InterfaceRef),
		childIndex:  make(map[string]*Generator),
		namedBlocks: make(map[string]*Stmt),
	}
}

// KindName implements diag.Node.
func (g *Generator) KindName() string { return "generator" }

func (g *Generator) String() string { return g.Name }

// HandleName is the dot-joined instance path from the root generator.
func (g *Generator) HandleName() string {
	name := g.Name
	if g.InstanceName != "" {
		name = g.InstanceName
	}
	if g.parent == nil {
		return name
	}
	return g.parent.HandleName() + "." + name
}

// Parent returns the enclosing generator, nil for the root.
func (g *Generator) Parent() *Generator { return g.parent }

func (g *Generator) checkNewName(name string) error {
	if name == "" {
		return diag.New(diag.ConstructionError, "empty name", g)
	}
	if _, ok := g.ports[name]; ok {
		return diag.Newf(diag.DuplicateName, []Node{g}, "port %s already exists in %s", name, g.Name)
	}
	if _, ok := g.vars[name]; ok {
		return diag.Newf(diag.DuplicateName, []Node{g}, "variable %s already exists in %s", name, g.Name)
	}
	if _, ok := g.params[name]; ok {
		return diag.Newf(diag.DuplicateName, []Node{g}, "parameter %s already exists in %s", name, g.Name)
	}
	if _, ok := g.enums[name]; ok {
		return diag.Newf(diag.DuplicateName, []Node{g}, "enum %s already exists in %s", name, g.Name)
	}
	if _, ok := g.funcs[name]; ok {
		return diag.Newf(diag.DuplicateName, []Node{g}, "function %s already exists in %s", name, g.Name)
	}
	return nil
}

func normalizeSize(size []uint32) []uint32 {
	if len(size) == 0 {
		return []uint32{1}
	}
	out := make([]uint32, len(size))
	copy(out, size)
	return out
}

// Port creates a module port. A nil size means scalar.
func (g *Generator) Port(dir PortDirection, name string, width uint32, size []uint32, ptype PortType, signed bool) (*Var, error) {
	if err := g.checkNewName(name); err != nil {
		return nil, err
	}
	if width == 0 {
		return nil, diag.Newf(diag.ConstructionError, []Node{g}, "port %s cannot have zero width", name)
	}
	p := newVar(g, name, width, signed, PortIO)
	p.Size = normalizeSize(size)
	p.Port = &PortInfo{Direction: dir, Type: ptype}
	g.ports[name] = p
	g.portNames = append(g.portNames, name)
	return p, nil
}

// Var creates a named variable. A nil size means scalar.
func (g *Generator) Var(name string, width uint32, size []uint32, signed bool) (*Var, error) {
	if err := g.checkNewName(name); err != nil {
		return nil, err
	}
	if width == 0 {
		return nil, diag.Newf(diag.ConstructionError, []Node{g}, "variable %s cannot have zero width", name)
	}
	v := newVar(g, name, width, signed, Base)
	v.Size = normalizeSize(size)
	g.vars[name] = v
	g.varNames = append(g.varNames, name)
	return v, nil
}

// EnumVar creates a variable typed after an enum definition.
func (g *Generator) EnumVar(name string, def *EnumDef) (*Var, error) {
	v, err := g.Var(name, def.Width, nil, false)
	if err != nil {
		return nil, err
	}
	v.Enum = def
	return v, nil
}

// StructVar creates a variable typed after a packed struct.
func (g *Generator) StructVar(name string, def *PackedStruct) (*Var, error) {
	v, err := g.Var(name, def.Width(), nil, false)
	if err != nil {
		return nil, err
	}
	v.Struct = def
	return v, nil
}

// StructPort creates a port typed after a packed struct.
func (g *Generator) StructPort(dir PortDirection, name string, def *PackedStruct) (*Var, error) {
	p, err := g.Port(dir, name, def.Width(), nil, Data, false)
	if err != nil {
		return nil, err
	}
	p.Struct = def
	return p, nil
}

// Parameter creates a module parameter with the given default value.
func (g *Generator) Parameter(name string, value int64) (*Var, error) {
	if err := g.checkNewName(name); err != nil {
		return nil, err
	}
	p := newVar(g, name, 32, true, Parameter)
	p.Param = &ParamInfo{Value: value}
	g.params[name] = p
	g.paramNames = append(g.paramNames, name)
	return p, nil
}

// Constant creates an integer literal owned by this generator.
func (g *Generator) Constant(value int64, width uint32, signed bool) (*Var, error) {
	return newConst(g, value, width, signed)
}

// GetPort returns the named port, nil when absent.
func (g *Generator) GetPort(name string) *Var { return g.ports[name] }

// GetVar resolves a name against ports, variables and parameters.
func (g *Generator) GetVar(name string) *Var {
	if name == "" {
		return nil
	}
	if p, ok := g.ports[name]; ok {
		return p
	}
	if v, ok := g.vars[name]; ok {
		return v
	}
	if p, ok := g.params[name]; ok {
		return p
	}
	return nil
}

// GetParam returns the named parameter, nil when absent.
func (g *Generator) GetParam(name string) *Var { return g.params[name] }

// PortNames returns port names in declaration order.
func (g *Generator) PortNames() []string { return g.portNames }

// VarNames returns variable names in declaration order.
func (g *Generator) VarNames() []string { return g.varNames }

// ParamNames returns parameter names in declaration order.
func (g *Generator) ParamNames() []string { return g.paramNames }

// EnumNames returns enum names in declaration order.
func (g *Generator) EnumNames() []string { return g.enumNames }

// GetEnum returns the named enum definition, nil when absent.
func (g *Generator) GetEnum(name string) *EnumDef { return g.enums[name] }

// FunctionNames returns function names in declaration order.
func (g *Generator) FunctionNames() []string { return g.funcNames }

// GetFunction returns the named function block, nil when absent.
func (g *Generator) GetFunction(name string) *Stmt { return g.funcs[name] }

// InterfaceNames returns interface instance names in declaration order.
func (g *Generator) InterfaceNames() []string { return g.ifaceNames }

// GetInterface returns the named interface instance, nil when absent.
func (g *Generator) GetInterface(name string) *InterfaceRef { return g.ifaces[name] }

// AddStmt appends a top-level statement.
func (g *Generator) AddStmt(stmt *Stmt) {
	for _, existing := range g.stmts {
		if existing == stmt {
			return
		}
	}
	stmt.parent = g
	g.stmts = append(g.stmts, stmt)
}

// RemoveStmt detaches a top-level statement.
func (g *Generator) RemoveStmt(stmt *Stmt) {
	g.stmts = removeStmt(g.stmts, stmt)
}

// StmtsCount returns the number of top-level statements.
func (g *Generator) StmtsCount() int { return len(g.stmts) }

// GetStmt returns the i-th top-level statement.
func (g *Generator) GetStmt(i int) *Stmt {
	if i < 0 || i >= len(g.stmts) {
		return nil
	}
	return g.stmts[i]
}

// Stmts returns the top-level statement list in declaration order.
func (g *Generator) Stmts() []*Stmt { return g.stmts }

// AddChild registers a child generator under an instance name.
func (g *Generator) AddChild(instanceName string, child *Generator) error {
	if _, ok := g.childIndex[instanceName]; ok {
		return diag.Newf(diag.DuplicateName, []Node{g, child},
			"instance %s already exists in %s", instanceName, g.Name)
	}
	child.parent = g
	child.InstanceName = instanceName
	g.childIndex[instanceName] = child
	g.children = append(g.children, child)
	return nil
}

// Children returns child generators in declaration order.
func (g *Generator) Children() []*Generator { return g.children }

// GetChild returns the child registered under instanceName, nil when absent.
func (g *Generator) GetChild(instanceName string) *Generator { return g.childIndex[instanceName] }

// AddNamedBlock labels a statement block so the code generator annotates
// its begin/end pair.
func (g *Generator) AddNamedBlock(label string, block *Stmt) error {
	if block.Kind != StmtBlock {
		return diag.New(diag.ConstructionError, "only blocks can be labeled", block)
	}
	if _, ok := g.namedBlocks[label]; ok {
		return diag.Newf(diag.DuplicateName, []Node{g, block},
			"block label %s already exists in %s", label, g.Name)
	}
	g.namedBlocks[label] = block
	g.blockLabels = append(g.blockLabels, label)
	return nil
}

// NamedBlockLabels returns block labels in declaration order.
func (g *Generator) NamedBlockLabels() []string { return g.blockLabels }

// GetNamedBlock returns the block labeled label, nil when absent.
func (g *Generator) GetNamedBlock(label string) *Stmt { return g.namedBlocks[label] }

// Function creates an empty function block registered under name. The
// block is not part of the statement list; the code generator emits every
// function before the statements.
func (g *Generator) Function(name string) (*Stmt, error) {
	if err := g.checkNewName(name); err != nil {
		return nil, err
	}
	fn := &Stmt{Kind: StmtBlock, Block: BlockPayload{
		Type: Function,
		Fn: &FunctionInfo{
			Name:  name,
			Ports: make(map[string]*Var),
		},
	}}
	fn.parent = g
	g.funcs[name] = fn
	g.funcNames = append(g.funcNames, name)
	return fn, nil
}

// FunctionPort adds an input port to a function block.
func (g *Generator) FunctionPort(fn *Stmt, name string, width uint32, signed bool) (*Var, error) {
	if fn.Kind != StmtBlock || fn.Block.Type != Function {
		return nil, diag.New(diag.Internal, "FunctionPort on a non-function block", fn)
	}
	info := fn.Block.Fn
	if _, ok := info.Ports[name]; ok {
		return nil, diag.Newf(diag.DuplicateName, []Node{fn},
			"port %s already exists in function %s", name, info.Name)
	}
	p := newVar(g, name, width, signed, PortIO)
	p.Port = &PortInfo{Direction: In}
	info.Ports[name] = p
	info.PortNames = append(info.PortNames, name)
	return p, nil
}

// SetFunctionPortOrder overrides the alphabetical port order of a function
// declaration. The ordering must cover every port exactly once.
func SetFunctionPortOrder(fn *Stmt, order []string) error {
	if fn.Kind != StmtBlock || fn.Block.Type != Function {
		return diag.New(diag.Internal, "port ordering on a non-function block", fn)
	}
	info := fn.Block.Fn
	if len(order) != len(info.Ports) {
		return diag.New(diag.Internal, "port ordering size mismatches ports", fn)
	}
	index := make(map[string]int, len(order))
	for i, name := range order {
		if _, ok := info.Ports[name]; !ok {
			return diag.Newf(diag.UnknownPort, []Node{fn},
				"function %s has no port %s", info.Name, name)
		}
		index[name] = i
	}
	info.PortOrder = index
	return nil
}

// InterfaceInstance materializes an interface definition as a named
// instance owned by this generator.
func (g *Generator) InterfaceInstance(def *InterfaceDefinition, name string) (*InterfaceRef, error) {
	if _, ok := g.ifaces[name]; ok {
		return nil, diag.Newf(diag.DuplicateName, []Node{g},
			"interface instance %s already exists in %s", name, g.Name)
	}
	ref := newInterfaceRef(g, def, name)
	g.ifaces[name] = ref
	g.ifaceNames = append(g.ifaceNames, name)
	return ref, nil
}

// InterfacePort exposes an interface instance as a module port. In the
// emitted header, all ports bound to the same instance collapse into a
// single "<def> <instance>" entry named after ref, not after the port.
func (g *Generator) InterfacePort(ref *InterfaceRef, name string) (*Var, error) {
	if err := g.checkNewName(name); err != nil {
		return nil, err
	}
	p := newVar(g, name, 1, false, PortIO)
	p.Port = &PortInfo{Direction: InOut, Iface: ref}
	g.ports[name] = p
	g.portNames = append(g.portNames, name)
	return p, nil
}

// Instantiate builds a module instantiation statement for a registered
// child. The mapping keys are the child's port names.
func (g *Generator) Instantiate(child *Generator, mapping map[string]*Var) (*Stmt, error) {
	if g.childIndex[child.InstanceName] != child {
		return nil, diag.Newf(diag.ConstructionError, []Node{g, child},
			"%s is not a child of %s", child.Name, g.Name)
	}
	ports := make(map[*Var]*Var, len(mapping))
	for portName, external := range mapping {
		port := child.GetPort(portName)
		if port == nil {
			return nil, diag.Newf(diag.UnknownPort, []Node{child},
				"%s has no port %s", child.Name, portName)
		}
		ports[port] = external
	}
	return &Stmt{Kind: StmtModuleInstantiation, Inst: InstPayload{
		Target:      child,
		PortMapping: ports,
		PortDebug:   make(map[*Var]*Stmt),
	}}, nil
}

// NewInterfaceInstantiation builds the statement that declares an
// interface instance in the module body.
func NewInterfaceInstantiation(ref *InterfaceRef) *Stmt {
	return &Stmt{Kind: StmtInterfaceInstantiation, IfaceInst: IfaceInstPayload{
		Ref:         ref,
		PortMapping: make(map[*Var]*Var),
	}}
}
