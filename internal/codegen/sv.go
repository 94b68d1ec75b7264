package codegen

import (
	"fmt"
	"sort"
	"strings"

	"kiln/internal/diag"
	"kiln/internal/ir"
)

// LineInfo is the debug side channel: the first output line of every
// emitted node, populated only when the generator's Debug flag is set.
type LineInfo map[ir.Node]int

// Codegen emits one SystemVerilog module for a generator.
type Codegen struct {
	gen    *ir.Generator
	opts   Options
	stream *Stream
	indent int
	skip   bool
	labels map[*ir.Stmt]string
	lines  LineInfo
}

// New returns a code generator for one generator.
func New(g *ir.Generator, opts Options) *Codegen {
	c := &Codegen{
		gen:    g,
		opts:   opts,
		stream: NewStream(),
		labels: make(map[*ir.Stmt]string),
		lines:  make(LineInfo),
	}
	for _, label := range g.NamedBlockLabels() {
		c.labels[g.GetNamedBlock(label)] = label
	}
	return c
}

// Generate emits the module source. External generators produce nothing.
func (c *Codegen) Generate() (string, error) {
	if c.gen.External {
		return "", nil
	}
	if err := c.outputModuleDef(); err != nil {
		return "", err
	}
	return c.stream.String(), nil
}

// Lines returns the debug line mapping collected during Generate.
func (c *Codegen) Lines() LineInfo { return c.lines }

func (c *Codegen) write(s string) { c.stream.WriteString(s) }

func (c *Codegen) indentStr() string {
	if c.skip {
		c.skip = false
		return ""
	}
	return strings.Repeat(" ", c.indent*indentSize)
}

func (c *Codegen) record(n ir.Node) {
	if c.gen.Debug {
		c.lines[n] = c.stream.Line()
	}
}

func (c *Codegen) recordFirst(n ir.Node) {
	if c.gen.Debug {
		if _, ok := c.lines[n]; !ok {
			c.lines[n] = c.stream.Line()
		}
	}
}

func stripNewline(s string) string {
	return strings.ReplaceAll(s, "\n", "")
}

func (c *Codegen) outputModuleDef() error {
	if c.opts.HeaderName != "" {
		c.write("`include \"" + c.opts.HeaderName + "\"\n\n")
		if c.opts.PackageName != "" {
			c.write("import " + c.opts.PackageName + "::*;\n")
		}
	}
	c.write(fmt.Sprintf("module %s ", c.gen.Name))
	c.generateParameters()
	c.write(c.indentStr() + "(\n")
	if err := c.generatePorts(); err != nil {
		return err
	}
	c.write(c.indentStr() + ");\n\n")
	c.generateEnums()
	c.generateVariables()
	if err := c.generateInterfaces(); err != nil {
		return err
	}
	if err := c.generateFunctions(); err != nil {
		return err
	}
	for i := 0; i < c.gen.StmtsCount(); i++ {
		if err := c.dispatch(c.gen.GetStmt(i)); err != nil {
			return err
		}
	}
	c.write(fmt.Sprintf("endmodule   // %s\n", c.gen.Name))
	return nil
}

func (c *Codegen) generateParameters() {
	names := append([]string(nil), c.gen.ParamNames()...)
	if len(names) == 0 {
		return
	}
	sort.Strings(names)
	c.write("#(parameter ")
	for i, name := range names {
		param := c.gen.GetParam(name)
		c.write(fmt.Sprintf("%s = %s", name, param.ParamValueStr()))
		if i+1 < len(names) {
			c.write(", ")
		}
	}
	c.write(")\n")
}

// getVarWidthStr renders the packed width of a scalar declaration:
// "[W-1:0]" for widths above one, "[<param>-1:0]" for parametrized vars,
// empty otherwise.
func getVarWidthStr(v *ir.Var) string {
	if v.Struct != nil {
		return ""
	}
	if v.WidthParam != nil {
		return fmt.Sprintf("[%s-1:0]", v.WidthParam.Name)
	}
	if v.Width > 1 {
		return fmt.Sprintf("[%d:0]", v.Width-1)
	}
	return ""
}

func getWidthStr(width uint32) string {
	return fmt.Sprintf("[%d:0]", width-1)
}

// GetVarDecl renders the declaration body of a variable: type, signedness,
// dimensions and name, without the trailing semicolon.
func GetVarDecl(v *ir.Var) string {
	var typ string
	switch {
	case v.Struct != nil:
		typ = v.Struct.Name
	case v.Enum != nil:
		typ = v.Enum.Name
	default:
		typ = "logic"
	}
	parts := []string{typ}
	if v.IsSigned {
		parts = append(parts, "signed")
	}
	varWidth := getVarWidthStr(v)
	if v.IsArray() {
		var arrayStr strings.Builder
		for _, w := range v.Size {
			arrayStr.WriteString(getWidthStr(w))
		}
		if v.IsPacked {
			str := arrayStr.String()
			if varWidth != "" {
				str += varWidth
			}
			parts = append(parts, str, v.Name)
		} else {
			if varWidth != "" {
				parts = append(parts, varWidth)
			}
			parts = append(parts, v.Name, arrayStr.String())
		}
	} else {
		if varWidth != "" && v.Enum == nil {
			parts = append(parts, varWidth)
		}
		parts = append(parts, v.Name)
	}
	return strings.Join(parts, " ")
}

// GetPortStr renders one port declaration without the trailing separator.
func GetPortStr(p *ir.Var) string {
	parts := make([]string, 0, 8)
	parts = append(parts, p.Port.Direction.String())
	switch {
	case p.Enum != nil:
		parts = append(parts, p.Enum.Name)
	case p.Struct != nil:
		parts = append(parts, p.Struct.Name)
	default:
		parts = append(parts, "logic")
	}
	if p.IsSigned {
		parts = append(parts, "signed")
	}
	if p.IsArray() && p.IsPacked {
		var str strings.Builder
		for _, w := range p.Size {
			str.WriteString(getWidthStr(w))
		}
		parts = append(parts, str.String())
	}
	if p.Enum == nil && p.Struct == nil {
		if w := getVarWidthStr(p); w != "" {
			parts = append(parts, w)
		}
	}
	parts = append(parts, p.Name)
	if p.IsArray() && !p.IsPacked {
		var str strings.Builder
		for _, w := range p.Size {
			str.WriteString(getWidthStr(w))
		}
		parts = append(parts, str.String())
	}
	return strings.Join(parts, " ")
}

func (c *Codegen) generatePorts() error {
	c.indent++
	defer func() { c.indent-- }()

	names := append([]string(nil), c.gen.PortNames()...)
	sort.Strings(names)

	var ports []*ir.Var
	seenIface := make(map[string]bool)
	type ifaceEntry struct{ def, ref string }
	var ifaces []ifaceEntry
	for _, name := range names {
		port := c.gen.GetPort(name)
		if !port.IsInterfacePort() {
			ports = append(ports, port)
			continue
		}
		ref := port.Port.Iface
		if !seenIface[ref.Name] {
			seenIface[ref.Name] = true
			ifaces = append(ifaces, ifaceEntry{def: ref.Def.DefName(), ref: ref.Name})
		}
	}

	total := len(ifaces) + len(ports)
	count := 0
	for _, entry := range ifaces {
		count++
		c.write(c.indentStr() + entry.def + " " + entry.ref)
		if count != total {
			c.write(",")
		}
		c.write("\n")
	}
	for _, port := range ports {
		count++
		end := ","
		if count == total {
			end = ""
		}
		if port.Comment != "" {
			c.write(c.indentStr() + "// " + stripNewline(port.Comment) + "\n")
		}
		c.record(port)
		c.write(c.indentStr() + GetPortStr(port) + end + "\n")
	}
	return nil
}

func (c *Codegen) generateEnums() {
	names := append([]string(nil), c.gen.EnumNames()...)
	sort.Strings(names)
	for _, name := range names {
		c.enumCode(c.gen.GetEnum(name))
	}
}

func (c *Codegen) enumCode(def *ir.EnumDef) {
	logicStr := ""
	if def.Width > 1 {
		logicStr = fmt.Sprintf("[%d:0]", def.Width-1)
	}
	c.write("typedef enum logic" + logicStr + " {\n")
	members := append([]string(nil), def.MemberNames()...)
	sort.Slice(members, func(i, j int) bool {
		return def.Member(members[i]).Const.Value < def.Member(members[j]).Const.Value
	})
	for i, member := range members {
		value := def.Member(member)
		c.record(value)
		c.write("  " + member + " = " + value.String())
		if i+1 != len(members) {
			c.write(",")
		}
		c.write("\n")
	}
	c.write("} " + def.Name + ";\n")
}

func (c *Codegen) generateVariables() {
	names := append([]string(nil), c.gen.VarNames()...)
	sort.Strings(names)
	for _, name := range names {
		v := c.gen.GetVar(name)
		if v.Kind != ir.Base {
			continue
		}
		if v.Comment != "" {
			c.write("// " + stripNewline(v.Comment) + "\n")
		}
		c.record(v)
		c.write(GetVarDecl(v) + ";\n")
	}
}

func (c *Codegen) generateInterfaces() error {
	for i := 0; i < c.gen.StmtsCount(); i++ {
		stmt := c.gen.GetStmt(i)
		if stmt.Kind == ir.StmtInterfaceInstantiation {
			if err := c.interfaceInstantiationCode(stmt); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Codegen) generateFunctions() error {
	names := append([]string(nil), c.gen.FunctionNames()...)
	sort.Strings(names)
	for _, name := range names {
		if err := c.functionCode(c.gen.GetFunction(name)); err != nil {
			return err
		}
	}
	return nil
}

func (c *Codegen) blockLabel(s *ir.Stmt) string {
	if label, ok := c.labels[s]; ok {
		return " :" + label
	}
	return ""
}

func (c *Codegen) dispatch(stmt *ir.Stmt) error {
	if stmt == nil {
		return diag.New(diag.NonStmtDispatch, "cannot codegen a nil statement node")
	}
	switch stmt.Kind {
	case ir.StmtAssign:
		return c.assignCode(stmt)
	case ir.StmtBlock:
		return c.blockCode(stmt)
	case ir.StmtIf:
		return c.ifCode(stmt)
	case ir.StmtSwitch:
		return c.switchCode(stmt)
	case ir.StmtModuleInstantiation:
		return c.moduleInstantiationCode(stmt)
	case ir.StmtInterfaceInstantiation:
		// already emitted with the declarations
		return nil
	case ir.StmtFunctionCall:
		return c.functionCallCode(stmt)
	case ir.StmtReturn:
		return c.returnCode(stmt)
	case ir.StmtAssert:
		return c.assertCode(stmt)
	case ir.StmtComment:
		return c.commentCode(stmt)
	case ir.StmtRawString:
		return c.rawStringCode(stmt)
	}
	return diag.New(diag.NonStmtDispatch, "not implemented", stmt)
}

func (c *Codegen) assignCode(stmt *ir.Stmt) error {
	left := stmt.Assign.Left
	right := stmt.Assign.Right
	if left.Kind == ir.PortIO && left.Port.Direction == ir.In && left.Generator == c.gen {
		return diag.New(diag.InputSelfDrive,
			"cannot drive a module's input from itself", stmt, left, right)
	}
	leftStr := left.String()
	rightStr := right.String()
	if stmt.Comment != "" {
		c.write(c.indentStr() + "// " + stripNewline(stmt.Comment) + "\n")
	}
	c.record(stmt)

	var prefix, eq string
	if stmt.IsTopLevel() {
		if stmt.Assign.Type != ir.Blocking {
			return diag.Newf(diag.NonBlockingAtTop, []ir.Node{stmt, left, right},
				"top level assignment for %s <- %s has to be blocking", leftStr, rightStr)
		}
		prefix = "assign "
		eq = "="
	} else {
		prefix = c.indentStr()
		switch stmt.Assign.Type {
		case ir.Blocking:
			eq = "="
		case ir.NonBlocking:
			eq = "<="
		default:
			return diag.Newf(diag.AssignKindUnresolved, []ir.Node{stmt, left, right},
				"assignment for %s <- %s has an undefined type", leftStr, rightStr)
		}
	}
	c.write(prefix + leftStr + " " + eq + " ")
	wrapped := lineWrap(rightStr, wrapWidth)
	c.write(wrapped[0])
	for _, chunk := range wrapped[1:] {
		c.write("\n")
		c.write(c.indentStr() + "    " + chunk)
	}
	c.write(";\n")
	return nil
}

func (c *Codegen) blockCode(stmt *ir.Stmt) error {
	switch stmt.Block.Type {
	case ir.Sequential:
		return c.sequentialCode(stmt)
	case ir.Combinational:
		return c.combinationalCode(stmt)
	case ir.Initial:
		return c.initialCode(stmt)
	case ir.Function:
		return c.functionCode(stmt)
	default:
		return c.scopeCode(stmt)
	}
}

func (c *Codegen) blockBody(stmt *ir.Stmt) error {
	c.indent++
	for _, child := range stmt.Block.Children {
		if err := c.dispatch(child); err != nil {
			return err
		}
	}
	c.indent--
	return nil
}

func (c *Codegen) sequentialCode(stmt *ir.Stmt) error {
	if stmt.Comment != "" {
		c.write(c.indentStr() + "// " + stripNewline(stmt.Comment) + "\n")
	}
	c.record(stmt)
	conditions := make([]string, 0, len(stmt.Block.Sensitivity))
	for _, ev := range stmt.Block.Sensitivity {
		conditions = append(conditions, ev.Edge.String()+" "+ev.Var.String())
	}
	c.write("\nalways_ff @(" + strings.Join(conditions, ", ") + ") begin" + c.blockLabel(stmt) + "\n")
	if err := c.blockBody(stmt); err != nil {
		return err
	}
	c.write(c.indentStr() + "end" + c.blockLabel(stmt) + "\n")
	return nil
}

func (c *Codegen) combinationalCode(stmt *ir.Stmt) error {
	if stmt.Comment != "" {
		c.write(c.indentStr() + "// " + stripNewline(stmt.Comment) + "\n")
	}
	c.record(stmt)
	c.write("always_comb begin" + c.blockLabel(stmt) + "\n")
	if err := c.blockBody(stmt); err != nil {
		return err
	}
	c.write(c.indentStr() + "end" + c.blockLabel(stmt) + "\n")
	return nil
}

func (c *Codegen) initialCode(stmt *ir.Stmt) error {
	if stmt.Comment != "" {
		c.write(c.indentStr() + "// " + stripNewline(stmt.Comment) + "\n")
	}
	c.record(stmt)
	c.write("initial begin" + c.blockLabel(stmt) + "\n")
	if err := c.blockBody(stmt); err != nil {
		return err
	}
	c.write(c.indentStr() + "end" + c.blockLabel(stmt) + "\n")
	return nil
}

func (c *Codegen) scopeCode(stmt *ir.Stmt) error {
	c.record(stmt)
	c.write("begin" + c.blockLabel(stmt) + "\n")
	if err := c.blockBody(stmt); err != nil {
		return err
	}
	c.write(c.indentStr() + "end" + c.blockLabel(stmt) + "\n")
	return nil
}

func (c *Codegen) functionCode(stmt *ir.Stmt) error {
	info := stmt.Block.Fn
	if info.DPI {
		return nil
	}
	c.record(stmt)
	returnStr := "void "
	if info.HasReturn {
		returnStr = ""
	}
	c.write("function " + returnStr + info.Name + "(\n")
	c.indent++
	names := append([]string(nil), info.PortNames...)
	if len(info.PortOrder) > 0 {
		if len(info.PortOrder) != len(names) {
			return diag.Internalf("port ordering size mismatches ports")
		}
		sort.Slice(names, func(i, j int) bool {
			return info.PortOrder[names[i]] < info.PortOrder[names[j]]
		})
	} else {
		sort.Strings(names)
	}
	for i, name := range names {
		port := info.Ports[name]
		c.record(port)
		c.write(c.indentStr() + GetPortStr(port))
		if i+1 != len(names) {
			c.write(",\n")
		} else {
			c.write("\n);\n")
		}
	}
	if len(names) == 0 {
		c.write(");\n")
	}
	c.indent--
	c.write("begin\n")
	if err := c.blockBody(stmt); err != nil {
		return err
	}
	c.write(c.indentStr() + "end\nendfunction\n")
	return nil
}

func (c *Codegen) ifCode(stmt *ir.Stmt) error {
	c.record(stmt)
	c.recordFirst(stmt.If.Predicate)
	c.write(c.indentStr() + fmt.Sprintf("if (%s) ", stmt.If.Predicate.String()))
	if err := c.dispatch(stmt.If.Then); err != nil {
		return err
	}
	elseBody := stmt.If.Else
	if elseBody.ChildCount() > 0 {
		// a single statement inside the else body flattens to "else if"
		if elseBody.ChildCount() == 1 {
			c.write(c.indentStr() + "else ")
			c.skip = true
			return c.dispatch(elseBody.Child(0))
		}
		c.write(c.indentStr() + "else ")
		return c.dispatch(elseBody)
	}
	return nil
}

func (c *Codegen) switchCode(stmt *ir.Stmt) error {
	c.record(stmt)
	c.write(c.indentStr() + "unique case (" + stmt.Switch.Target.String() + ")\n")
	c.indent++
	cases := append([]ir.SwitchCase(nil), stmt.Switch.Cases...)
	sort.SliceStable(cases, func(i, j int) bool {
		if cases[i].Cond == nil {
			return false
		}
		if cases[j].Cond == nil {
			return true
		}
		return cases[i].Cond.Const.Value < cases[j].Cond.Const.Value
	})
	for _, arm := range cases {
		label := "default"
		if arm.Cond != nil {
			label = arm.Cond.String()
		}
		c.write(c.indentStr() + label + ": ")
		switch {
		case arm.Body.ChildCount() == 0 && arm.Cond != nil:
			return diag.Newf(diag.EmptySwitchCase, []ir.Node{stmt, arm.Cond},
				"switch statement condition %s is empty!", arm.Cond.String())
		case arm.Body.ChildCount() == 0:
			// empty default case
			c.write("begin end\n")
		case arm.Body.ChildCount() == 1 && c.blockLabel(arm.Body) == "":
			c.skip = true
			if err := c.dispatch(arm.Body.Child(0)); err != nil {
				return err
			}
		default:
			c.indent++
			if err := c.dispatch(arm.Body); err != nil {
				return err
			}
			c.indent--
		}
	}
	c.indent--
	c.write(c.indentStr() + "endcase\n")
	return nil
}

func (c *Codegen) moduleInstantiationCode(stmt *ir.Stmt) error {
	if stmt.Comment != "" {
		c.write(c.indentStr() + "// " + stripNewline(stmt.Comment) + "\n")
	}
	c.record(stmt)
	target := stmt.Inst.Target
	c.write(c.indentStr() + target.Name)
	paramNames := append([]string(nil), target.ParamNames()...)
	if len(paramNames) > 0 {
		sort.Strings(paramNames)
		c.write(" #(\n")
		c.indent++
		for i, name := range paramNames {
			param := target.GetParam(name)
			value := param.ParamValueStr()
			if parent := param.Param.ParentParam; parent != nil {
				if parent.Generator != stmt.GeneratorParent() {
					return diag.Newf(diag.UnresolvedParam, []ir.Node{stmt, parent.Generator, parent},
						"%s.%s is not declared in generator %s",
						parent.Generator.Name, parent.Name, stmt.GeneratorParent().Name)
				}
				value = parent.String()
			}
			end := ",\n"
			if i+1 == len(paramNames) {
				end = ")"
			}
			c.write(c.indentStr() + fmt.Sprintf(".%s(%s)", name, value) + end)
		}
		c.indent--
	}
	c.write(" " + target.InstanceName)
	return c.portInterfaceCode(stmt, stmt.Inst.PortMapping, stmt.Inst.PortDebug, false)
}

func (c *Codegen) interfaceInstantiationCode(stmt *ir.Stmt) error {
	if stmt.Comment != "" {
		c.write(c.indentStr() + "// " + stripNewline(stmt.Comment) + "\n")
	}
	c.record(stmt)
	ref := stmt.IfaceInst.Ref
	c.write(c.indentStr() + ref.Def.DefName() + " " + ref.Name)
	return c.portInterfaceCode(stmt, stmt.IfaceInst.PortMapping, nil, true)
}

func (c *Codegen) portInterfaceCode(stmt *ir.Stmt, mapping map[*ir.Var]*ir.Var, debug map[*ir.Var]*ir.Stmt, ifaceInst bool) error {
	if len(mapping) == 0 {
		c.write("();\n")
		return nil
	}
	c.write(" (\n")
	c.indent++
	type binding struct{ internal, external *ir.Var }
	ports := make([]binding, 0, len(mapping))
	for internal, external := range mapping {
		ports = append(ports, binding{internal: internal, external: external})
	}
	sort.Slice(ports, func(i, j int) bool {
		return ports[i].internal.Name < ports[j].internal.Name
	})
	ifaceNames := make(map[string]string)
	type connection struct{ internal, external string }
	connections := make([]connection, 0, len(ports))
	for _, b := range ports {
		if c.gen.Debug && debug != nil {
			if src, ok := debug[b.internal]; ok {
				c.lines[src] = c.stream.Line()
			}
		}
		var internalName, externalName string
		if ifaceInst || !b.internal.IsInterfacePort() {
			if ifaceInst {
				internalName = b.internal.Name
				externalName = b.external.Name
			} else {
				internalName = b.internal.String()
				externalName = b.external.String()
			}
		} else {
			ref := b.internal.Port.Iface
			internalName = ref.Name
			externalName = b.external.BaseName()
			if ref.Def.IsModPort() && !strings.Contains(externalName, ".") {
				externalName = externalName + "." + ref.Def.ModPortName()
			}
			if existing, ok := ifaceNames[internalName]; ok {
				if existing != externalName {
					return diag.Newf(diag.InterfaceBindingConflict, []ir.Node{b.internal, b.external},
						"%s and %s are not from the same interface definition",
						b.internal.HandleName(), b.external.HandleName())
				}
				continue
			}
			ifaceNames[internalName] = externalName
		}
		connections = append(connections, connection{internal: internalName, external: externalName})
	}
	for i, conn := range connections {
		c.write(c.indentStr() + "." + conn.internal + "(" + conn.external + ")")
		if i != len(connections)-1 {
			c.write(",\n")
		} else {
			c.write("\n")
		}
	}
	c.write(");\n\n")
	c.indent--
	return nil
}

func (c *Codegen) assertCode(stmt *ir.Stmt) error {
	c.record(stmt)
	c.write(c.indentStr() + "assert (" + stmt.Assert.Value.HandleNameRelative(c.gen) + ")")
	if stmt.Assert.Else != nil {
		c.write(" else ")
		saved := c.indent
		c.indent = 0
		err := c.dispatch(stmt.Assert.Else)
		c.indent = saved
		return err
	}
	c.write(";\n")
	return nil
}

func (c *Codegen) functionCallCode(stmt *ir.Stmt) error {
	if stmt.IsTopLevel() {
		return diag.New(diag.FunctionCallAtTop,
			"function call statement cannot be used in top level", stmt)
	}
	c.record(stmt)
	c.write(c.indentStr() + stmt.Call.Call.String() + ";\n")
	return nil
}

func (c *Codegen) returnCode(stmt *ir.Stmt) error {
	c.record(stmt)
	c.write(c.indentStr() + "return " + stmt.Return.Value.String() + ";\n")
	return nil
}

func (c *Codegen) commentCode(stmt *ir.Stmt) error {
	for _, line := range stmt.Lines.Lines {
		c.write(c.indentStr() + "// " + line + "\n")
	}
	return nil
}

func (c *Codegen) rawStringCode(stmt *ir.Stmt) error {
	for _, line := range stmt.Lines.Lines {
		// lines are assumed to already be newline-free
		c.write(c.indentStr() + line + "\n")
	}
	return nil
}

// EnumCode renders one enum typedef on its own, without a generator
// context.
func EnumCode(def *ir.EnumDef) string {
	c := &Codegen{
		gen:    ir.NewGenerator(""),
		stream: NewStream(),
		labels: make(map[*ir.Stmt]string),
		lines:  make(LineInfo),
	}
	c.enumCode(def)
	return c.stream.String()
}
