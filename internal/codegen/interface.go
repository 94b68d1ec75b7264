package codegen

import (
	"strings"
	"sync"

	"kiln/internal/diag"
	"kiln/internal/ir"
	"kiln/internal/pass"
)

// interfaceVisitor collects every interface instantiation in the tree,
// keyed by definition name. The mutex keeps the map consistent if the
// walk is ever fanned out over sibling generators.
type interfaceVisitor struct {
	pass.Base

	mu         sync.Mutex
	interfaces map[string]*ir.Stmt
	names      []string
}

func (v *interfaceVisitor) VisitInterfaceInstantiation(stmt *ir.Stmt) error {
	ref := stmt.IfaceInst.Ref
	def := ref.Def

	v.mu.Lock()
	existing, ok := v.interfaces[def.DefName()]
	if !ok {
		v.interfaces[def.DefName()] = stmt
		v.names = append(v.names, def.DefName())
		v.mu.Unlock()
		return nil
	}
	v.mu.Unlock()

	refDef := existing.IfaceInst.Ref.Def
	if !ir.SameDefinition(def, refDef) {
		return diag.Newf(diag.InterfaceMismatch, []ir.Node{def, refDef},
			"%s.%s's interface differs from %s.%s's",
			stmt.GeneratorParent().HandleName(), def.DefName(),
			existing.GeneratorParent().HandleName(), refDef.DefName())
	}
	return nil
}

// ExtractInterfaceInfo aggregates every interface definition used in the
// tree, verifies instances agree, and renders one declaration per
// non-modport definition.
func ExtractInterfaceInfo(top *ir.Generator) (map[string]string, error) {
	visitor := &interfaceVisitor{interfaces: make(map[string]*ir.Stmt)}
	if err := pass.WalkRoot(visitor, top); err != nil {
		return nil, err
	}
	result := make(map[string]string, len(visitor.names))
	for _, name := range visitor.names {
		stmt := visitor.interfaces[name]
		ref := stmt.IfaceInst.Ref
		def := ref.Def
		if def.IsModPort() {
			// modport projections borrow their parent's declaration
			continue
		}
		src, err := interfaceCode(name, ref)
		if err != nil {
			return nil, err
		}
		result[name] = src
	}
	return result, nil
}

func interfaceCode(name string, ref *ir.InterfaceRef) (string, error) {
	def := ref.Def
	var sb strings.Builder
	const indent = "  "
	sb.WriteString("interface " + name)
	portNames := def.PortNames()
	if len(portNames) > 0 {
		sb.WriteString("(\n")
		for i, portName := range portNames {
			p, err := ref.DeclPort(portName)
			if err != nil {
				return "", err
			}
			sb.WriteString(indent + GetPortStr(p))
			if i == len(portNames)-1 {
				sb.WriteString("\n")
			} else {
				sb.WriteString(",\n")
			}
		}
		sb.WriteString(");\n")
	} else {
		sb.WriteString(";\n")
	}
	for _, varName := range def.VarNames() {
		v, err := ref.DeclVar(varName)
		if err != nil {
			return "", err
		}
		sb.WriteString(indent + GetVarDecl(v) + ";\n")
	}
	for _, modName := range def.ModPortNames() {
		mp, _ := def.ModPortDefByName(modName)
		total := len(mp.Inputs) + len(mp.Outputs)
		if total == 0 {
			return "", diag.Newf(diag.EmptyModPort, []ir.Node{def}, "%s is empty", modName)
		}
		sb.WriteString(indent + "modport " + modName + "(")
		count := 0
		for _, sig := range mp.Inputs {
			sb.WriteString("input " + sig)
			if count++; count != total {
				sb.WriteString(", ")
			}
		}
		for _, sig := range mp.Outputs {
			sb.WriteString("output " + sig)
			if count++; count != total {
				sb.WriteString(", ")
			}
		}
		sb.WriteString(");\n")
	}
	sb.WriteString("endinterface\n")
	return sb.String(), nil
}
