package ir

import (
	"fmt"
	"strings"

	"kiln/internal/diag"
)

// Node is implemented by every IR entity that can anchor a diagnostic.
type Node = diag.Node

// VarKind enumerates value-node kinds.
type VarKind uint8

const (
	// Base represents a plain named wire or register.
	Base VarKind = iota
	// PortIO represents a module port.
	PortIO
	// Slice represents a bit-range view over another var.
	Slice
	// ConstValue represents an integer literal.
	ConstValue
	// Expression represents the result of an operator, a concatenation or
	// a function call.
	Expression
	// Parameter represents a module parameter.
	Parameter
)

func (k VarKind) String() string {
	switch k {
	case Base:
		return "base"
	case PortIO:
		return "port"
	case Slice:
		return "slice"
	case ConstValue:
		return "const"
	case Expression:
		return "expression"
	case Parameter:
		return "parameter"
	}
	return "<?>"
}

// PortDirection enumerates port directions.
type PortDirection uint8

const (
	// In is a module input.
	In PortDirection = iota
	// Out is a module output.
	Out
	// InOut is a bidirectional port.
	InOut
)

func (d PortDirection) String() string {
	switch d {
	case In:
		return "input"
	case Out:
		return "output"
	case InOut:
		return "inout"
	}
	return "<?>"
}

// PortType classifies the functional role of a port.
type PortType uint8

const (
	// Data is an ordinary data port.
	Data PortType = iota
	// Clock is a clock input.
	Clock
	// AsyncReset is an asynchronous reset.
	AsyncReset
	// ClockEnable is a clock-enable signal.
	ClockEnable
	// Reset is a synchronous reset.
	Reset
)

// SliceRange identifies a memoized bit-range of a var.
type SliceRange struct {
	High uint32
	Low  uint32
}

// PortInfo is the payload of a PortIO var.
type PortInfo struct {
	Direction PortDirection
	Type      PortType
	// Iface is set for interface-backed ports; the port then stands for a
	// whole interface instance rather than a scalar signal.
	Iface *InterfaceRef
}

// SliceInfo is the payload of a Slice var.
type SliceInfo struct {
	Parent *Var
	High   uint32
	Low    uint32
}

// ConstInfo is the payload of a ConstValue var.
type ConstInfo struct {
	Value int64
}

// ExprInfo is the payload of an operator expression.
type ExprInfo struct {
	Op    ExprOp
	Left  *Var
	Right *Var // nil for unary operators
}

// ParamInfo is the payload of a Parameter var.
type ParamInfo struct {
	Value int64
	// ParentParam, when set, forwards the parent generator's parameter at
	// instantiation time instead of the literal value.
	ParentParam *Var
}

// ConcatInfo is the payload of a concatenation expression.
type ConcatInfo struct {
	Parts []*Var
}

// CallInfo is the payload of a function-call expression.
type CallInfo struct {
	Func *Stmt // function block statement
	Args []*Var
}

// Var is any value node in the IR: named wires, ports, slices, constants,
// parameters and operator results. The concrete kind is selected by Kind
// and exactly one payload pointer below.
type Var struct {
	Name          string
	Width         uint32
	IsSigned      bool
	Size          []uint32
	IsPacked      bool
	ExplicitArray bool
	Kind          VarKind
	Comment       string

	Generator *Generator

	// Enum types the var after an enum definition; Struct after a packed
	// struct. Both change how the declaration renders.
	Enum   *EnumDef
	Struct *PackedStruct

	// WidthParam, when set, declares the width as "<param>-1:0" instead of
	// the literal width.
	WidthParam *Var

	Port     *PortInfo
	SliceOf  *SliceInfo
	Const    *ConstInfo
	Expr     *ExprInfo
	Param    *ParamInfo
	Concat   *ConcatInfo
	Call     *CallInfo
	SignedOf *Var // parent of a $signed() view

	sources []*Stmt // assignments driving this var
	sinks   []*Stmt // assignments consuming this var

	slices     map[SliceRange]*Var
	sliceOrder []SliceRange
	concats    []*Var
	signedView *Var
}

func newVar(g *Generator, name string, width uint32, signed bool, kind VarKind) *Var {
	return &Var{
		Name:      name,
		Width:     width,
		IsSigned:  signed,
		Size:      []uint32{1},
		Kind:      kind,
		Generator: g,
	}
}

// KindName implements diag.Node.
func (v *Var) KindName() string { return v.Kind.String() }

// String renders the var the way it appears in generated output.
func (v *Var) String() string {
	switch {
	case v == nil:
		return "<nil>"
	case v.SignedOf != nil:
		return fmt.Sprintf("$signed(%s)", v.SignedOf.String())
	case v.SliceOf != nil:
		return fmt.Sprintf("%s[%d:%d]", v.SliceOf.Parent.String(), v.SliceOf.High, v.SliceOf.Low)
	case v.Const != nil:
		if v.IsSigned && v.Const.Value < 0 {
			return fmt.Sprintf("-%d'h%X", v.Width, -v.Const.Value)
		}
		return fmt.Sprintf("%d'h%X", v.Width, v.Const.Value)
	case v.Concat != nil:
		parts := make([]string, len(v.Concat.Parts))
		for i, p := range v.Concat.Parts {
			parts[i] = p.String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case v.Call != nil:
		args := make([]string, len(v.Call.Args))
		for i, a := range v.Call.Args {
			args[i] = a.String()
		}
		return fmt.Sprintf("%s (%s)", v.Call.Func.Block.Fn.Name, strings.Join(args, ", "))
	case v.Expr != nil:
		if v.Expr.Right != nil {
			return fmt.Sprintf("%s %s %s", v.Expr.Left.exprName(), v.Expr.Op, v.Expr.Right.exprName())
		}
		return fmt.Sprintf("%s%s", v.Expr.Op, v.Expr.Left.exprName())
	}
	return v.Name
}

// exprName renders the var as an operand of an enclosing expression:
// operator results keep their grouping parentheses, everything else is the
// plain textual form.
func (v *Var) exprName() string {
	if v.Expr != nil && v.Concat == nil && v.Call == nil {
		return "(" + v.String() + ")"
	}
	return v.String()
}

// HandleName is the dot-joined path of the var from the root generator.
func (v *Var) HandleName() string {
	if v.Generator == nil {
		return v.String()
	}
	return v.Generator.HandleName() + "." + v.String()
}

// HandleNameRelative renders the var relative to g: vars of g render as
// their plain form, foreign vars keep the full handle.
func (v *Var) HandleNameRelative(g *Generator) string {
	if v.Generator == g {
		return v.String()
	}
	return v.HandleName()
}

// BaseName strips slice suffixes from the textual form, yielding the name
// of the underlying storage.
func (v *Var) BaseName() string {
	if v.SliceOf != nil {
		return v.SliceOf.Parent.BaseName()
	}
	return v.Name
}

// Sources returns the assignments driving this var.
func (v *Var) Sources() []*Stmt { return v.sources }

// Sinks returns the assignments consuming this var.
func (v *Var) Sinks() []*Stmt { return v.sinks }

// IsArray reports whether the var declares array dimensions.
func (v *Var) IsArray() bool {
	return len(v.Size) > 1 || (len(v.Size) > 0 && v.Size[0] > 1) || v.ExplicitArray
}

// SliceBits returns the memoized [high:low] view of the var. The same
// (high, low) pair always yields the same node.
func (v *Var) SliceBits(high, low uint32) (*Var, error) {
	if low > high {
		return nil, diag.Newf(diag.SliceOutOfRange, []Node{v},
			"low (%d) cannot be larger than high (%d)", low, high)
	}
	if high >= v.Width {
		return nil, diag.Newf(diag.SliceOutOfRange, []Node{v},
			"high (%d) has to be smaller than width (%d)", high, v.Width)
	}
	r := SliceRange{High: high, Low: low}
	if v.slices == nil {
		v.slices = make(map[SliceRange]*Var)
	}
	if s, ok := v.slices[r]; ok {
		return s, nil
	}
	// a slice is not part of the generator's variables; the parent var
	// owns it
	s := newVar(v.Generator, "", high-low+1, v.IsSigned, Slice)
	s.SliceOf = &SliceInfo{Parent: v, High: high, Low: low}
	v.slices[r] = s
	v.sliceOrder = append(v.sliceOrder, r)
	return s, nil
}

// At returns the memoized single-bit view var[i:i].
func (v *Var) At(bit uint32) (*Var, error) {
	return v.SliceBits(bit, bit)
}

// Signed returns the var itself when it is already signed, otherwise the
// memoized $signed() view. The view cannot be assigned to.
func (v *Var) Signed() *Var {
	if v.IsSigned {
		return v
	}
	if v.signedView == nil {
		sv := newVar(v.Generator, "", v.Width, true, v.Kind)
		sv.SignedOf = v
		v.signedView = sv
	}
	return v.signedView
}

// ConcatWith returns the concatenation {v, other}. Two-way concats are
// memoized on the left operand; concatenating onto an existing concat
// copies it and appends.
func (v *Var) ConcatWith(other *Var) *Var {
	if v.Concat != nil {
		parts := make([]*Var, len(v.Concat.Parts), len(v.Concat.Parts)+1)
		copy(parts, v.Concat.Parts)
		parts = append(parts, other)
		nc := newVar(v.Generator, "", v.Width+other.Width, v.IsSigned && other.IsSigned, Expression)
		nc.Concat = &ConcatInfo{Parts: parts}
		for _, p := range parts {
			p.concats = append(p.concats, nc)
		}
		return nc
	}
	for _, existing := range v.concats {
		if existing.Concat != nil && len(existing.Concat.Parts) == 2 &&
			existing.Concat.Parts[1] == other {
			return existing
		}
	}
	c := newVar(v.Generator, "", v.Width+other.Width, v.IsSigned && other.IsSigned, Expression)
	c.Concat = &ConcatInfo{Parts: []*Var{v, other}}
	v.concats = append(v.concats, c)
	return c
}

// IsInterfacePort reports whether the var is a port standing for an
// interface instance.
func (v *Var) IsInterfacePort() bool {
	return v.Port != nil && v.Port.Iface != nil
}
