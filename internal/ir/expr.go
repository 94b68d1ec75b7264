package ir

import (
	"sort"

	"kiln/internal/diag"
)

// resolveOperand maps an operand into g's context. Vars already owned by g
// pass through; foreign vars are looked up by name.
func resolveOperand(g *Generator, v *Var) (*Var, error) {
	if v == nil {
		return nil, diag.New(diag.UnknownVar, "operand is nil")
	}
	if v.Generator == g {
		return v, nil
	}
	if found := g.GetVar(v.Name); found != nil {
		return found, nil
	}
	return nil, diag.Newf(diag.UnknownVar, []Node{v},
		"unable to find %s from %s", v.Name, g.Name)
}

// Binary builds the expression "left op right". Operands must resolve into
// g's context and agree on width unless the operator is relational.
func (g *Generator) Binary(op ExprOp, left, right *Var) (*Var, error) {
	if op.IsUnary() {
		return nil, diag.Internalf("%s is not a binary operator", op)
	}
	l, err := resolveOperand(g, left)
	if err != nil {
		return nil, err
	}
	r, err := resolveOperand(g, right)
	if err != nil {
		return nil, err
	}
	if l.Generator != r.Generator {
		return nil, diag.Newf(diag.CrossGeneratorOp, []Node{l, r},
			"%s context is different from that of %s's", l.String(), r.String())
	}
	if !op.IsRelational() && l.Width != r.Width {
		return nil, diag.Newf(diag.WidthMismatch, []Node{l, r},
			"left (%s) width (%d) doesn't match with right (%s) width (%d)",
			l.String(), l.Width, r.String(), r.Width)
	}
	width := l.Width
	if op.IsRelational() {
		width = 1
	}
	e := newVar(g, "", width, l.IsSigned && r.IsSigned, Expression)
	e.Expr = &ExprInfo{Op: op, Left: l, Right: r}
	e.Name = e.exprName()
	return e, nil
}

// Unary builds the expression "op operand".
func (g *Generator) Unary(op ExprOp, operand *Var) (*Var, error) {
	if !op.IsUnary() {
		return nil, diag.Internalf("%s is not a unary operator", op)
	}
	v, err := resolveOperand(g, operand)
	if err != nil {
		return nil, err
	}
	e := newVar(g, "", v.Width, v.IsSigned, Expression)
	e.Expr = &ExprInfo{Op: op, Left: v}
	e.Name = e.exprName()
	return e, nil
}

func (v *Var) binary(op ExprOp, other *Var) (*Var, error) {
	return v.Generator.Binary(op, v, other)
}

// Add builds v + other.
func (v *Var) Add(other *Var) (*Var, error) { return v.binary(Add, other) }

// Sub builds v - other.
func (v *Var) Sub(other *Var) (*Var, error) { return v.binary(Minus, other) }

// Mul builds v * other.
func (v *Var) Mul(other *Var) (*Var, error) { return v.binary(Multiply, other) }

// Div builds v / other.
func (v *Var) Div(other *Var) (*Var, error) { return v.binary(Divide, other) }

// Rem builds v % other.
func (v *Var) Rem(other *Var) (*Var, error) { return v.binary(Mod, other) }

// And builds v & other.
func (v *Var) And(other *Var) (*Var, error) { return v.binary(And, other) }

// Or builds v | other.
func (v *Var) Or(other *Var) (*Var, error) { return v.binary(Or, other) }

// Xor builds v ^ other.
func (v *Var) Xor(other *Var) (*Var, error) { return v.binary(Xor, other) }

// Shl builds v << other.
func (v *Var) Shl(other *Var) (*Var, error) { return v.binary(ShiftLeft, other) }

// Shr builds the zero-filling v >> other.
func (v *Var) Shr(other *Var) (*Var, error) { return v.binary(LogicalShiftRight, other) }

// Ashr builds the sign-extending v >>> other.
func (v *Var) Ashr(other *Var) (*Var, error) { return v.binary(SignedShiftRight, other) }

// Lt builds v < other.
func (v *Var) Lt(other *Var) (*Var, error) { return v.binary(LessThan, other) }

// Gt builds v > other.
func (v *Var) Gt(other *Var) (*Var, error) { return v.binary(GreaterThan, other) }

// Lte builds v <= other.
func (v *Var) Lte(other *Var) (*Var, error) { return v.binary(LessEqThan, other) }

// Gte builds v >= other.
func (v *Var) Gte(other *Var) (*Var, error) { return v.binary(GreaterEqThan, other) }

// Eq builds v == other.
func (v *Var) Eq(other *Var) (*Var, error) { return v.binary(Eq, other) }

// Invert builds ~v.
func (v *Var) Invert() (*Var, error) { return v.Generator.Unary(UInvert, v) }

// Neg builds -v.
func (v *Var) Neg() (*Var, error) { return v.Generator.Unary(UMinus, v) }

// Pos builds +v.
func (v *Var) Pos() (*Var, error) { return v.Generator.Unary(UPlus, v) }

// AddConst builds v + constant, sizing the literal to v's width.
func (v *Var) AddConst(value int64) (*Var, error) {
	c, err := newConst(v.Generator, value, v.Width, v.IsSigned)
	if err != nil {
		return nil, err
	}
	return v.binary(Add, c)
}

// CallFunction builds a call expression for the named function with args
// keyed by port name. The rendered argument order follows the function's
// port ordering, falling back to alphabetical.
func (g *Generator) CallFunction(name string, args map[string]*Var) (*Var, error) {
	fn := g.GetFunction(name)
	if fn == nil {
		return nil, diag.Newf(diag.UnknownVar, nil, "unable to find function %s from %s", name, g.Name)
	}
	info := fn.Block.Fn
	if len(args) != len(info.Ports) {
		return nil, diag.Newf(diag.ConstructionError, []Node{fn},
			"%s takes %d arguments, got %d", name, len(info.Ports), len(args))
	}
	names := make([]string, 0, len(args))
	for portName := range args {
		if _, ok := info.Ports[portName]; !ok {
			return nil, diag.Newf(diag.UnknownPort, []Node{fn},
				"%s has no port %s", name, portName)
		}
		names = append(names, portName)
	}
	if len(info.PortOrder) > 0 {
		sort.Slice(names, func(i, j int) bool {
			return info.PortOrder[names[i]] < info.PortOrder[names[j]]
		})
	} else {
		sort.Strings(names)
	}
	ordered := make([]*Var, len(names))
	width := uint32(1)
	for i, portName := range names {
		arg, err := resolveOperand(g, args[portName])
		if err != nil {
			return nil, err
		}
		ordered[i] = arg
	}
	call := newVar(g, "", width, false, Expression)
	call.Call = &CallInfo{Func: fn, Args: ordered}
	call.Name = call.String()
	return call, nil
}
