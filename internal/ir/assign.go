package ir

import (
	"kiln/internal/diag"
)

// Assign records "v <- right" with an undefined assignment kind, resolved
// when any driver of the destination commits to one.
func (v *Var) Assign(right *Var) (*Stmt, error) {
	return v.AssignKind(right, Undefined)
}

// AssignKind records "v <- right". Structurally equal edges are coalesced:
// when an identical assignment already exists it is returned instead, with
// an Undefined kind upgraded to the requested one. The statement is not
// attached to any block; the caller picks the parent.
func (v *Var) AssignKind(right *Var, kind AssignType) (*Stmt, error) {
	if v.Kind == ConstValue {
		return nil, diag.Newf(diag.AssignToConst, []Node{v, right},
			"cannot assign %s to the constant %s", right.String(), v.String())
	}
	if v.Kind == Expression {
		return nil, diag.Newf(diag.AssignToExpression, []Node{v, right},
			"cannot assign %s to the expression %s", right.String(), v.String())
	}
	if v.SignedOf != nil {
		return nil, diag.Newf(diag.AssignToSignedView, []Node{v, right},
			"%s is not allowed to be a sink", v.String())
	}

	// the kind every consumer of the destination has settled on, if any
	selfType := Undefined
	for _, sink := range v.sinks {
		if sink.Assign.Type != Undefined {
			selfType = sink.Assign.Type
			break
		}
	}

	// coalesce with a structurally equal edge
	for _, existing := range right.sinks {
		if existing.Assign.Left != v || existing.Assign.Right != right {
			continue
		}
		if existing.Assign.Type == Undefined && kind != Undefined {
			existing.Assign.Type = kind
		} else if kind != Undefined && existing.Assign.Type != kind {
			return nil, diag.Newf(diag.AssignKindConflict, []Node{existing, v, right},
				"assignment type (%s) mismatches the existing one (%s)",
				kind, existing.Assign.Type)
		}
		return existing, nil
	}

	stmt := &Stmt{Kind: StmtAssign, Assign: AssignPayload{Left: v, Right: right, Type: kind}}
	right.addSink(stmt)
	v.sources = append(v.sources, stmt)

	if selfType == Undefined {
		selfType = kind
	}
	// unify every edge consuming the right-hand var on one committed kind
	for _, sink := range right.sinks {
		if sink.Assign.Type == Undefined {
			sink.Assign.Type = selfType
		} else if sink.Assign.Type != selfType && selfType != Undefined {
			return nil, diag.Newf(diag.AssignKindConflict, []Node{sink, v, right},
				"%s's assignment type (%s) does not match with %s's %s",
				right.String(), sink.Assign.Type, v.String(), selfType)
		}
	}
	return stmt, nil
}

// addSink registers stmt as a consumer of v. Signed views forward to the
// underlying var.
func (v *Var) addSink(stmt *Stmt) {
	if v.SignedOf != nil {
		v.SignedOf.addSink(stmt)
		return
	}
	v.sinks = append(v.sinks, stmt)
}

// Unassign removes the "v <- right" edge from both endpoints and from the
// owning parent, if any.
func (v *Var) Unassign(right *Var) error {
	var stmt *Stmt
	for _, s := range v.sources {
		if s.Assign.Left == v && s.Assign.Right == right {
			stmt = s
			break
		}
	}
	if stmt == nil {
		return diag.Newf(diag.UnknownVar, []Node{v, right},
			"no assignment %s <- %s to remove", v.String(), right.String())
	}
	v.sources = removeStmt(v.sources, stmt)
	right.sinks = removeStmt(right.sinks, stmt)
	switch parent := stmt.parent.(type) {
	case *Generator:
		parent.RemoveStmt(stmt)
	case *Stmt:
		if parent.Kind == StmtBlock {
			parent.Block.Children = removeStmt(parent.Block.Children, stmt)
		}
	}
	return nil
}

func removeStmt(list []*Stmt, stmt *Stmt) []*Stmt {
	out := list[:0]
	for _, s := range list {
		if s != stmt {
			out = append(out, s)
		}
	}
	return out
}

// MoveSrcTo rewrites every assignment driving old so it drives newVar
// instead, recursing into memoized slices, then appends "old <- newVar" to
// parent to preserve semantics. Only base and port vars may be rewired.
func MoveSrcTo(old, newVar *Var, parent *Generator) error {
	if old.Kind == Expression || old.Kind == ConstValue {
		return diag.New(diag.ConstructionError,
			"only base or port variables are allowed", old)
	}
	for _, stmt := range old.sources {
		if stmt.Assign.Left != old {
			return diag.Internalf("var assignment is wrong for %s", old.String())
		}
		stmt.Assign.Left = newVar
		newVar.sources = append(newVar.sources, stmt)
	}
	old.sources = nil
	for _, r := range old.sliceOrder {
		newSlice, err := newVar.SliceBits(r.High, r.Low)
		if err != nil {
			return err
		}
		if err := MoveSrcTo(old.slices[r], newSlice, parent); err != nil {
			return err
		}
	}
	stmt, err := old.Assign(newVar)
	if err != nil {
		return err
	}
	parent.AddStmt(stmt)
	return nil
}

// MoveSinkTo rewrites every assignment consuming old so it reads newVar
// instead, recursing into memoized slices, then appends "newVar <- old" to
// parent to preserve semantics. Only base and port vars may be rewired.
func MoveSinkTo(old, newVar *Var, parent *Generator) error {
	if old.Kind == Expression || old.Kind == ConstValue {
		return diag.New(diag.ConstructionError,
			"only base or port variables are allowed", old)
	}
	for _, stmt := range old.sinks {
		if stmt.Assign.Right != old {
			return diag.Internalf("var assignment is wrong for %s", old.String())
		}
		stmt.Assign.Right = newVar
		newVar.sinks = append(newVar.sinks, stmt)
	}
	old.sinks = nil
	for _, r := range old.sliceOrder {
		newSlice, err := newVar.SliceBits(r.High, r.Low)
		if err != nil {
			return err
		}
		if err := MoveSinkTo(old.slices[r], newSlice, parent); err != nil {
			return err
		}
	}
	stmt, err := newVar.Assign(old)
	if err != nil {
		return err
	}
	parent.AddStmt(stmt)
	return nil
}
