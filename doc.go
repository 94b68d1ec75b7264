// Package kiln constructs hardware designs as an in-memory IR and emits
// synthesizable SystemVerilog.
//
// A host builds a tree of generators (modules), wires ports and variables
// with typed expressions and assignment statements, optionally runs IR
// passes over the tree, and finally emits one SystemVerilog source per
// module:
//
//	top := kiln.NewGenerator("mod")
//	a, _ := top.Port(kiln.In, "a", 4, nil, kiln.Data, false)
//	b, _ := top.Port(kiln.Out, "b", 4, nil, kiln.Data, false)
//	sum, _ := a.AddConst(1)
//	stmt, _ := b.AssignKind(sum, kiln.Blocking)
//	top.AddStmt(stmt)
//	srcs, _ := kiln.GenerateVerilog(top)
//
// The package is a construction and emission library only: it does not
// simulate designs, optimize netlists or parse SystemVerilog input.
package kiln
