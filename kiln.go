package kiln

import (
	"kiln/internal/codegen"
	"kiln/internal/debugdb"
	"kiln/internal/diag"
	"kiln/internal/ir"
	"kiln/internal/pass"
)

// IR node types.
type (
	Generator           = ir.Generator
	Var                 = ir.Var
	Stmt                = ir.Stmt
	EnumDef             = ir.EnumDef
	PackedStruct        = ir.PackedStruct
	StructField         = ir.StructField
	InterfaceDefinition = ir.InterfaceDefinition
	InterfaceRef        = ir.InterfaceRef
	ModPortDef          = ir.ModPortDef
	EdgeVar             = ir.EdgeVar
	SwitchCase          = ir.SwitchCase
)

// Port directions.
const (
	In    = ir.In
	Out   = ir.Out
	InOut = ir.InOut
)

// Port types.
const (
	Data        = ir.Data
	Clock       = ir.Clock
	AsyncReset  = ir.AsyncReset
	ClockEnable = ir.ClockEnable
	Reset       = ir.Reset
)

// Assignment kinds.
const (
	Undefined   = ir.Undefined
	Blocking    = ir.Blocking
	NonBlocking = ir.NonBlocking
)

// Sensitivity edges.
const (
	Posedge = ir.Posedge
	Negedge = ir.Negedge
)

// Expression operators.
const (
	UInvert           = ir.UInvert
	UMinus            = ir.UMinus
	UPlus             = ir.UPlus
	Add               = ir.Add
	Minus             = ir.Minus
	Divide            = ir.Divide
	Multiply          = ir.Multiply
	Mod               = ir.Mod
	LogicalShiftRight = ir.LogicalShiftRight
	SignedShiftRight  = ir.SignedShiftRight
	ShiftLeft         = ir.ShiftLeft
	Or                = ir.Or
	And               = ir.And
	Xor               = ir.Xor
	LessThan          = ir.LessThan
	GreaterThan       = ir.GreaterThan
	LessEqThan        = ir.LessEqThan
	GreaterEqThan     = ir.GreaterEqThan
	Eq                = ir.Eq
)

// NewGenerator returns an empty generator with the given module name.
func NewGenerator(name string) *Generator { return ir.NewGenerator(name) }

// NewInterface returns an empty interface definition.
func NewInterface(name string) *InterfaceDefinition { return ir.NewInterface(name) }

// NewCombinational returns an empty always_comb block.
func NewCombinational() *Stmt { return ir.NewCombinational() }

// NewSequential returns an empty always_ff block with the given
// sensitivity list.
func NewSequential(sensitivity ...EdgeVar) (*Stmt, error) {
	return ir.NewSequential(sensitivity...)
}

// NewInitial returns an empty initial block.
func NewInitial() *Stmt { return ir.NewInitial() }

// NewScope returns an empty begin/end block.
func NewScope() *Stmt { return ir.NewScope() }

// NewIf returns an if statement with empty scope bodies.
func NewIf(predicate *Var) *Stmt { return ir.NewIf(predicate) }

// NewSwitch returns a switch statement over target.
func NewSwitch(target *Var) *Stmt { return ir.NewSwitch(target) }

// NewComment returns a comment statement, one output line per entry.
func NewComment(lines ...string) *Stmt { return ir.NewComment(lines...) }

// NewRawString returns verbatim output lines.
func NewRawString(lines ...string) *Stmt { return ir.NewRawString(lines...) }

// NewReturn returns a return statement.
func NewReturn(value *Var) *Stmt { return ir.NewReturn(value) }

// NewAssert returns an immediate assertion on value.
func NewAssert(value *Var) *Stmt { return ir.NewAssert(value) }

// NewInterfaceInstantiation builds the statement declaring an interface
// instance in a module body.
func NewInterfaceInstantiation(ref *InterfaceRef) *Stmt {
	return ir.NewInterfaceInstantiation(ref)
}

// MoveSrcTo rewires every driver of old onto newVar; see ir.MoveSrcTo.
func MoveSrcTo(old, newVar *Var, parent *Generator) error {
	return ir.MoveSrcTo(old, newVar, parent)
}

// MoveSinkTo rewires every consumer of old onto newVar; see ir.MoveSinkTo.
func MoveSinkTo(old, newVar *Var, parent *Generator) error {
	return ir.MoveSinkTo(old, newVar, parent)
}

// Pass machinery.
type (
	Pass        = pass.Pass
	PassManager = pass.Manager
	Visitor     = pass.Visitor
	VisitorBase = pass.Base
)

// NewPassManager returns an empty pass manager.
func NewPassManager() *PassManager { return pass.NewManager() }

// RunPasses executes an ordered list of passes over top, fail-fast.
func RunPasses(top *Generator, passes ...Pass) error {
	return pass.RunPasses(top, passes...)
}

// Walk runs a visitor over one generator.
func Walk(v Visitor, g *Generator) error { return pass.Walk(v, g) }

// WalkRoot runs a visitor over top and all descendants.
func WalkRoot(v Visitor, top *Generator) error { return pass.WalkRoot(v, top) }

// Emission.
type (
	EmitOptions = codegen.Options
	EmitResult  = codegen.Result
	LineInfo    = codegen.LineInfo
)

// GenerateVerilog emits one source per distinct generator name in the
// tree, skipping external generators.
func GenerateVerilog(top *Generator) (map[string]string, error) {
	return codegen.GenerateVerilog(top)
}

// Emit is GenerateVerilog with options and the debug side channel.
func Emit(top *Generator, opts EmitOptions) (*EmitResult, error) {
	return codegen.Generate(top, opts)
}

// CreateStub emits an empty module cloning top's port list.
func CreateStub(top *Generator) (string, error) { return codegen.CreateStub(top) }

// ExtractInterfaceInfo aggregates and renders every interface definition
// used in the tree.
func ExtractInterfaceInfo(top *Generator) (map[string]string, error) {
	return codegen.ExtractInterfaceInfo(top)
}

// LoadEmitOptions reads emission options from a TOML manifest.
func LoadEmitOptions(path string) (EmitOptions, error) {
	return codegen.LoadOptions(path)
}

// Debug side channel.
type DebugDatabase = debugdb.Database

// NewDebugDatabase returns an empty debug database for the named top.
func NewDebugDatabase(topName string) *DebugDatabase {
	return debugdb.NewDatabase(topName)
}

// Code identifies a diagnostic family.
type Code = diag.Code

// Diagnostic codes surfaced by the library.
const (
	CodeConstructionError  = diag.ConstructionError
	CodeConstOutOfRange    = diag.ConstOutOfRange
	CodeWidthMismatch      = diag.WidthMismatch
	CodeCrossGeneratorOp   = diag.CrossGeneratorOp
	CodeDuplicateName      = diag.DuplicateName
	CodeSliceOutOfRange    = diag.SliceOutOfRange
	CodeAssignKindConflict = diag.AssignKindConflict
	CodeNonBlockingAtTop   = diag.NonBlockingAtTop
	CodeUnknownVar         = diag.UnknownVar
	CodeInvariantViolation = diag.InvariantViolation
	CodeInputSelfDrive     = diag.InputSelfDrive
	CodeEmptySwitchCase    = diag.EmptySwitchCase
	CodeDuplicateSwitchKey = diag.DuplicateSwitchKey
	CodeFunctionCallAtTop  = diag.FunctionCallAtTop
	CodeInterfaceMismatch  = diag.InterfaceMismatch
	CodeUnresolvedParam    = diag.UnresolvedParam
	CodeInternal           = diag.Internal
)

// ErrorCode extracts the diagnostic code from an error produced by this
// library, zero for foreign errors.
func ErrorCode(err error) Code { return diag.CodeOf(err) }
