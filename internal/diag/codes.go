package diag

import (
	"fmt"
)

type Code uint16

const (
	// Unknown error - kept for zero values
	UnknownCode Code = 0

	// IR construction
	ConstructionInfo     Code = 1000
	ConstructionError    Code = 1001
	ConstOutOfRange      Code = 1002
	WidthMismatch        Code = 1003
	CrossGeneratorOp     Code = 1004
	DuplicateName        Code = 1005
	SliceOutOfRange      Code = 1006
	AssignToConst        Code = 1007
	AssignToExpression   Code = 1008
	AssignToSignedView   Code = 1009
	DuplicateSensitivity Code = 1010

	// Assignment kinds
	AssignKindConflict   Code = 2000
	NonBlockingAtTop     Code = 2001
	AssignKindUnresolved Code = 2002

	// Name resolution
	UnknownVar  Code = 3000
	UnknownPort Code = 3001

	// Structural invariants
	InvariantViolation Code = 4000
	InputSelfDrive     Code = 4001
	EmptySwitchCase    Code = 4002
	DuplicateSwitchKey Code = 4003
	FunctionCallAtTop  Code = 4004
	NonStmtDispatch    Code = 4005
	EmptyModPort       Code = 4006

	// Interfaces
	InterfaceMismatch        Code = 5000
	InterfaceBindingConflict Code = 5001

	// Parameters
	UnresolvedParam Code = 6000

	// Internal failures - these indicate a bug, not a user error
	Internal Code = 9000
)

func (c Code) String() string {
	return fmt.Sprintf("K%04d", uint16(c))
}

// Area returns the thousand-block the code belongs to, used for grouping
// diagnostics of the same family.
func (c Code) Area() Code {
	return c / 1000 * 1000
}
