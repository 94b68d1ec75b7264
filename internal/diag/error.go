package diag

import "fmt"

// Error is a single diagnostic surfaced through the error return chain.
// Construction helpers in the IR and codegen produce these; nothing in the
// core recovers from them.
type Error struct {
	Diag Diagnostic
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("%s [%s] %s", e.Diag.Severity, e.Diag.Code, e.Diag.Message)
	for _, n := range e.Diag.Nodes {
		if n == nil {
			continue
		}
		msg += fmt.Sprintf("\n  %s: %s", n.KindName(), n.String())
	}
	return msg
}

// Code returns the diagnostic code, UnknownCode for nil receivers.
func (e *Error) Code() Code {
	if e == nil {
		return UnknownCode
	}
	return e.Diag.Code
}

// New constructs an error diagnostic anchored on the given nodes.
func New(code Code, msg string, nodes ...Node) *Error {
	return &Error{Diag: Diagnostic{
		Severity: SevError,
		Code:     code,
		Message:  msg,
		Nodes:    nodes,
	}}
}

// Newf is New with a format string.
func Newf(code Code, nodes []Node, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...), nodes...)
}

// Internalf reports a bug in the library itself.
func Internalf(format string, args ...any) *Error {
	return New(Internal, fmt.Sprintf(format, args...))
}

// CodeOf extracts the diagnostic code from err, UnknownCode when err is not
// a *Error.
func CodeOf(err error) Code {
	if e, ok := err.(*Error); ok {
		return e.Code()
	}
	return UnknownCode
}
