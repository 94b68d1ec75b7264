package diag

// Reporter is the minimal contract for collecting diagnostics from passes.
// Implementations: BagReporter (stores into a Bag), NopReporter.
type Reporter interface {
	Report(code Code, sev Severity, msg string, nodes []Node, notes []Note)
}

// BagReporter is an adapter that writes into a *Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(code Code, sev Severity, msg string, nodes []Node, notes []Note) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(Diagnostic{
		Severity: sev, Code: code, Message: msg,
		Nodes: nodes, Notes: notes,
	})
}

// NopReporter discards everything.
type NopReporter struct{}

func (NopReporter) Report(Code, Severity, string, []Node, []Note) {}

// ReportError is a shortcut for SevError diagnostics.
func ReportError(r Reporter, code Code, msg string, nodes ...Node) {
	if r == nil {
		return
	}
	r.Report(code, SevError, msg, nodes, nil)
}

// ReportWarning is a shortcut for SevWarning diagnostics.
func ReportWarning(r Reporter, code Code, msg string, nodes ...Node) {
	if r == nil {
		return
	}
	r.Report(code, SevWarning, msg, nodes, nil)
}
