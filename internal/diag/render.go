package diag

import (
	"strings"

	"github.com/fatih/color"
)

var (
	errColor  = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow, color.Bold)
	infoColor = color.New(color.FgCyan)
	nodeColor = color.New(color.FgWhite, color.Faint)
)

// Render formats a diagnostic for terminal display. Colors degrade to plain
// text automatically when the output is not a TTY.
func Render(d Diagnostic) string {
	var sb strings.Builder
	switch d.Severity {
	case SevError:
		sb.WriteString(errColor.Sprintf("error[%s]", d.Code))
	case SevWarning:
		sb.WriteString(warnColor.Sprintf("warning[%s]", d.Code))
	default:
		sb.WriteString(infoColor.Sprintf("info[%s]", d.Code))
	}
	sb.WriteString(": ")
	sb.WriteString(d.Message)
	for _, n := range d.Nodes {
		if n == nil {
			continue
		}
		sb.WriteString("\n  ")
		sb.WriteString(nodeColor.Sprintf("%s: %s", n.KindName(), n.String()))
	}
	for _, note := range d.Notes {
		sb.WriteString("\n  note: ")
		sb.WriteString(note.Msg)
		if note.Node != nil {
			sb.WriteString(" (")
			sb.WriteString(note.Node.String())
			sb.WriteString(")")
		}
	}
	return sb.String()
}

// RenderBag renders every diagnostic in the bag, one per line group.
func RenderBag(b *Bag) string {
	if b == nil || b.Len() == 0 {
		return ""
	}
	parts := make([]string, 0, b.Len())
	for _, d := range b.Items() {
		parts = append(parts, Render(d))
	}
	return strings.Join(parts, "\n")
}
