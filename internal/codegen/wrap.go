package codegen

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// wrapWidth is the column budget for rendered right-hand sides.
const wrapWidth = 80

// lineWrap splits s into chunks of at most width display columns, breaking
// on spaces. A single token wider than the budget stays on its own line.
func lineWrap(s string, width int) []string {
	if runewidth.StringWidth(s) <= width {
		return []string{s}
	}
	tokens := strings.Split(s, " ")
	var out []string
	var current strings.Builder
	currentWidth := 0
	for _, tok := range tokens {
		tokWidth := runewidth.StringWidth(tok)
		if currentWidth > 0 && currentWidth+1+tokWidth > width {
			out = append(out, current.String())
			current.Reset()
			currentWidth = 0
		}
		if currentWidth > 0 {
			current.WriteByte(' ')
			currentWidth++
		}
		current.WriteString(tok)
		currentWidth += tokWidth
	}
	if current.Len() > 0 {
		out = append(out, current.String())
	}
	return out
}
