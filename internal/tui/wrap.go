package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// wrapIndent word-wraps text to width cells. The first line starts with
// first and continuation lines with rest. Words wider than a line overflow.
func wrapIndent(text string, width int, first, rest string) string {
	words := strings.Fields(text)
	if width <= 0 || len(words) == 0 {
		return first + strings.Join(words, " ")
	}
	var out strings.Builder
	line := first
	lineWidth := runewidth.StringWidth(first)
	empty := true
	for _, word := range words {
		wordWidth := runewidth.StringWidth(word)
		if !empty && lineWidth+1+wordWidth > width {
			out.WriteString(line)
			out.WriteRune('\n')
			line = rest
			lineWidth = runewidth.StringWidth(rest)
			empty = true
		}
		if !empty {
			line += " "
			lineWidth++
		}
		line += word
		lineWidth += wordWidth
		empty = false
	}
	out.WriteString(line)
	return out.String()
}
