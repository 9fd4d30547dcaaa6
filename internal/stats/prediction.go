package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/verte-zerg/churnform/internal/form"
	"github.com/verte-zerg/churnform/internal/insight"
	"github.com/verte-zerg/churnform/internal/model"
)

const (
	maxBarWidth         = 40
	terminalWidthBackup = 80
)

// ExplanationTitle heads the factor list.
const (
	ExplanationTitle = "Key factors influencing this prediction"
	ExplanationNote  = "Based on customer behavior patterns learned from historical data."
)

// TerminalWidth returns the width of stdout, or a fallback when it is not a terminal.
func TerminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return terminalWidthBackup
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// RenderPrediction prints a result and its factors for the given form state.
func RenderPrediction(w io.Writer, res *model.PredictionResult, state form.State, width int) error {
	if res == nil {
		_, err := fmt.Fprintln(w, "No prediction returned.")
		return err
	}
	a := insight.Assess(*res)
	banner := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(a.Accent)).Render(a.Label)
	lines := []string{
		banner,
		fmt.Sprintf("Churn Probability: %s", a.PercentText),
		ProbabilityBar(a, barWidth(width)),
		"",
		ExplanationTitle,
		ExplanationNote,
	}
	for _, f := range insight.Factors(state) {
		lines = append(lines, "  • "+f.Text)
	}
	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}

// ProbabilityBar draws the proportional fill in the assessment's tier color.
func ProbabilityBar(a insight.Assessment, width int) string {
	if width < 1 {
		width = 1
	}
	filled := int(math.Round(a.FillPercent / 100 * float64(width)))
	if filled > width {
		filled = width
	}
	fill := lipgloss.NewStyle().Foreground(lipgloss.Color(a.FillColor)).Render(strings.Repeat("█", filled))
	rest := lipgloss.NewStyle().Foreground(lipgloss.Color("#4A4A4A")).Render(strings.Repeat("░", width-filled))
	return fill + rest
}

func barWidth(total int) int {
	w := total - 2
	if w > maxBarWidth {
		w = maxBarWidth
	}
	if w < 10 {
		w = 10
	}
	return w
}
