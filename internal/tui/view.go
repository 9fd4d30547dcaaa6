package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/churnform/internal/form"
	"github.com/verte-zerg/churnform/internal/insight"
	"github.com/verte-zerg/churnform/internal/model"
	"github.com/verte-zerg/churnform/internal/stats"
)

const (
	defaultWidth  = 100
	sideBySideMin = 90
	accentColor   = "#C89A3A"
)

const (
	appTitle        = "Customer Churn Prediction"
	appSubtitle     = "Predict whether a customer is likely to churn using ML"
	formTitle       = "Customer Details"
	buttonLabel     = "Predict Churn"
	loadingLabel    = "Predicting..."
	placeholderText = "Fill customer details and press Predict Churn to see results."
	helpText        = "tab/↑↓: move  ←/→: change option  enter: next/predict  ctrl+s: predict  esc: quit"
)

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	subtitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	panelStyle    = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	panelTitleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	labelStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0"))
	focusedLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(accentColor)).Bold(true)
	choiceStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	focusedChoice     = lipgloss.NewStyle().Foreground(lipgloss.Color(accentColor))
	buttonStyle       = lipgloss.NewStyle().
				Padding(0, 2).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	activeButtonStyle = buttonStyle.
				Foreground(lipgloss.Color("#F0F0F0")).
				Bold(true).
				BorderForeground(lipgloss.Color(accentColor))
	disabledButtonStyle = buttonStyle.Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	placeholderStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C")).Italic(true)
	noteStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	helpStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// View implements tea.Model.
func (m *Model) View() string {
	width := m.width
	if width <= 0 {
		width = defaultWidth
	}
	header := titleStyle.Render(appTitle) + "\n" + subtitleStyle.Render(appSubtitle)

	var body string
	if width >= sideBySideMin {
		panelWidth := (width - 1) / 2
		inner := panelWidth - panelStyle.GetHorizontalFrameSize()
		left := panelStyle.Width(panelWidth - panelStyle.GetHorizontalBorderSize()).Render(m.renderForm())
		right := panelStyle.Width(panelWidth - panelStyle.GetHorizontalBorderSize()).Render(m.renderResult(inner))
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)
	} else {
		panelWidth := width
		inner := panelWidth - panelStyle.GetHorizontalFrameSize()
		left := panelStyle.Width(panelWidth - panelStyle.GetHorizontalBorderSize()).Render(m.renderForm())
		right := panelStyle.Width(panelWidth - panelStyle.GetHorizontalBorderSize()).Render(m.renderResult(inner))
		body = lipgloss.JoinVertical(lipgloss.Left, left, right)
	}
	return strings.Join([]string{header, "", body, helpStyle.Render(helpText)}, "\n")
}

func (m *Model) renderForm() string {
	labelWidth := 0
	for _, f := range m.fields {
		if w := runewidth.StringWidth(f.Label()); w > labelWidth {
			labelWidth = w
		}
	}
	lines := []string{panelTitleStyle.Render(formTitle), ""}
	for i, f := range m.fields {
		focused := i == m.focus
		label := runewidth.FillRight(f.Label(), labelWidth)
		if focused {
			label = focusedLabelStyle.Render(label)
		} else {
			label = labelStyle.Render(label)
		}
		lines = append(lines, label+"  "+m.renderValue(i, f, focused))
	}
	lines = append(lines, "", m.renderButton())
	if m.errMsg != "" {
		lines = append(lines, errorStyle.Render(m.errMsg))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderValue(i int, f form.Field, focused bool) string {
	if !f.IsChoice() {
		return m.inputs[i].View()
	}
	value := m.form.Value(f)
	if focused {
		return focusedChoice.Render("‹ " + value + " ›")
	}
	return choiceStyle.Render("  " + value)
}

func (m *Model) renderButton() string {
	switch {
	case m.loading:
		return disabledButtonStyle.Render(m.spinner.View() + " " + loadingLabel)
	case m.onButton():
		return activeButtonStyle.Render(buttonLabel)
	default:
		return buttonStyle.Render(buttonLabel)
	}
}

func (m *Model) renderResult(width int) string {
	return renderResult(m.result, m.form, width)
}

// renderResult is a pure mapping of the frozen result and the live form.
func renderResult(res *model.PredictionResult, state form.State, width int) string {
	if res == nil {
		return placeholderStyle.Render(placeholderText)
	}
	if width < 20 {
		width = 20
	}
	a := insight.Assess(*res)
	card := lipgloss.NewStyle().
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(lipgloss.Color(a.Accent)).
		PaddingLeft(1)
	bar := stats.ProbabilityBar(a, width-card.GetHorizontalFrameSize())
	riskCard := card.Render(strings.Join([]string{
		lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(a.Accent)).Render(a.Label),
		"Churn Probability: " + lipgloss.NewStyle().Bold(true).Render(a.PercentText),
		bar,
	}, "\n"))

	lines := []string{
		riskCard,
		"",
		panelTitleStyle.Render(stats.ExplanationTitle),
		noteStyle.Render(wrapIndent(stats.ExplanationNote, width, "", "")),
	}
	for _, f := range insight.Factors(state) {
		lines = append(lines, wrapIndent(f.Text, width, "• ", "  "))
	}
	return strings.Join(lines, "\n")
}
