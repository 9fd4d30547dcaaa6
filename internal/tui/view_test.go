package tui

import (
	"context"
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/churnform/internal/form"
	"github.com/verte-zerg/churnform/internal/model"
)

func TestRenderResultPlaceholder(t *testing.T) {
	out := renderResult(nil, form.Default(), 40)
	if !strings.Contains(out, placeholderText) {
		t.Fatalf("expected placeholder, got %q", out)
	}
}

func TestRenderResultLowRisk(t *testing.T) {
	out := renderResult(&model.PredictionResult{Prediction: 0, Probability: 0.25}, form.Default(), 48)
	for _, want := range []string{"Low Churn Risk", "25.00%", "Key factors influencing this prediction"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "High Churn Risk") {
		t.Fatalf("unexpected high risk banner")
	}
}

func TestRenderResultNaNProbability(t *testing.T) {
	out := renderResult(&model.PredictionResult{Prediction: math.NaN(), Probability: math.NaN()}, form.Default(), 48)
	if !strings.Contains(out, "NaN%") || !strings.Contains(out, "Low Churn Risk") {
		t.Fatalf("unexpected render:\n%s", out)
	}
}

func TestRenderResultFactorOrder(t *testing.T) {
	state := form.Default()
	edits := map[form.Field]string{
		form.SupportCalls: "5",
		form.PaymentDelay: "2",
		form.Tenure:       "3",
	}
	for f, v := range edits {
		var err error
		if state, err = state.With(f, v); err != nil {
			t.Fatalf("edit %s: %v", f, err)
		}
	}
	out := renderResult(&model.PredictionResult{Prediction: 1, Probability: 0.9}, state, 80)
	wants := []string{"support calls", "Payment delays", "Monthly contracts", "Lower total spend", "Newer customers"}
	last := -1
	for _, want := range wants {
		idx := strings.Index(out, want)
		if idx < 0 {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
		if idx < last {
			t.Fatalf("%q out of order", want)
		}
		last = idx
	}
}

func TestViewLayouts(t *testing.T) {
	m := NewModel(context.Background(), nil, Options{})
	for _, width := range []int{120, 60} {
		m.Update(tea.WindowSizeMsg{Width: width, Height: 40})
		view := m.View()
		for _, want := range []string{appTitle, formTitle, "Usage Frequency", buttonLabel, "Fill customer details"} {
			if !strings.Contains(view, want) {
				t.Fatalf("width %d: missing %q in:\n%s", width, want, view)
			}
		}
	}
}

func TestViewFocusedChoice(t *testing.T) {
	m := NewModel(context.Background(), nil, Options{})
	m.setFocus(fieldIndex(t, m, form.Gender))
	if !strings.Contains(m.View(), "‹ Male ›") {
		t.Fatalf("expected focused choice marker")
	}
}
