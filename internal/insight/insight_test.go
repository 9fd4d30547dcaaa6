package insight

import (
	"math"
	"testing"

	"github.com/verte-zerg/churnform/internal/form"
	"github.com/verte-zerg/churnform/internal/model"
)

func TestAssessHighRisk(t *testing.T) {
	a := Assess(model.PredictionResult{Prediction: 1, Probability: 0.73})
	if a.Risk != RiskHigh || a.Accent != ColorRed {
		t.Fatalf("expected high-risk banner, got %+v", a)
	}
	if a.PercentText != "73.00%" {
		t.Fatalf("unexpected percent text %q", a.PercentText)
	}
	if a.Tier != TierAlarm || a.FillColor != ColorRed {
		t.Fatalf("expected alarm fill, got %+v", a)
	}
}

func TestAssessLowRisk(t *testing.T) {
	a := Assess(model.PredictionResult{Prediction: 0, Probability: 0.25})
	if a.Risk != RiskLow || a.Accent != ColorGreen {
		t.Fatalf("expected low-risk banner, got %+v", a)
	}
	if a.PercentText != "25.00%" {
		t.Fatalf("unexpected percent text %q", a.PercentText)
	}
	if a.Tier != TierCalm || a.FillColor != ColorGreen {
		t.Fatalf("expected calm fill, got %+v", a)
	}
	if a.FillPercent != 25 {
		t.Fatalf("unexpected fill %v", a.FillPercent)
	}
}

func TestAssessBannerAndBarAreIndependent(t *testing.T) {
	a := Assess(model.PredictionResult{Prediction: 0, Probability: 0.7})
	if a.Risk != RiskLow || a.Tier != TierAlarm {
		t.Fatalf("expected low banner with alarm fill, got %+v", a)
	}
}

func TestTierBoundaries(t *testing.T) {
	cases := []struct {
		p    float64
		want Tier
	}{
		{0.6, TierWarn},
		{0.6000001, TierAlarm},
		{0.4, TierCalm},
		{0.41, TierWarn},
		{math.NaN(), TierCalm},
	}
	for _, tc := range cases {
		if got := TierFor(tc.p); got != tc.want {
			t.Fatalf("TierFor(%v) = %v, want %v", tc.p, got, tc.want)
		}
	}
}

func TestAssessMissingFields(t *testing.T) {
	a := Assess(model.PredictionResult{Prediction: math.NaN(), Probability: math.NaN()})
	if a.Risk != RiskLow || a.PercentText != "NaN%" || a.FillPercent != 0 {
		t.Fatalf("unexpected assessment for missing fields: %+v", a)
	}
}

func TestFormatPercentOutOfRange(t *testing.T) {
	if got := FormatPercent(1.5); got != "150.00%" {
		t.Fatalf("unexpected %q", got)
	}
	if got := FormatPercent(-0.0); got != "0.00%" {
		t.Fatalf("unexpected %q", got)
	}
	if got := Assess(model.PredictionResult{Probability: 1.5}).FillPercent; got != 100 {
		t.Fatalf("expected clamped fill, got %v", got)
	}
}

func TestFactorsAllInOrder(t *testing.T) {
	s := form.Default()
	edits := []struct {
		f form.Field
		v string
	}{
		{form.SupportCalls, "5"},
		{form.PaymentDelay, "2"},
		{form.ContractLength, form.ContractMonthly},
		{form.TotalSpend, "500"},
		{form.Tenure, "3"},
	}
	for _, e := range edits {
		var err error
		s, err = s.With(e.f, e.v)
		if err != nil {
			t.Fatalf("With(%s): %v", e.f, err)
		}
	}
	got := Factors(s)
	want := []string{"support_calls", "payment_delay", "monthly_contract", "low_spend", "short_tenure"}
	if len(got) != len(want) {
		t.Fatalf("expected %d factors, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("factor %d: expected %s, got %s", i, id, got[i].ID)
		}
	}
}

func TestFactorsNone(t *testing.T) {
	s := form.Default()
	for f, v := range map[form.Field]string{
		form.ContractLength: form.ContractAnnual,
		form.TotalSpend:     "5000",
		form.Tenure:         "24",
	} {
		var err error
		s, err = s.With(f, v)
		if err != nil {
			t.Fatalf("With(%s): %v", f, err)
		}
	}
	if got := Factors(s); len(got) != 0 {
		t.Fatalf("expected no factors, got %+v", got)
	}
}

func TestFactorsUseLooseComparison(t *testing.T) {
	s, err := form.Default().With(form.TotalSpend, "")
	if err != nil {
		t.Fatalf("With: %v", err)
	}
	s, err = s.With(form.SupportCalls, "many")
	if err != nil {
		t.Fatalf("With: %v", err)
	}
	ids := map[string]bool{}
	for _, f := range Factors(s) {
		ids[f.ID] = true
	}
	if !ids["low_spend"] {
		t.Fatalf("expected empty spend to compare as 0")
	}
	if ids["support_calls"] {
		t.Fatalf("expected non-numeric support calls to compare false")
	}
}
