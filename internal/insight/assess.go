// Package insight maps a prediction and the live form to display decisions.
package insight

import (
	"math"
	"strconv"

	"github.com/verte-zerg/churnform/internal/model"
)

// Risk is the banner category keyed off the prediction label.
type Risk int

// Risk categories.
const (
	RiskLow Risk = iota
	RiskHigh
)

// Tier is the probability bar color tier.
type Tier int

// Probability tiers.
const (
	TierCalm Tier = iota
	TierWarn
	TierAlarm
)

// Palette colors.
const (
	ColorRed    = "#e53935"
	ColorYellow = "#fbc02d"
	ColorGreen  = "#43a047"
)

const (
	alarmThreshold = 0.6
	warnThreshold  = 0.4
)

// Assessment is the rendered view of one prediction result.
type Assessment struct {
	Risk        Risk
	Label       string
	Accent      string
	PercentText string
	FillPercent float64
	Tier        Tier
	FillColor   string
}

// Assess derives banner and bar decisions from a result. The banner follows
// the prediction label and the bar follows the probability; they may disagree.
func Assess(res model.PredictionResult) Assessment {
	a := Assessment{
		Risk:        RiskLow,
		Label:       "✅ Low Churn Risk",
		Accent:      ColorGreen,
		PercentText: FormatPercent(res.Probability),
		FillPercent: clampPercent(res.Probability * 100),
		Tier:        TierFor(res.Probability),
	}
	if res.Prediction == 1 {
		a.Risk = RiskHigh
		a.Label = "🚨 High Churn Risk"
		a.Accent = ColorRed
	}
	a.FillColor = a.Tier.Color()
	return a
}

// TierFor picks the bar tier for a probability. NaN is calm.
func TierFor(p float64) Tier {
	switch {
	case p > alarmThreshold:
		return TierAlarm
	case p > warnThreshold:
		return TierWarn
	default:
		return TierCalm
	}
}

// Color returns the bar color of the tier.
func (t Tier) Color() string {
	switch t {
	case TierAlarm:
		return ColorRed
	case TierWarn:
		return ColorYellow
	default:
		return ColorGreen
	}
}

// FormatPercent renders a probability as a percentage with two decimals.
func FormatPercent(p float64) string {
	v := p * 100
	switch {
	case math.IsNaN(v):
		return "NaN%"
	case math.IsInf(v, 1):
		return "Infinity%"
	case math.IsInf(v, -1):
		return "-Infinity%"
	}
	if v == 0 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', 2, 64) + "%"
}

func clampPercent(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
