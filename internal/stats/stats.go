// Package stats contains prediction history calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/verte-zerg/churnform/internal/insight"
	"github.com/verte-zerg/churnform/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Summary aggregates a set of stored predictions.
type Summary struct {
	Count          int
	HighRisk       int
	AvgProbability float64
}

// Summarize counts high-risk predictions and averages finite probabilities.
func Summarize(entries []model.HistoryEntry) Summary {
	s := Summary{Count: len(entries), AvgProbability: math.NaN()}
	var sum float64
	n := 0
	for _, e := range entries {
		if e.Result.Prediction == 1 {
			s.HighRisk++
		}
		p := e.Result.Probability
		if math.IsNaN(p) || math.IsInf(p, 0) {
			continue
		}
		sum += p
		n++
	}
	if n > 0 {
		s.AvgProbability = sum / float64(n)
	}
	return s
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// Trend returns finite probabilities smoothed over window.
func Trend(entries []model.HistoryEntry, window int) []float64 {
	values := make([]float64, 0, len(entries))
	for _, e := range entries {
		p := e.Result.Probability
		if math.IsNaN(p) || math.IsInf(p, 0) {
			continue
		}
		values = append(values, p)
	}
	return MovingAverage(values, window)
}

// RenderHistory prints a summary, trend, and table of stored predictions.
func RenderHistory(w io.Writer, report Report, window int) error {
	if len(report.Entries) == 0 {
		_, err := fmt.Fprintln(w, "No predictions found.")
		return err
	}
	sum := report.Summary
	if _, err := fmt.Fprintln(w, "Summary"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Predictions: %d\n", sum.Count); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "High risk: %d\n", sum.HighRisk); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Avg probability: %s\n", insight.FormatPercent(sum.AvgProbability)); err != nil {
		return err
	}
	if trend := Sparkline(Trend(report.Entries, window)); trend != "" {
		if _, err := fmt.Fprintf(w, "Trend (window %d): %s\n", window, trend); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}

	headers := []string{"Time", "Risk", "Probability", "Tenure", "Contract", "Spend", "Support Calls"}
	rows := make([][]string, 0, len(report.Entries))
	for _, e := range report.Entries {
		risk := "low"
		if insight.Assess(e.Result).Risk == insight.RiskHigh {
			risk = "high"
		}
		rows = append(rows, []string{
			e.CreatedAt.Local().Format("2006-01-02 15:04"),
			risk,
			insight.FormatPercent(e.Result.Probability),
			formatNumber(e.Request.Tenure),
			e.Request.ContractLength,
			formatNumber(e.Request.TotalSpend),
			formatNumber(e.Request.SupportCalls),
		})
	}
	rightAlign := map[int]bool{2: true, 3: true, 5: true, 6: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func formatNumber(n model.Number) string {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "-"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
