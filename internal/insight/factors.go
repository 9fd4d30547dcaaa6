package insight

import "github.com/verte-zerg/churnform/internal/form"

// Factor is one explanatory bullet.
type Factor struct {
	ID   string
	Text string
}

type factorRule struct {
	factor Factor
	match  func(form.State) bool
}

// Heuristic annotations ordered as displayed. They read the form, not the model.
var factorRules = []factorRule{
	{
		factor: Factor{ID: "support_calls", Text: "📞 Frequent support calls indicate dissatisfaction"},
		match:  func(s form.State) bool { return s.Number(form.SupportCalls) > 3 },
	},
	{
		factor: Factor{ID: "payment_delay", Text: "⏳ Payment delays increase churn risk"},
		match:  func(s form.State) bool { return s.Number(form.PaymentDelay) > 0 },
	},
	{
		factor: Factor{ID: "monthly_contract", Text: "📄 Monthly contracts churn more than long-term ones"},
		match:  func(s form.State) bool { return s.Value(form.ContractLength) == form.ContractMonthly },
	},
	{
		factor: Factor{ID: "low_spend", Text: "💰 Lower total spend suggests weaker engagement"},
		match:  func(s form.State) bool { return s.Number(form.TotalSpend) < 1000 },
	},
	{
		factor: Factor{ID: "short_tenure", Text: "🕒 Newer customers are more likely to churn"},
		match:  func(s form.State) bool { return s.Number(form.Tenure) < 12 },
	},
}

// Factors returns the bullets whose predicate holds for the current form.
func Factors(s form.State) []Factor {
	out := make([]Factor, 0, len(factorRules))
	for _, rule := range factorRules {
		if rule.match(s) {
			out = append(out, rule.factor)
		}
	}
	return out
}
