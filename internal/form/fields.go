// Package form holds the customer form state and its submit-time coercion.
package form

import "strings"

// Field names a form field. The value matches the payload key.
type Field string

// Form fields in display and payload order.
const (
	Age              Field = "Age"
	Gender           Field = "Gender"
	Tenure           Field = "Tenure"
	UsageFrequency   Field = "Usage_Frequency"
	SupportCalls     Field = "Support_Calls"
	PaymentDelay     Field = "Payment_Delay"
	SubscriptionType Field = "Subscription_Type"
	ContractLength   Field = "Contract_Length"
	TotalSpend       Field = "Total_Spend"
	LastInteraction  Field = "Last_Interaction"
)

// Choice option values.
const (
	GenderMale   = "Male"
	GenderFemale = "Female"

	SubscriptionBasic    = "Basic"
	SubscriptionStandard = "Standard"
	SubscriptionPremium  = "Premium"

	ContractMonthly = "Monthly"
	ContractAnnual  = "Annual"
)

type fieldSpec struct {
	def     string
	options []string
}

var fieldOrder = []Field{
	Age,
	Gender,
	Tenure,
	UsageFrequency,
	SupportCalls,
	PaymentDelay,
	SubscriptionType,
	ContractLength,
	TotalSpend,
	LastInteraction,
}

var fieldSpecs = map[Field]fieldSpec{
	Age:              {def: "30"},
	Gender:           {def: GenderMale, options: []string{GenderMale, GenderFemale}},
	Tenure:           {def: "12"},
	UsageFrequency:   {def: "5"},
	SupportCalls:     {def: "0"},
	PaymentDelay:     {def: "0"},
	SubscriptionType: {def: SubscriptionBasic, options: []string{SubscriptionBasic, SubscriptionStandard, SubscriptionPremium}},
	ContractLength:   {def: ContractMonthly, options: []string{ContractMonthly, ContractAnnual}},
	TotalSpend:       {def: "500"},
	LastInteraction:  {def: "10"},
}

// Fields returns all form fields in display order.
func Fields() []Field {
	return append([]Field(nil), fieldOrder...)
}

// Valid reports whether f is a known form field.
func (f Field) Valid() bool {
	_, ok := fieldSpecs[f]
	return ok
}

// Label returns the display label for the field.
func (f Field) Label() string {
	return strings.ReplaceAll(string(f), "_", " ")
}

// IsChoice reports whether the field is restricted to a fixed option set.
func (f Field) IsChoice() bool {
	return len(fieldSpecs[f].options) > 0
}

// Options returns the option set of a choice field, or nil.
func (f Field) Options() []string {
	opts := fieldSpecs[f].options
	if len(opts) == 0 {
		return nil
	}
	return append([]string(nil), opts...)
}

// Default returns the initial raw value for the field.
func (f Field) Default() string {
	return fieldSpecs[f].def
}

func (f Field) allows(value string) bool {
	for _, opt := range fieldSpecs[f].options {
		if opt == value {
			return true
		}
	}
	return false
}
