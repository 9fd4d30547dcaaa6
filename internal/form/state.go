package form

import (
	"errors"
	"fmt"

	"github.com/verte-zerg/churnform/internal/model"
)

var (
	// ErrUnknownField is returned when editing a field the form does not have.
	ErrUnknownField = errors.New("unknown field")
	// ErrInvalidOption is returned when a choice field is set outside its option set.
	ErrInvalidOption = errors.New("invalid option")
)

// State is an immutable snapshot of the form. Edits return a new State.
type State struct {
	values map[Field]string
}

// Default returns the form with every field at its initial value.
func Default() State {
	values := make(map[Field]string, len(fieldOrder))
	for _, f := range fieldOrder {
		values[f] = f.Default()
	}
	return State{values: values}
}

// Value returns the raw value of a field.
func (s State) Value(f Field) string {
	if v, ok := s.values[f]; ok {
		return v
	}
	return f.Default()
}

// With returns a copy of the state with one field replaced.
func (s State) With(f Field, value string) (State, error) {
	if !f.Valid() {
		return s, fmt.Errorf("%w: %q", ErrUnknownField, string(f))
	}
	if f.IsChoice() && !f.allows(value) {
		return s, fmt.Errorf("%w for %s: %q", ErrInvalidOption, f.Label(), value)
	}
	values := make(map[Field]string, len(fieldOrder))
	for _, key := range fieldOrder {
		values[key] = s.Value(key)
	}
	values[f] = value
	return State{values: values}, nil
}

// Number returns the field value coerced to a number.
func (s State) Number(f Field) float64 {
	return ToNumber(s.Value(f))
}

// Request builds the prediction payload from the current values.
func (s State) Request() model.PredictionRequest {
	return model.PredictionRequest{
		Age:              model.Number(s.Number(Age)),
		Gender:           s.Value(Gender),
		Tenure:           model.Number(s.Number(Tenure)),
		UsageFrequency:   model.Number(s.Number(UsageFrequency)),
		SupportCalls:     model.Number(s.Number(SupportCalls)),
		PaymentDelay:     model.Number(s.Number(PaymentDelay)),
		SubscriptionType: s.Value(SubscriptionType),
		ContractLength:   s.Value(ContractLength),
		TotalSpend:       model.Number(s.Number(TotalSpend)),
		LastInteraction:  model.Number(s.Number(LastInteraction)),
	}
}
