// Package model defines shared data structures.
package model

import (
	"encoding/json"
	"math"
	"time"
)

// Config defines runtime settings for the client.
type Config struct {
	Endpoint       string
	Timeout        time.Duration
	HistoryEnabled bool
	HistoryPath    string
	LogLevel       string
	LogPath        string
}

// HistoryConfig defines filters for listing saved predictions.
type HistoryConfig struct {
	Since  *time.Time
	Last   int
	Window int
}

// Number is a numeric payload value. Non-finite values encode as null.
type Number float64

// MarshalJSON implements json.Marshaler.
func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	if f == 0 {
		// Drops the sign of negative zero.
		f = 0
	}
	return json.Marshal(f)
}

// UnmarshalJSON implements json.Unmarshaler. A null value decodes as NaN.
func (n *Number) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = Number(math.NaN())
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

// PredictionRequest is the JSON body sent to the prediction service.
type PredictionRequest struct {
	Age              Number `json:"Age"`
	Gender           string `json:"Gender"`
	Tenure           Number `json:"Tenure"`
	UsageFrequency   Number `json:"Usage_Frequency"`
	SupportCalls     Number `json:"Support_Calls"`
	PaymentDelay     Number `json:"Payment_Delay"`
	SubscriptionType string `json:"Subscription_Type"`
	ContractLength   string `json:"Contract_Length"`
	TotalSpend       Number `json:"Total_Spend"`
	LastInteraction  Number `json:"Last_Interaction"`
}

// PredictionResult is the service response. Missing values are NaN.
type PredictionResult struct {
	Prediction  float64
	Probability float64
}

// HistoryEntry is a stored successful prediction.
type HistoryEntry struct {
	ID        int64
	RequestID string
	CreatedAt time.Time
	Endpoint  string
	Request   PredictionRequest
	Result    PredictionResult
}
