package predict

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/verte-zerg/churnform/internal/form"
	"github.com/verte-zerg/churnform/internal/model"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// decodeResult parses a response body. Only syntactically invalid JSON is an
// error; missing or odd fields become NaN. A JSON null body yields nil.
func decodeResult(body []byte) (*model.PredictionResult, error) {
	body = bytes.TrimPrefix(body, utf8BOM)
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return &model.PredictionResult{Prediction: math.NaN(), Probability: math.NaN()}, nil
	}
	return &model.PredictionResult{
		Prediction:  strictNumber(obj, "churn_prediction"),
		Probability: looseNumber(obj, "churn_probability"),
	}, nil
}

func strictNumber(obj map[string]any, key string) float64 {
	if v, ok := obj[key].(float64); ok {
		return v
	}
	return math.NaN()
}

func looseNumber(obj map[string]any, key string) float64 {
	raw, ok := obj[key]
	if !ok {
		return math.NaN()
	}
	switch v := raw.(type) {
	case nil:
		return 0
	case float64:
		return v
	case bool:
		if v {
			return 1
		}
		return 0
	case string:
		return form.ToNumber(v)
	default:
		return math.NaN()
	}
}
