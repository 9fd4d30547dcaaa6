package predict

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/verte-zerg/churnform/internal/form"
)

func TestPredictPostsJSON(t *testing.T) {
	var gotMethod, gotType string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotType = r.Header.Get("Content-Type")
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)
		_, _ = w.Write([]byte(`{"churn_prediction":1,"churn_probability":0.73}`))
	}))
	defer srv.Close()

	res, err := New(srv.URL).Predict(context.Background(), form.Default().Request())
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if gotMethod != http.MethodPost {
		t.Fatalf("expected POST, got %s", gotMethod)
	}
	if gotType != "application/json" {
		t.Fatalf("expected JSON content type, got %q", gotType)
	}
	if gotBody["Age"] != 30.0 || gotBody["Gender"] != "Male" || gotBody["Contract_Length"] != "Monthly" {
		t.Fatalf("unexpected body: %v", gotBody)
	}
	if len(gotBody) != 10 {
		t.Fatalf("expected 10 body fields, got %d", len(gotBody))
	}
	if res == nil || res.Prediction != 1 || res.Probability != 0.73 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestPredictNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"boom"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	res, err := New(srv.URL).Predict(context.Background(), form.Default().Request())
	if err == nil {
		t.Fatalf("expected error")
	}
	if res != nil {
		t.Fatalf("expected no result, got %+v", res)
	}
	if KindOf(err) != KindStatus || StatusOf(err) != http.StatusInternalServerError {
		t.Fatalf("expected status error, got %v", err)
	}
	if UserMessageFor(err) != UserMessage {
		t.Fatalf("unexpected user message %q", UserMessageFor(err))
	}
}

func TestPredictTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(url).Predict(context.Background(), form.Default().Request())
	if KindOf(err) != KindTransport {
		t.Fatalf("expected transport error, got %v", err)
	}
	if UserMessageFor(err) != UserMessage {
		t.Fatalf("unexpected user message %q", UserMessageFor(err))
	}
}

func TestPredictMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).Predict(context.Background(), form.Default().Request())
	if KindOf(err) != KindDecode {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestPredictCanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(srv.URL).Predict(ctx, form.Default().Request())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDecodeResultMissingFields(t *testing.T) {
	res, err := decodeResult([]byte(`{"unexpected":true}`))
	if err != nil {
		t.Fatalf("decodeResult: %v", err)
	}
	if !math.IsNaN(res.Prediction) || !math.IsNaN(res.Probability) {
		t.Fatalf("expected NaN fields, got %+v", res)
	}
}

func TestDecodeResultLooseProbability(t *testing.T) {
	res, err := decodeResult([]byte(`{"churn_prediction":"1","churn_probability":"0.4"}`))
	if err != nil {
		t.Fatalf("decodeResult: %v", err)
	}
	if !math.IsNaN(res.Prediction) {
		t.Fatalf("expected string prediction to be ignored, got %v", res.Prediction)
	}
	if res.Probability != 0.4 {
		t.Fatalf("expected coerced probability, got %v", res.Probability)
	}
}

func TestDecodeResultOutOfRangeKept(t *testing.T) {
	res, err := decodeResult([]byte("\xef\xbb\xbf{\"churn_prediction\":0,\"churn_probability\":1.7}"))
	if err != nil {
		t.Fatalf("decodeResult: %v", err)
	}
	if res.Prediction != 0 || res.Probability != 1.7 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestDecodeResultNull(t *testing.T) {
	res, err := decodeResult([]byte(`null`))
	if err != nil || res != nil {
		t.Fatalf("expected nil result and nil error, got %+v, %v", res, err)
	}
}

func TestDecodeResultTrailingGarbage(t *testing.T) {
	if _, err := decodeResult([]byte(`{"churn_prediction":1} x`)); err == nil {
		t.Fatalf("expected error for trailing data")
	}
}

func TestValidateEndpoint(t *testing.T) {
	if err := ValidateEndpoint(DefaultEndpoint); err != nil {
		t.Fatalf("ValidateEndpoint(default): %v", err)
	}
	for _, bad := range []string{"", "localhost:8000", "ftp://host/predict", "http:///predict"} {
		if err := ValidateEndpoint(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
