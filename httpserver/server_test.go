package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kbukum/graphflow/declnet"
	"github.com/kbukum/graphflow/observability"
)

func testRegistry() *declnet.BodyRegistry {
	registry := declnet.NewBodyRegistry()
	registry.Register("double", func(ctx context.Context, in map[string]any) (map[string]any, error) {
		return map[string]any{"y": in["x"].(float64) * 2}, nil
	})
	return registry
}

func doRequest(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)
	return rec
}

func TestHealthReportsOK(t *testing.T) {
	srv := New(Config{}, testRegistry(), nil)
	rec := doRequest(t, srv, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestCompileReturnsScheduledOperations(t *testing.T) {
	srv := New(Config{}, testRegistry(), nil)
	body := compileRequest{
		Network: declnet.NetworkDef{
			Name: "net",
			Operations: []declnet.OperationDef{
				{
					Name:      "Double",
					Component: "double",
					Needs:     []declnet.NeedDef{{Name: "x"}},
					Provides:  []declnet.ProvideDef{{Name: "y"}},
				},
			},
		},
		KnownInputs:  []string{"x"},
		AskedOutputs: []string{"y"},
	}

	rec := doRequest(t, srv, http.MethodPost, "/v1/compile", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Operations []string `json:"operations"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Operations) != 1 || resp.Operations[0] != "Double" {
		t.Errorf("operations = %v, want [Double]", resp.Operations)
	}
}

func TestRunExecutesNetworkAndReturnsValues(t *testing.T) {
	srv := New(Config{}, testRegistry(), nil)
	body := runRequest{
		compileRequest: compileRequest{
			Network: declnet.NetworkDef{
				Name: "net",
				Operations: []declnet.OperationDef{
					{
						Name:      "Double",
						Component: "double",
						Needs:     []declnet.NeedDef{{Name: "x"}},
						Provides:  []declnet.ProvideDef{{Name: "y"}},
					},
				},
			},
			KnownInputs:  []string{"x"},
			AskedOutputs: []string{"y"},
		},
		Inputs: map[string]any{"x": 21},
	}

	rec := doRequest(t, srv, http.MethodPost, "/v1/run", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Values map[string]any `json:"values"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if v, ok := resp.Values["y"]; !ok || v != float64(42) {
		t.Errorf("values[y] = %v, want 42", resp.Values["y"])
	}
}

// TestRunWithMetricsRecordsWithoutError pins down that a Server built with
// WithMetrics neither panics nor errors on a run that produces no handler
// errors, exercising the c.Errors.Last() nil-vs-typed-nil path in
// requestMetrics.
func TestRunWithMetricsRecordsWithoutError(t *testing.T) {
	metrics, err := observability.NewMetrics(observability.Meter("httpserver_test"))
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	srv := New(Config{}, testRegistry(), nil, WithMetrics(metrics))
	body := runRequest{
		compileRequest: compileRequest{
			Network: declnet.NetworkDef{
				Name: "net",
				Operations: []declnet.OperationDef{
					{
						Name:      "Double",
						Component: "double",
						Needs:     []declnet.NeedDef{{Name: "x"}},
						Provides:  []declnet.ProvideDef{{Name: "y"}},
					},
				},
			},
			KnownInputs:  []string{"x"},
			AskedOutputs: []string{"y"},
		},
		Inputs: map[string]any{"x": 10},
	}

	rec := doRequest(t, srv, http.MethodPost, "/v1/run", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body = %s", rec.Code, rec.Body.String())
	}
}

// TestCompileWithMetricsOnInvalidInputDoesNotPanic drives the error branch
// of requestMetrics (status >= 400, no gin.Error recorded).
func TestCompileWithMetricsOnInvalidInputDoesNotPanic(t *testing.T) {
	metrics, err := observability.NewMetrics(observability.Meter("httpserver_test_err"))
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	srv := New(Config{}, testRegistry(), nil, WithMetrics(metrics))
	rec := doRequest(t, srv, http.MethodPost, "/v1/compile", map[string]any{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body = %s", rec.Code, rec.Body.String())
	}
}
