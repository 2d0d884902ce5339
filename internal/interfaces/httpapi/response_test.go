package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/football-insights/internal/usecase"
)

func TestWriteSuccess_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccess(context.Background(), rec, http.StatusOK, map[string]string{"status": "ok"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
	}
	if _, ok := body["data"]; !ok {
		t.Fatalf("expected data key in success response")
	}
	if _, ok := body["error"]; ok {
		t.Fatalf("did not expect error key in success response")
	}
}

func TestWriteError_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, fmt.Errorf("%w: bad payload", usecase.ErrInvalidInput))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
	}
	errorObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error object in response")
	}
	if got, _ := errorObj["status"].(string); got != "INVALID_ARGUMENT" {
		t.Fatalf("expected error status INVALID_ARGUMENT, got %v", errorObj["status"])
	}
}

func TestWriteError_StatusMapping(t *testing.T) {
	cases := []struct {
		err        error
		wantCode   int
		wantStatus string
	}{
		{fmt.Errorf("%w: match=1", usecase.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{fmt.Errorf("%w: missing token", usecase.ErrUnauthorized), http.StatusUnauthorized, "UNAUTHENTICATED"},
		{fmt.Errorf("%w: provider", usecase.ErrDependencyUnavailable), http.StatusServiceUnavailable, "UNAVAILABLE"},
		{fmt.Errorf("%w: match=1 status=live", usecase.ErrMatchNotFinished), http.StatusConflict, "FAILED_PRECONDITION"},
		{errors.New("boom"), http.StatusInternalServerError, "INTERNAL"},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		writeError(context.Background(), rec, tc.err)
		if rec.Code != tc.wantCode {
			t.Fatalf("%v: expected status %d, got %d", tc.err, tc.wantCode, rec.Code)
		}

		var body map[string]any
		if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("unmarshal response body: %v", err)
		}
		errorObj, _ := body["error"].(map[string]any)
		if got, _ := errorObj["status"].(string); got != tc.wantStatus {
			t.Fatalf("%v: expected error status %s, got %v", tc.err, tc.wantStatus, errorObj["status"])
		}
	}
}

func TestWriteError_HidesInternalMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, errors.New("pq: connection refused to 10.0.0.3"))

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	errorObj, _ := body["error"].(map[string]any)
	if got, _ := errorObj["message"].(string); got != "internal server error" {
		t.Fatalf("expected masked message, got %q", got)
	}
	if rec.Header().Get("Content-Length") == "" {
		t.Fatalf("expected Content-Length to be set")
	}
}
