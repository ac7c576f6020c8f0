package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/edgy/edgy/pkg/api/response"
	"github.com/edgy/edgy/pkg/logger"
)

func TestRecovery(t *testing.T) {
	tests := []struct {
		name        string
		handler     http.HandlerFunc
		shouldPanic bool
		wantStatus  int
	}{
		{
			name: "no panic",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			},
			shouldPanic: false,
			wantStatus:  http.StatusOK,
		},
		{
			name: "panic with string",
			handler: func(w http.ResponseWriter, r *http.Request) {
				panic("something went wrong")
			},
			shouldPanic: true,
			wantStatus:  http.StatusInternalServerError,
		},
		{
			name: "panic with error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				panic(errors.New("selection state corrupted"))
			},
			shouldPanic: true,
			wantStatus:  http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := logger.Discard()

			// Wrap with recovery middleware
			middleware := Recovery(log)
			wrappedHandler := middleware(tt.handler)

			// Create test request
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set("X-Request-ID", "test-123")
			w := httptest.NewRecorder()

			// Execute request
			wrappedHandler.ServeHTTP(w, req)

			// Verify status code
			if w.Code != tt.wantStatus {
				t.Errorf("Recovery middleware status = %v, want %v", w.Code, tt.wantStatus)
			}

			// If panic expected, verify error response
			if tt.shouldPanic {
				var errResp response.ErrorResponse
				if err := json.Unmarshal(w.Body.Bytes(), &errResp); err != nil {
					t.Fatalf("failed to unmarshal error response: %v", err)
				}

				if errResp.Error.Code != response.ErrCodeInternalServer {
					t.Errorf("error code = %v, want %v", errResp.Error.Code, response.ErrCodeInternalServer)
				}
			}
		})
	}
}

func TestRecovery_AbortHandlerPropagates(t *testing.T) {
	handler := Recovery(logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	defer func() {
		if p := recover(); p != http.ErrAbortHandler {
			t.Errorf("recovered %v, want http.ErrAbortHandler", p)
		}
	}()
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test", nil))
	t.Error("expected panic to propagate")
}

func TestRecovery_UsesRequestID(t *testing.T) {
	handler := RequestID()(Recovery(logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Request-ID", "req-42")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	var errResp response.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("failed to unmarshal error response: %v", err)
	}
	if errResp.Error.RequestID != "req-42" {
		t.Errorf("request id = %q, want req-42", errResp.Error.RequestID)
	}
}
