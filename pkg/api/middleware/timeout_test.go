package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/edgy/edgy/pkg/api/response"
)

func TestTimeout(t *testing.T) {
	tests := []struct {
		name         string
		timeout      time.Duration
		handlerDelay time.Duration
		wantStatus   int
		wantTimeout  bool
	}{
		{
			name:         "request completes before timeout",
			timeout:      100 * time.Millisecond,
			handlerDelay: 10 * time.Millisecond,
			wantStatus:   http.StatusOK,
			wantTimeout:  false,
		},
		{
			name:         "request times out",
			timeout:      50 * time.Millisecond,
			handlerDelay: 200 * time.Millisecond,
			wantStatus:   http.StatusGatewayTimeout,
			wantTimeout:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Create test handler with delay
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(tt.handlerDelay)
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})

			// Wrap with timeout middleware
			middleware := Timeout(tt.timeout)
			wrappedHandler := middleware(handler)

			// Create test request
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set("X-Request-ID", "test-123")
			w := httptest.NewRecorder()

			// Execute request
			wrappedHandler.ServeHTTP(w, req)

			// Verify status code
			if w.Code != tt.wantStatus {
				t.Errorf("Timeout middleware status = %v, want %v", w.Code, tt.wantStatus)
			}

			// If timeout expected, verify error response
			if tt.wantTimeout {
				var errResp response.ErrorResponse
				if err := json.Unmarshal(w.Body.Bytes(), &errResp); err != nil {
					t.Fatalf("failed to unmarshal error response: %v", err)
				}

				if errResp.Error.Code != response.ErrCodeGatewayTimeout {
					t.Errorf("error code = %v, want %v", errResp.Error.Code, response.ErrCodeGatewayTimeout)
				}
			}
		})
	}
}

func TestTimeout_HeaderAlreadyWritten(t *testing.T) {
	release := make(chan struct{})
	handler := Timeout(30 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusAccepted)
		<-r.Context().Done()
		close(release)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	<-release

	if w.Code != http.StatusAccepted {
		t.Errorf("status = %v, want %v", w.Code, http.StatusAccepted)
	}
	if got := w.Header().Get("Content-Type"); got != "text/plain" {
		t.Errorf("Content-Type = %q, want text/plain", got)
	}
	if w.Body.Len() != 0 {
		t.Errorf("expected no timeout body, got %q", w.Body.String())
	}
}

func TestTimeout_WriteAfterDeadline(t *testing.T) {
	result := make(chan error, 1)
	handler := Timeout(20 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		time.Sleep(10 * time.Millisecond)
		_, err := w.Write([]byte("late"))
		result <- err
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	if err := <-result; err != http.ErrHandlerTimeout {
		t.Errorf("late write error = %v, want http.ErrHandlerTimeout", err)
	}
	if w.Code != http.StatusGatewayTimeout {
		t.Errorf("status = %v, want %v", w.Code, http.StatusGatewayTimeout)
	}
}

func TestTimeout_PanicPropagates(t *testing.T) {
	handler := Timeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	defer func() {
		if p := recover(); p != "boom" {
			t.Errorf("recovered %v, want boom", p)
		}
	}()
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test", nil))
	t.Error("expected panic to propagate")
}

func TestTimeout_Disabled(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.Context().Deadline(); ok {
			t.Error("unexpected deadline")
		}
	})
	Timeout(0)(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test", nil))
}
