package middleware

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestBodyLimit(t *testing.T) {
	tests := []struct {
		name    string
		limit   int64
		body    string
		wantErr bool
	}{
		{name: "under limit", limit: 16, body: "small", wantErr: false},
		{name: "at limit", limit: 5, body: "exact", wantErr: false},
		{name: "over limit", limit: 4, body: "too large", wantErr: true},
		{name: "disabled", limit: 0, body: strings.Repeat("x", 1024), wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var readErr error
			var read []byte
			handler := BodyLimit(tt.limit)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				read, readErr = io.ReadAll(r.Body)
			}))

			req := httptest.NewRequest(http.MethodPost, "/api/v1/meshes", strings.NewReader(tt.body))
			handler.ServeHTTP(httptest.NewRecorder(), req)

			if !tt.wantErr {
				if readErr != nil {
					t.Fatalf("unexpected read error: %v", readErr)
				}
				if string(read) != tt.body {
					t.Errorf("read %q, want %q", read, tt.body)
				}
				return
			}

			var maxErr *http.MaxBytesError
			if !errors.As(readErr, &maxErr) {
				t.Fatalf("read error = %v, want *http.MaxBytesError", readErr)
			}
			if maxErr.Limit != tt.limit {
				t.Errorf("limit = %d, want %d", maxErr.Limit, tt.limit)
			}
		})
	}
}
