package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	tests := []struct {
		name       string
		allowed    []string
		method     string
		origin     string
		wantOrigin string
		wantStatus int
	}{
		{name: "allowed origin", allowed: []string{"https://viewer.example"}, method: http.MethodGet, origin: "https://viewer.example", wantOrigin: "https://viewer.example", wantStatus: http.StatusTeapot},
		{name: "unknown origin", allowed: []string{"https://viewer.example"}, method: http.MethodGet, origin: "https://evil.example", wantStatus: http.StatusTeapot},
		{name: "wildcard", allowed: []string{"*"}, method: http.MethodGet, origin: "https://any.example", wantOrigin: "https://any.example", wantStatus: http.StatusTeapot},
		{name: "preflight", allowed: []string{"https://viewer.example"}, method: http.MethodOptions, origin: "https://viewer.example", wantOrigin: "https://viewer.example", wantStatus: http.StatusNoContent},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/v1/gallery", nil)
			req.Header.Set("Origin", tc.origin)
			rec := httptest.NewRecorder()
			CORS(tc.allowed)(next).ServeHTTP(rec, req)
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tc.wantOrigin {
				t.Fatalf("Access-Control-Allow-Origin = %q, want %q", got, tc.wantOrigin)
			}
		})
	}
}

func TestAllowOrigin(t *testing.T) {
	check := AllowOrigin([]string{"https://viewer.example"})
	tests := []struct {
		origin string
		want   bool
	}{
		{origin: "", want: true},
		{origin: "https://viewer.example", want: true},
		{origin: "http://gallery.local", want: true},
		{origin: "https://evil.example", want: false},
	}
	for _, tc := range tests {
		req := httptest.NewRequest(http.MethodGet, "http://gallery.local/v1/session", nil)
		if tc.origin != "" {
			req.Header.Set("Origin", tc.origin)
		}
		if got := check(req); got != tc.want {
			t.Fatalf("AllowOrigin(%q) = %v, want %v", tc.origin, got, tc.want)
		}
	}
}
