package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func extractFrom(t *testing.T, svc *Service, header string) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	c.Request = req
	return svc.ExtractToken(c)
}

func TestExtractTokenSchemes(t *testing.T) {
	svc := NewService(nil, NewTokenService("test-secret", time.Hour))
	cases := []struct {
		header string
		want   string
	}{
		{"Bearer tok-123", "tok-123"},
		{"bearer tok-123", "tok-123"},
		{"BEARER tok-123", "tok-123"},
		{"Bearer   tok-123  ", "tok-123"},
		{"Token tok-123", ""},
		{"Bearer", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := extractFrom(t, svc, tc.header); got != tc.want {
			t.Fatalf("header %q: expected token %q, got %q", tc.header, tc.want, got)
		}
	}
}
