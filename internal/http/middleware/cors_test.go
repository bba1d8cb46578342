package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestCORSOrigins(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name    string
		allowed []string
		origin  string
		want    string
	}{
		{"default dashboard", nil, "http://localhost:8501", "http://localhost:8501"},
		{"configured", []string{"https://app.example.com"}, "https://app.example.com", "https://app.example.com"},
		{"not allowed", []string{"https://app.example.com"}, "http://localhost:8501", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.Use(CORS(tc.allowed))
			r.OPTIONS("/api/login", func(c *gin.Context) {
				c.Status(http.StatusNoContent)
			})

			req := httptest.NewRequest(http.MethodOptions, "/api/login", nil)
			req.Header.Set("Origin", tc.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tc.want {
				t.Fatalf("allow-origin=%q want %q", got, tc.want)
			}
		})
	}
}
