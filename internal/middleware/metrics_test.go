package middleware

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

// =============================================================================
// Metrics Auth Middleware Tests
// =============================================================================

func scrapeHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("metrics data"))
	})
}

func TestMetricsAuthMiddleware_Credentials(t *testing.T) {
	wrapped := NewMetricsAuthMiddleware("admin", "secret123").Handler(scrapeHandler())

	tests := []struct {
		name string
		user string
		pass string
		want int
	}{
		{"valid credentials", "admin", "secret123", http.StatusOK},
		{"wrong password", "admin", "wrong", http.StatusUnauthorized},
		{"wrong username", "wronguser", "secret123", http.StatusUnauthorized},
		{"both wrong", "wrong", "wrong", http.StatusUnauthorized},
		{"empty credentials", "", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/metrics", nil)
			req.SetBasicAuth(tt.user, tt.pass)
			rec := httptest.NewRecorder()

			wrapped.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestMetricsAuthMiddleware_NoAuthHeader(t *testing.T) {
	wrapped := NewMetricsAuthMiddleware("admin", "secret123").Handler(scrapeHandler())

	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, `Basic realm="metrics"`, rec.Header().Get("WWW-Authenticate"))
}

func TestMetricsAuthMiddleware_MalformedAuthHeader(t *testing.T) {
	wrapped := NewMetricsAuthMiddleware("admin", "secret123").Handler(scrapeHandler())

	req := httptest.NewRequest("GET", "/metrics", nil)
	req.Header.Set("Authorization", "Basic notvalidbase64!!!")
	rec := httptest.NewRecorder()

	wrapped.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMetricsAuthMiddleware_CredentialSmuggling(t *testing.T) {
	wrapped := NewMetricsAuthMiddleware("admin", "secret123").Handler(scrapeHandler())

	// Newlines smuggled into the credential must not match.
	req := httptest.NewRequest("GET", "/metrics", nil)
	malicious := base64.StdEncoding.EncodeToString([]byte("admin:secret123\r\nX-Injected: header"))
	req.Header.Set("Authorization", "Basic "+malicious)
	rec := httptest.NewRecorder()

	wrapped.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMetricsAuthMiddleware_DisabledWithoutCredentials(t *testing.T) {
	wrapped := NewMetricsAuthMiddleware("", "").Handler(scrapeHandler())

	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "metrics data", rec.Body.String())
}
