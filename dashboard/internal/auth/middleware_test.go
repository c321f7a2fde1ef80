package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func request(t *testing.T, h http.Handler, header, value string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/latest", nil)
	if value != "" {
		req.Header.Set(header, value)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestAPIKeyMiddleware_ValidKey(t *testing.T) {
	h := APIKeyMiddleware("apikey", "x-api-key", "secret", okHandler())
	if code := request(t, h, "x-api-key", "secret"); code != http.StatusOK {
		t.Errorf("valid key: status %d, want 200", code)
	}
}

func TestAPIKeyMiddleware_RejectsBadKey(t *testing.T) {
	h := APIKeyMiddleware("apikey", "x-api-key", "secret", okHandler())
	if code := request(t, h, "x-api-key", "wrong"); code != http.StatusUnauthorized {
		t.Errorf("wrong key: status %d, want 401", code)
	}
	if code := request(t, h, "x-api-key", ""); code != http.StatusUnauthorized {
		t.Errorf("missing key: status %d, want 401", code)
	}
}

func TestAPIKeyMiddleware_PassThroughModes(t *testing.T) {
	h := APIKeyMiddleware("none", "x-api-key", "secret", okHandler())
	if code := request(t, h, "x-api-key", ""); code != http.StatusOK {
		t.Errorf("mode none: status %d, want 200", code)
	}

	// apikey mode without a configured key also passes through.
	h = APIKeyMiddleware("apikey", "x-api-key", "", okHandler())
	if code := request(t, h, "x-api-key", ""); code != http.StatusOK {
		t.Errorf("empty key: status %d, want 200", code)
	}
}
