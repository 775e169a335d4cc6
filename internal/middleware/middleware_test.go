package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"artforge/internal/models"
	"artforge/internal/security"
	"artforge/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAuthenticator struct {
	err error
}

func (f fakeAuthenticator) Authenticate(_ context.Context, token, _, _ string) (models.User, security.AccessClaims, error) {
	if f.err != nil {
		return models.User{}, security.AccessClaims{}, f.err
	}
	return models.User{ID: "user-" + token, Status: models.UserStatusActive}, security.AccessClaims{SessionID: "s1"}, nil
}

func authRouter(auth Authenticator) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Logger(zerolog.Nop()), Recovery(zerolog.Nop()))
	r.GET("/me", Auth(auth), func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, user.ID)
	})
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	return r
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name   string
		header string
		err    error
		status int
		body   string
	}{
		{name: "missing header", status: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", status: http.StatusUnauthorized},
		{name: "invalid token", header: "Bearer bad", err: service.ErrInvalidCredentials, status: http.StatusUnauthorized},
		{name: "suspended", header: "Bearer tok", err: service.ErrUserSuspended, status: http.StatusForbidden},
		{name: "ok", header: "Bearer tok", status: http.StatusOK, body: "user-tok"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			authRouter(fakeAuthenticator{err: tc.err}).ServeHTTP(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d", rec.Code, tc.status)
			}
			if tc.body != "" && rec.Body.String() != tc.body {
				t.Errorf("body = %q, want %q", rec.Body.String(), tc.body)
			}
		})
	}
}

func TestRequestIDAndRecovery(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	req.Header.Set(requestIDHeader, "req-123")
	authRouter(fakeAuthenticator{}).ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if got := rec.Header().Get(requestIDHeader); got != "req-123" {
		t.Errorf("request id = %q", got)
	}

	rec = httptest.NewRecorder()
	authRouter(fakeAuthenticator{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))
	if rec.Header().Get(requestIDHeader) == "" {
		t.Error("request id not generated")
	}
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://app.example"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://app.example")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent || rec.Header().Get("Access-Control-Allow-Origin") != "https://app.example" {
		t.Errorf("preflight: status=%d origin=%q", rec.Code, rec.Header().Get("Access-Control-Allow-Origin"))
	}

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("disallowed origin echoed")
	}
}
