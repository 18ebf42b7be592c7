package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cardledger/backend/internal/integration/adapters"
	"github.com/cardledger/backend/internal/integration/entrypoint/middleware"
)

const testSecret = "middleware-test-secret"

func newAuthRouter() (*gin.Engine, string) {
	gin.SetMode(gin.TestMode)

	service := adapters.NewTokenService(testSecret)
	token, _ := service.GenerateAccessToken(context.Background(), uuid.New(), "alice@example.com")

	router := gin.New()
	router.Use(middleware.NewAuthMiddleware(service).Authenticate())
	router.GET("/protected", func(c *gin.Context) {
		if _, ok := middleware.GetUserIDFromContext(c); !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusOK)
	})

	return router, token
}

func TestAuthMiddleware(t *testing.T) {
	router, validToken := newAuthRouter()

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "valid token", header: "Bearer " + validToken, wantStatus: http.StatusOK},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "missing bearer prefix", header: validToken, wantStatus: http.StatusUnauthorized},
		{name: "malformed token", header: "Bearer not.a.token", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestWriteThrottle(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Setenv("ENV", "development")

	throttle := middleware.NewWriteThrottleWithConfig(2, 1*time.Minute)
	router := gin.New()
	router.Use(throttle.Middleware())
	router.POST("/write", func(c *gin.Context) { c.Status(http.StatusCreated) })

	do := func() int {
		req := httptest.NewRequest(http.MethodPost, "/write", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	if got := do(); got != http.StatusCreated {
		t.Fatalf("first request status = %d, want 201", got)
	}
	if got := do(); got != http.StatusCreated {
		t.Fatalf("second request status = %d, want 201", got)
	}
	if got := do(); got != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want 429", got)
	}

	// Other clients keep their own window.
	req := httptest.NewRequest(http.MethodPost, "/write", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("other client status = %d, want 201", rec.Code)
	}

	throttle.Reset()
	if got := do(); got != http.StatusCreated {
		t.Fatalf("status after reset = %d, want 201", got)
	}
}
