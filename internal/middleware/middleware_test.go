package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"

	apperrors "ledgerengine/internal/errors"
	"ledgerengine/internal/logger"
	"ledgerengine/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
}

func newAuthRouter() *gin.Engine {
	r := gin.New()
	r.Use(AuthMiddleware())
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString(UserIDKey), "email": c.GetString(EmailKey)})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	user := &models.User{Base: models.Base{ID: "0190f5a4-7c2e-7d2e-9c1a-3b2f1e0d4c5b"}, Email: "a@test.com"}
	valid, err := GenerateAccessToken(user)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &JWTClaims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	expiredToken, _ := expired.SignedString(getJWTKey())

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, &JWTClaims{UserID: user.ID})
	foreignToken, _ := foreign.SignedString([]byte("some-other-secret"))

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid", "Bearer " + valid, http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"wrong_scheme", "Token " + valid, http.StatusUnauthorized},
		{"expired", "Bearer " + expiredToken, http.StatusUnauthorized},
		{"wrong_key", "Bearer " + foreignToken, http.StatusUnauthorized},
		{"garbage", "Bearer not-a-jwt", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			newAuthRouter().ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus == http.StatusOK {
				var body map[string]string
				_ = json.Unmarshal(w.Body.Bytes(), &body)
				if body["user_id"] != user.ID {
					t.Errorf("user_id = %q, want %q", body["user_id"], user.ID)
				}
			}
		})
	}
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/budget", func(c *gin.Context) {
		_ = c.Error(apperrors.BudgetExceeded(mustDecimal("2.5")))
	})
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(errors.New("database exploded"))
	})

	t.Run("app_error_with_details", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/budget", nil))
		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d, want 422", w.Code)
		}
		var body struct {
			Error struct {
				Code    string            `json:"code"`
				Details map[string]string `json:"details"`
			} `json:"error"`
		}
		_ = json.Unmarshal(w.Body.Bytes(), &body)
		if body.Error.Code != "BUDGET_EXCEEDED" || body.Error.Details["shortfall"] != "2.50" {
			t.Errorf("unexpected body %s", w.Body.String())
		}
	})

	t.Run("unexpected_error_is_generic", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500", w.Code)
		}
		if got := w.Body.String(); !json.Valid([]byte(got)) || strings.Contains(got, "exploded") {
			t.Errorf("internal details leaked: %s", got)
		}
	})
}

func TestRequestLogging_SetsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogging())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
}

func mustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
