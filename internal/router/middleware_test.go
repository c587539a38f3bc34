package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stablefront/internal/http/response"

	"github.com/stablefront/internal/models"
	"github.com/stablefront/internal/repository"
	"github.com/stablefront/internal/service"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "router-middleware-test-secret-0123456789"

func setupMiddlewareDB(t *testing.T) {
	t.Helper()
	dsn := fmt.Sprintf("file:middleware_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	if err := models.InitDB("sqlite", dsn, models.DBPoolConfig{MaxOpenConns: 1, MaxIdleConns: 1}); err != nil {
		t.Fatalf("init db: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
}

func seedMerchant(t *testing.T, username, password string) *models.Merchant {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	merchant := &models.Merchant{Username: username, PasswordHash: string(hash)}
	if err := models.DB.Create(merchant).Error; err != nil {
		t.Fatalf("seed merchant: %v", err)
	}
	return merchant
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestIDMiddleware())
	engine.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, getRequestID(c))
	})

	t.Run("generates when absent", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		engine.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/ping", nil))
		id := recorder.Header().Get(requestIDHeader)
		if id == "" {
			t.Fatal("response missing request id header")
		}
		if recorder.Body.String() != id {
			t.Errorf("context request id = %q, header = %q", recorder.Body.String(), id)
		}
	})

	t.Run("echoes caller id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(requestIDHeader, "req-abc-123")
		recorder := httptest.NewRecorder()
		engine.ServeHTTP(recorder, req)
		if got := recorder.Header().Get(requestIDHeader); got != "req-abc-123" {
			t.Errorf("request id = %q, want req-abc-123", got)
		}
	})
}

func TestResolveAllowedOrigin(t *testing.T) {
	cases := []struct {
		name             string
		origin           string
		allowed          []string
		allowCredentials bool
		want             string
	}{
		{"wildcard", "https://shop.example.com", []string{"*"}, false, "*"},
		{"wildcard with credentials reflects origin", "https://shop.example.com", []string{"*"}, true, "https://shop.example.com"},
		{"exact match", "https://shop.example.com", []string{"https://shop.example.com"}, false, "https://shop.example.com"},
		{"case insensitive match", "https://Shop.Example.com", []string{"https://shop.example.com"}, false, "https://Shop.Example.com"},
		{"no match", "https://evil.example.com", []string{"https://shop.example.com"}, false, ""},
		{"empty origin against explicit list", "", []string{"https://shop.example.com"}, false, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := resolveAllowedOrigin(tc.origin, tc.allowed, tc.allowCredentials)
			if got != tc.want {
				t.Errorf("resolveAllowedOrigin() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestMerchantJWTAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	setupMiddlewareDB(t)
	merchant := seedMerchant(t, "merchant", "merchant123")

	merchantRepo := repository.NewMerchantRepository(models.DB)
	authService := service.NewAuthService(merchantRepo, testJWTSecret, time.Hour)
	token, err := authService.Login("merchant", "merchant123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	engine := gin.New()
	engine.GET("/admin/ping", MerchantJWTAuthMiddleware(testJWTSecret, merchantRepo), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"merchant_id": c.GetUint("merchant_id")})
	})

	do := func(authHeader string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
		if authHeader != "" {
			req.Header.Set("Authorization", authHeader)
		}
		recorder := httptest.NewRecorder()
		engine.ServeHTTP(recorder, req)
		return recorder
	}
	// 信封错误走业务状态码，HTTP 层恒为 200
	statusCode := func(t *testing.T, recorder *httptest.ResponseRecorder) int {
		t.Helper()
		var body struct {
			StatusCode int `json:"status_code"`
		}
		if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode body %q: %v", recorder.Body.String(), err)
		}
		return body.StatusCode
	}

	t.Run("valid token", func(t *testing.T) {
		recorder := do("Bearer " + token)
		if recorder.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 (body: %s)", recorder.Code, recorder.Body.String())
		}
		var body struct {
			MerchantID uint `json:"merchant_id"`
		}
		if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.MerchantID != merchant.ID {
			t.Errorf("merchant_id = %d, want %d", body.MerchantID, merchant.ID)
		}
	})

	t.Run("rejects bad input", func(t *testing.T) {
		forged, err := service.NewAuthService(merchantRepo, "another-secret-that-is-long-enough-0000", time.Hour).Login("merchant", "merchant123")
		if err != nil {
			t.Fatalf("login with other secret: %v", err)
		}
		cases := []struct {
			name   string
			header string
		}{
			{"missing header", ""},
			{"not bearer", "Basic " + token},
			{"garbage token", "Bearer not-a-jwt"},
			{"wrong secret", "Bearer " + forged},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				if got := statusCode(t, do(tc.header)); got != response.CodeUnauthorized {
					t.Errorf("status_code = %d, want %d", got, response.CodeUnauthorized)
				}
			})
		}
	})

	t.Run("rejects deleted merchant", func(t *testing.T) {
		if err := models.DB.Delete(&models.Merchant{}, merchant.ID).Error; err != nil {
			t.Fatalf("delete merchant: %v", err)
		}
		if got := statusCode(t, do("Bearer " + token)); got != response.CodeUnauthorized {
			t.Errorf("status_code = %d, want %d after merchant removal", got, response.CodeUnauthorized)
		}
	})
}
