package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pcohire/config"
	"pcohire/models"
	"pcohire/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthRouter(t *testing.T, roles ...string) *gin.Engine {
	t.Helper()
	config.AppConfig.JWTSecret = "test-secret"
	t.Cleanup(func() { config.AppConfig.JWTSecret = "" })

	r := gin.New()
	r.Use(RequestLogger(zap.NewNop()), JWTAuthMiddleware())
	if len(roles) > 0 {
		r.Use(RequireRoles(roles...))
	}
	r.GET("/whoami", func(c *gin.Context) {
		caller, ok := CallerFromContext(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": caller.ID, "role": caller.Role})
	})
	return r
}

func doRequest(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuthMiddleware(t *testing.T) {
	r := newAuthRouter(t)

	token, err := utils.GenerateToken("p1", models.RolePartner, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if w := doRequest(r, token); w.Code != http.StatusOK {
		t.Errorf("valid token: status = %d, body = %s", w.Code, w.Body.String())
	}
	if w := doRequest(r, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("missing token: status = %d", w.Code)
	}
	if w := doRequest(r, "not-a-jwt"); w.Code != http.StatusUnauthorized {
		t.Errorf("garbage token: status = %d", w.Code)
	}

	expired, err := utils.GenerateToken("p1", models.RolePartner, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if w := doRequest(r, expired); w.Code != http.StatusUnauthorized {
		t.Errorf("expired token: status = %d", w.Code)
	}

	unknownRole, err := utils.GenerateToken("x", "guest", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if w := doRequest(r, unknownRole); w.Code != http.StatusUnauthorized {
		t.Errorf("unknown role: status = %d", w.Code)
	}
}

func TestRequireRoles(t *testing.T) {
	r := newAuthRouter(t, models.RoleAdmin)

	driver, _ := utils.GenerateToken("d1", models.RoleDriver, time.Hour)
	if w := doRequest(r, driver); w.Code != http.StatusForbidden {
		t.Errorf("driver: status = %d, want 403", w.Code)
	}
	admin, _ := utils.GenerateToken("a1", models.RoleAdmin, time.Hour)
	if w := doRequest(r, admin); w.Code != http.StatusOK {
		t.Errorf("admin: status = %d, want 200", w.Code)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(2))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.7")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want [200 200 429]", codes)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded list", map[string]string{"X-Forwarded-For": "198.51.100.1, 10.0.0.1"}, "10.0.0.2:1234", "198.51.100.1"},
		{"real ip", map[string]string{"X-Real-IP": " 198.51.100.2 "}, "10.0.0.2:1234", "198.51.100.2"},
		{"remote addr", nil, "192.0.2.5:4567", "192.0.2.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Request.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				c.Request.Header.Set(k, v)
			}
			if got := getClientIP(c); got != tt.want {
				t.Errorf("getClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
