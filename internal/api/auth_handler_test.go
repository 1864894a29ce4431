package api

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"resumesmith/internal/auth"
	"resumesmith/internal/database"
)

// newTestAuthService 在测试里现场生成一对 RSA 密钥。
func newTestAuthService(t *testing.T) *auth.AuthService {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}
	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})

	svc, err := auth.NewAuthService(privPEM, pubPEM, 15*time.Minute, 24*time.Hour)
	if err != nil {
		t.Fatalf("new auth service: %v", err)
	}
	return svc
}

func newTestAuthHandler(t *testing.T) *AuthHandler {
	t.Helper()
	return NewAuthHandler(
		newTestDB(t), newTestAuthService(t), nil,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		0, 0, time.Minute, "",
	)
}

func TestRegister_DuplicateUsernameConflict(t *testing.T) {
	h := newTestAuthHandler(t)

	body := map[string]string{"username": "zhangsan", "password": "changeme-123"}

	c, w := jsonRequest(t, http.MethodPost, "/v1/auth/register", body)
	h.Register(c)
	c.Writer.WriteHeaderNow()
	if w.Code != http.StatusCreated {
		t.Fatalf("first register status = %d, want 201", w.Code)
	}

	c, w = jsonRequest(t, http.MethodPost, "/v1/auth/register", body)
	h.Register(c)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate register status = %d, want 409", w.Code)
	}
}

func seedAuthUser(t *testing.T, h *AuthHandler, password string, mustChange bool) *database.User {
	t.Helper()
	hashed, err := h.authService.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &database.User{Username: "lisi", PasswordHash: hashed, MustChangePassword: mustChange}
	if err := h.db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func TestChangePassword_WrongCurrentPassword(t *testing.T) {
	h := newTestAuthHandler(t)
	seedAuthUser(t, h, "original-pass-1", false)

	c, w := jsonRequest(t, http.MethodPost, "/v1/auth/change-password", map[string]string{
		"current_password": "totally-wrong-1",
		"new_password":     "brand-new-pass-1",
		"confirm_password": "brand-new-pass-1",
	})
	h.ChangePassword(c)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestChangePassword_RotatesHashAndClearsFlag(t *testing.T) {
	h := newTestAuthHandler(t)
	user := seedAuthUser(t, h, "original-pass-1", true)

	c, w := jsonRequest(t, http.MethodPost, "/v1/auth/change-password", map[string]string{
		"current_password": "original-pass-1",
		"new_password":     "brand-new-pass-1",
		"confirm_password": "brand-new-pass-1",
	})
	h.ChangePassword(c)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var resp sessionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.MustChangePassword {
		t.Fatal("must_change_password should be cleared in response")
	}
	if resp.AccessToken == "" {
		t.Fatal("access token missing from response")
	}

	var reloaded database.User
	if err := h.db.First(&reloaded, user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if reloaded.MustChangePassword {
		t.Fatal("must_change_password should be cleared in database")
	}
	if !h.authService.CheckPasswordHash("brand-new-pass-1", reloaded.PasswordHash) {
		t.Fatal("stored hash does not match the new password")
	}
}

func TestChangePassword_NewMustDiffer(t *testing.T) {
	h := newTestAuthHandler(t)
	seedAuthUser(t, h, "original-pass-1", false)

	c, w := jsonRequest(t, http.MethodPost, "/v1/auth/change-password", map[string]string{
		"current_password": "original-pass-1",
		"new_password":     "original-pass-1",
		"confirm_password": "original-pass-1",
	})
	h.ChangePassword(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestRefreshTokenFromRequest_PrefersCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newTestAuthHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: refreshCookieName, Value: "cookie-token"})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	if got := h.refreshTokenFromRequest(c); got != "cookie-token" {
		t.Fatalf("refreshTokenFromRequest = %q, want cookie value", got)
	}
}
