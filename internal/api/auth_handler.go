package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"resumesmith/internal/api/middleware"
	"resumesmith/internal/auth"
	"resumesmith/internal/database"
)

const refreshCookieName = "refresh_token"

// Redis key 约定与配额计数保持同一风格（见 redis_helpers.go）。
func loginRateKey(ip, username string) string {
	hour := time.Now().UTC().Format("2006010215")
	return fmt.Sprintf("login_rate:%s:%s:%s", ip, strings.ToLower(username), hour)
}

func loginFailKey(username string) string {
	return "login_fail:" + strings.ToLower(username)
}

func loginLockKey(username string) string {
	return "login_lock:" + strings.ToLower(username)
}

func refreshBlacklistKey(jti string) string {
	return "refresh_blacklist:" + jti
}

// AuthHandler 处理注册、登录、令牌刷新、改密与退出。
type AuthHandler struct {
	db           *gorm.DB
	authService  *auth.AuthService
	redis        redis.UniversalClient
	logger       *slog.Logger
	ratePerHour  int
	lockAfter    int
	lockTTL      time.Duration
	cookieDomain string
}

func NewAuthHandler(db *gorm.DB, authService *auth.AuthService, redisClient redis.UniversalClient, logger *slog.Logger, loginRateLimitPerHour int, loginLockThreshold int, loginLockTTL time.Duration, cookieDomain string) *AuthHandler {
	return &AuthHandler{
		db:           db,
		authService:  authService,
		redis:        redisClient,
		logger:       logger,
		ratePerHour:  loginRateLimitPerHour,
		lockAfter:    loginLockThreshold,
		lockTTL:      loginLockTTL,
		cookieDomain: cookieDomain,
	}
}

type registerRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// Register 创建新账号，用户名冲突返回 409。
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	log := h.requestLogger(c).With(slog.String("username", req.Username))

	var existing database.User
	err := h.db.WithContext(ctx).Where("username = ?", req.Username).First(&existing).Error
	switch {
	case err == nil:
		Conflict(c, "username already taken")
		return
	case !errors.Is(err, gorm.ErrRecordNotFound):
		log.Error("register lookup failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	hashed, err := h.authService.HashPassword(req.Password)
	if err != nil {
		log.Error("hash password failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	user := database.User{Username: req.Username, PasswordHash: hashed}
	if err := h.db.WithContext(ctx).Create(&user).Error; err != nil {
		log.Error("create user failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	log.Info("user registered", slog.Uint64("user_id", uint64(user.ID)))
	c.Status(http.StatusCreated)
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 校验口令。失败会累计计数，达到阈值后锁定账号一段时间。
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	log := h.requestLogger(c).With(slog.String("username", req.Username))

	if h.loginThrottled(ctx, c.ClientIP(), req.Username) {
		TooManyRequests(c, "too many login attempts")
		return
	}

	var user database.User
	err := h.db.WithContext(ctx).Where("username = ?", req.Username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		h.recordLoginFailure(ctx, req.Username)
		log.Info("login rejected: unknown user")
		Unauthorized(c)
		return
	}
	if err != nil {
		log.Error("login query failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	if !h.authService.CheckPasswordHash(req.Password, user.PasswordHash) {
		h.recordLoginFailure(ctx, req.Username)
		log.Info("login rejected: bad password", slog.Uint64("user_id", uint64(user.ID)))
		Unauthorized(c)
		return
	}

	_ = h.redis.Del(ctx, loginFailKey(req.Username)).Err()

	log.Info("login succeeded", slog.Uint64("user_id", uint64(user.ID)))
	h.issueSession(c, user.ID, user.MustChangePassword)
}

// loginThrottled 汇总两道闸：IP+用户名的每小时频率与失败锁定。
// Redis 故障时放行，登录可用性优先于限流精度。
func (h *AuthHandler) loginThrottled(ctx context.Context, ip, username string) bool {
	if h.ratePerHour > 0 {
		count, err := incrWithTTL(ctx, h.redis, loginRateKey(ip, username), time.Hour)
		if err == nil && count > int64(h.ratePerHour) {
			return true
		}
	}
	if ttl, err := h.redis.TTL(ctx, loginLockKey(username)).Result(); err == nil && ttl > 0 {
		return true
	}
	return false
}

// recordLoginFailure 累计失败次数，达到阈值时写入锁定标记。
func (h *AuthHandler) recordLoginFailure(ctx context.Context, username string) {
	count, err := incrWithTTL(ctx, h.redis, loginFailKey(username), h.lockTTL)
	if err != nil {
		return
	}
	if h.lockAfter > 0 && count >= int64(h.lockAfter) {
		_ = h.redis.Set(ctx, loginLockKey(username), "1", h.lockTTL).Err()
	}
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh 轮换刷新令牌：旧令牌进黑名单，换发新的 TokenPair。
func (h *AuthHandler) Refresh(c *gin.Context) {
	ctx := c.Request.Context()
	log := h.requestLogger(c)

	claims, err := h.verifyRefreshToken(ctx, h.refreshTokenFromRequest(c))
	if err != nil {
		log.Info("refresh rejected", slog.Any("error", err))
		Unauthorized(c)
		return
	}

	var user database.User
	if err := h.db.WithContext(ctx).First(&user, claims.UserID).Error; err != nil {
		log.Info("refresh rejected: user missing", slog.Any("error", err))
		Unauthorized(c)
		return
	}

	if err := h.revokeRefreshToken(ctx, claims); err != nil {
		log.Error("refresh rotation failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	h.issueSession(c, user.ID, user.MustChangePassword)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required,min=8,max=72"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirm_password" binding:"required,min=8,max=72"`
}

// ChangePassword 校验当前口令后更新哈希，并清掉 must_change_password 标记。
// 携带的刷新令牌一并作废，改密后旧会话不能再续期。
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		BadRequest(c, "password confirmation does not match")
		return
	}
	if req.NewPassword == req.CurrentPassword {
		BadRequest(c, "new password must differ from the current one")
		return
	}

	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	ctx := c.Request.Context()
	log := h.requestLogger(c).With(slog.Uint64("user_id", uint64(userID)))

	var user database.User
	if err := h.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		log.Info("change password rejected: user missing", slog.Any("error", err))
		Unauthorized(c)
		return
	}
	if !h.authService.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
		log.Info("change password rejected: bad current password")
		Unauthorized(c)
		return
	}

	hashed, err := h.authService.HashPassword(req.NewPassword)
	if err != nil {
		log.Error("hash new password failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	if err := h.db.WithContext(ctx).Model(&user).Updates(map[string]any{
		"password_hash":        hashed,
		"must_change_password": false,
	}).Error; err != nil {
		log.Error("update password failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	if raw, err := c.Cookie(refreshCookieName); err == nil && raw != "" {
		if claims, err := h.verifyRefreshToken(ctx, raw); err == nil {
			if err := h.revokeRefreshToken(ctx, claims); err != nil {
				log.Error("revoke refresh after password change failed", slog.Any("error", err))
				Internal(c, "internal error")
				return
			}
		}
	}

	log.Info("password changed")
	h.issueSession(c, user.ID, false)
}

// Logout 作废刷新令牌并清除 Cookie。
func (h *AuthHandler) Logout(c *gin.Context) {
	raw := h.refreshTokenFromRequest(c)
	if raw == "" {
		BadRequest(c, "refresh token missing")
		return
	}

	ctx := c.Request.Context()
	log := h.requestLogger(c)

	claims, err := h.verifyRefreshToken(ctx, raw)
	if err != nil {
		log.Info("logout rejected", slog.Any("error", err))
		Unauthorized(c)
		return
	}

	if err := h.revokeRefreshToken(ctx, claims); err != nil {
		log.Error("logout revoke failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	h.writeRefreshCookie(c, "", -1)
	c.Status(http.StatusOK)
}

type sessionResponse struct {
	AccessToken        string `json:"access_token"`
	TokenType          string `json:"token_type"`
	ExpiresIn          int    `json:"expires_in"`
	MustChangePassword bool   `json:"must_change_password"`
}

// issueSession 签发 TokenPair：刷新令牌写入 HttpOnly Cookie，访问令牌进响应体。
func (h *AuthHandler) issueSession(c *gin.Context, userID uint, mustChangePassword bool) {
	tokenPair, err := h.authService.GenerateTokenPair(userID, mustChangePassword)
	if err != nil {
		h.requestLogger(c).Error("generate token pair failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	maxAge := int(h.authService.RefreshTokenTTL().Seconds())
	if maxAge <= 0 {
		maxAge = int(time.Hour.Seconds())
	}
	h.writeRefreshCookie(c, tokenPair.RefreshToken, maxAge)

	c.JSON(http.StatusOK, sessionResponse{
		AccessToken:        tokenPair.AccessToken,
		TokenType:          "Bearer",
		ExpiresIn:          int(h.authService.AccessTokenTTL().Seconds()),
		MustChangePassword: mustChangePassword,
	})
}

// refreshTokenFromRequest 优先取 Cookie，浏览器之外的客户端可以放在请求体里。
func (h *AuthHandler) refreshTokenFromRequest(c *gin.Context) string {
	if token, err := c.Cookie(refreshCookieName); err == nil && token != "" {
		return token
	}
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err == nil {
		return req.RefreshToken
	}
	return ""
}

// verifyRefreshToken 校验签名、类型、jti，并确认未被列入黑名单。
func (h *AuthHandler) verifyRefreshToken(ctx context.Context, raw string) (*auth.TokenClaims, error) {
	if raw == "" {
		return nil, errors.New("refresh token missing")
	}
	claims, err := h.authService.ValidateToken(raw)
	if err != nil {
		return nil, fmt.Errorf("validate refresh token: %w", err)
	}
	if claims.TokenType != "refresh" {
		return nil, fmt.Errorf("unexpected token type %q", claims.TokenType)
	}
	if claims.ID == "" {
		return nil, errors.New("refresh token missing jti")
	}

	err = h.redis.Get(ctx, refreshBlacklistKey(claims.ID)).Err()
	if err == nil {
		return nil, errors.New("refresh token revoked")
	}
	if !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("blacklist lookup: %w", err)
	}
	return claims, nil
}

// revokeRefreshToken 按令牌剩余有效期写入黑名单，到期自动清理。
func (h *AuthHandler) revokeRefreshToken(ctx context.Context, claims *auth.TokenClaims) error {
	ttl := h.authService.RefreshTokenTTL()
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl <= 0 {
		ttl = time.Second
	}
	return h.redis.Set(ctx, refreshBlacklistKey(claims.ID), "revoked", ttl).Err()
}

func (h *AuthHandler) writeRefreshCookie(c *gin.Context, value string, maxAge int) {
	cookie := &http.Cookie{
		Name:     refreshCookieName,
		Value:    value,
		MaxAge:   maxAge,
		Path:     "/",
		Secure:   requestIsHTTPS(c),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Domain:   strings.TrimSpace(h.cookieDomain),
	}
	if maxAge > 0 {
		cookie.Expires = time.Now().Add(time.Duration(maxAge) * time.Second)
	}
	http.SetCookie(c.Writer, cookie)
}

func (h *AuthHandler) requestLogger(c *gin.Context) *slog.Logger {
	if logger := middleware.LoggerFromContext(c); logger != nil {
		return logger
	}
	if h.logger != nil {
		return h.logger
	}
	return slog.Default()
}

func requestIsHTTPS(c *gin.Context) bool {
	if c.Request == nil {
		return false
	}
	if c.Request.TLS != nil {
		return true
	}
	return strings.EqualFold(c.Request.Header.Get("X-Forwarded-Proto"), "https")
}
