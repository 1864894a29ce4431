package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"resumesmith/internal/auth"
	"resumesmith/internal/worker"
)

const (
	// 客户端升级连接后必须在这个窗口内完成鉴权，否则直接断开。
	notifyAuthTimeout  = 10 * time.Second
	notifyPingInterval = 30 * time.Second
	notifyWriteTimeout = 5 * time.Second
)

// NotifyHandler 把 worker 发布的导出事件经 WebSocket 推给前端。
// Redis 频道里的内容按 ExportNotifyMessage 解码校验，坏载荷丢弃不转发。
type NotifyHandler struct {
	redisClient    *redis.Client
	authService    *auth.AuthService
	logger         *slog.Logger
	upgrader       websocket.Upgrader
	allowedOrigins []string
}

// NewNotifyHandler 构造 WebSocket 通知处理器。
// 未配置白名单时退化为同源检查。
func NewNotifyHandler(redisClient *redis.Client, authService *auth.AuthService, logger *slog.Logger, allowedOrigins []string) *NotifyHandler {
	h := &NotifyHandler{
		redisClient:    redisClient,
		authService:    authService,
		logger:         logger,
		allowedOrigins: allowedOrigins,
	}
	h.upgrader = websocket.Upgrader{CheckOrigin: h.originAllowed}
	return h
}

func (h *NotifyHandler) originAllowed(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if len(h.allowedOrigins) == 0 {
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return strings.EqualFold(u.Host, r.Host)
	}
	for _, allowed := range h.allowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

// exportEvent 是推给前端的事件信封，字段与 worker 的通知协议对齐。
type exportEvent struct {
	Type string `json:"type"`
	worker.ExportNotifyMessage
}

// decodeExportEvent 把 pub/sub 载荷解码成类型化事件。
// kind 和 status 必须是已知取值，否则视为坏消息。
func decodeExportEvent(payload []byte) (exportEvent, error) {
	var msg worker.ExportNotifyMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return exportEvent{}, fmt.Errorf("decode export notification: %w", err)
	}
	switch msg.Kind {
	case "pdf", "docx":
	default:
		return exportEvent{}, fmt.Errorf("unknown export kind %q", msg.Kind)
	}
	switch msg.Status {
	case "completed", "error":
	default:
		return exportEvent{}, fmt.Errorf("unknown export status %q", msg.Status)
	}
	return exportEvent{Type: "export", ExportNotifyMessage: msg}, nil
}

type wsAuthMessage struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// HandleConnection 升级连接后同步等待鉴权，再开始转发事件。
func (h *NotifyHandler) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("upgrade websocket failed", slog.Any("error", err))
		return
	}
	defer conn.Close()

	log := h.logger.With(slog.String("client_ip", c.ClientIP()))

	userID, err := h.awaitAuth(conn)
	if err != nil {
		log.Warn("websocket authentication failed", slog.Any("error", err))
		return
	}

	log = log.With(slog.Uint64("user_id", uint64(userID)))
	log.Info("websocket authenticated")

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// 鉴权后客户端不再发业务消息，读循环只用来感知断开。
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	if err := h.relayEvents(ctx, conn, userID, log); err != nil {
		log.Info("websocket connection closed", slog.Any("error", err))
		return
	}
	log.Info("websocket connection closed")
}

// awaitAuth 读取首条消息并校验 access token，返回用户 ID。
func (h *NotifyHandler) awaitAuth(conn *websocket.Conn) (uint, error) {
	_ = conn.SetReadDeadline(time.Now().Add(notifyAuthTimeout))
	defer func() { _ = conn.SetReadDeadline(time.Time{}) }()

	_, message, err := conn.ReadMessage()
	if err != nil {
		return 0, fmt.Errorf("read auth message: %w", err)
	}

	var authMsg wsAuthMessage
	if err := json.Unmarshal(message, &authMsg); err != nil {
		writeClose(conn, websocket.ClosePolicyViolation, "invalid auth payload")
		return 0, fmt.Errorf("decode auth payload: %w", err)
	}
	if authMsg.Type != "auth" || authMsg.Token == "" {
		writeClose(conn, websocket.ClosePolicyViolation, "auth required")
		return 0, errors.New("first message must carry an auth token")
	}

	claims, err := h.authService.ValidateToken(authMsg.Token)
	if err != nil {
		writeClose(conn, websocket.ClosePolicyViolation, "unauthorized")
		return 0, fmt.Errorf("validate token: %w", err)
	}
	if claims.TokenType != "access" {
		writeClose(conn, websocket.ClosePolicyViolation, "access token required")
		return 0, fmt.Errorf("unexpected token type %q", claims.TokenType)
	}
	if claims.MustChangePassword {
		writeClose(conn, websocket.ClosePolicyViolation, "password change required")
		return 0, errors.New("password change required")
	}

	return claims.UserID, nil
}

// relayEvents 订阅用户频道，把类型化事件推给客户端并定时心跳。
func (h *NotifyHandler) relayEvents(ctx context.Context, conn *websocket.Conn, userID uint, log *slog.Logger) error {
	channel := fmt.Sprintf("user_notify:%d", userID)
	pubsub := h.redisClient.Subscribe(ctx, channel)
	defer pubsub.Close()

	log.Info("subscribed to notify channel", slog.String("channel", channel))

	events := pubsub.Channel()
	ticker := time.NewTicker(notifyPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-events:
			if !ok {
				return errors.New("pubsub channel closed")
			}
			event, err := decodeExportEvent([]byte(msg.Payload))
			if err != nil {
				log.Warn("dropping malformed notification", slog.Any("error", err))
				continue
			}
			log.Info("forwarding export event",
				slog.String("kind", event.Kind),
				slog.String("status", event.Status),
			)
			if err := conn.WriteJSON(event); err != nil {
				return fmt.Errorf("write export event: %w", err)
			}
		case <-ticker.C:
			deadline := time.Now().Add(notifyWriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, []byte("ping"), deadline); err != nil {
				return fmt.Errorf("write ping: %w", err)
			}
		}
	}
}

func writeClose(conn *websocket.Conn, code int, text string) {
	deadline := time.Now().Add(notifyWriteTimeout)
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), deadline)
}
