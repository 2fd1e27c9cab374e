package ws

import (
	"net/http"
	"net/url"
	"strings"

	"caterconnect_backend/internal/logger"
	"caterconnect_backend/pkg/apperrors"
	"caterconnect_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	Manager  *WebSocketManager
	upgrader websocket.Upgrader
}

// NewWebSocketHandler: origins - server.cors_origins, "*" пускает всех
func NewWebSocketHandler(manager *WebSocketManager, origins []string) *WebSocketHandler {
	return &WebSocketHandler{
		Manager: manager,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(origins),
		},
	}
}

// ServeWS - GET /ws, пользователь уже проверен AuthMiddleware
func (h *WebSocketHandler) ServeWS(c *gin.Context) {
	val, _ := c.Get(contextkeys.UserIDKey)
	userID, _ := val.(string)
	if userID == "" {
		apperrors.HandleError(c, apperrors.NewUnauthorizedError("User not authenticated"))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.CtxWithError(c.Request.Context(), "websocket upgrade failed", err)
		return
	}

	client := NewClient(h.Manager, userID, conn)
	if !h.Manager.Register(client) {
		conn.Close()
		return
	}

	go client.readPump()
	go client.writePump()
}

func checkOrigin(origins []string) func(r *http.Request) bool {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		allowed[o] = true
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // не браузер
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return allowed[u.Scheme+"://"+u.Host]
	}
}
