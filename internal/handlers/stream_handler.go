package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/NewMtnGoat/new-status/internal/services"
	"github.com/NewMtnGoat/new-status/pkg/jwt"
	"github.com/NewMtnGoat/new-status/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// StreamHandler upgrades a client to the live event stream.
type StreamHandler struct {
	Hub       *services.Hub
	JWTSecret string
}

// NewStreamHandler initializes a new StreamHandler.
func NewStreamHandler(hub *services.Hub, jwtSecret string) *StreamHandler {
	return &StreamHandler{Hub: hub, JWTSecret: jwtSecret}
}

// ServeStream authenticates via the token query parameter, since browser
// websocket clients cannot set an Authorization header, then registers the
// connection with the hub and blocks reading until the client goes away.
func (h *StreamHandler) ServeStream(w http.ResponseWriter, r *http.Request) {
	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}

	claims, err := jwt.ValidateToken(tokenString, h.JWTSecret)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Errorf("Stream upgrade failed for %s: %v", claims.UserID, err)
		return
	}

	session := h.Hub.Register(claims.UserID, conn)
	defer h.Hub.Unregister(claims.UserID, session)

	logger.Log.Infof("Stream opened for user %s", claims.UserID)

	// Drain client frames until the connection closes. The stream is
	// push-only; inbound payloads are ignored.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
