package realtime

import (
	"net/http"
	"strings"

	"courier/pkg"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWS handles the WebSocket upgrade with JWT authentication via query param or bearer header.
// Every "task" query value is subscribed right after the upgrade.
func ServeWS(hub *Hub, cfg Config, logger zerolog.Logger, w http.ResponseWriter, r *http.Request) {
	if !cfg.DevMode {
		token := r.URL.Query().Get("token")
		if token == "" {
			token = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		}
		if token == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}
		if _, err := pkg.ValidateToken(token, cfg.JWTSecret); err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to upgrade to WebSocket")
		return
	}

	client := NewClient(hub, conn, logger)
	select {
	case hub.register <- client:
	case <-hub.done:
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()

	for _, taskID := range r.URL.Query()["task"] {
		if taskID = strings.TrimSpace(taskID); taskID != "" {
			client.Subscribe(taskID)
		}
	}
}
