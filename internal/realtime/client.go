package realtime

import (
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufSize    = 64
)

// Client represents a single WebSocket connection.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	errs   chan []byte
	logger zerolog.Logger
}

func NewClient(hub *Hub, conn *websocket.Conn, logger zerolog.Logger) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBufSize),
		errs:   make(chan []byte, 8),
		logger: logger,
	}
}

// Subscribe asks the hub to forward the completion of taskID to this client
func (c *Client) Subscribe(taskID string) {
	c.hub.send(c.hub.subscribe, subscribeMsg{client: c, taskID: taskID})
}

// ReadPump reads subscription commands from the WebSocket connection.
func (c *Client) ReadPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Error().Err(err).Msg("WebSocket read error")
			}
			break
		}

		var msg incomingMsg
		if err := json.Unmarshal(message, &msg); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to unmarshal realtime command")
			c.sendError("invalid message format")
			continue
		}

		taskID := strings.TrimSpace(msg.TaskID)
		if taskID == "" {
			c.sendError("taskId is required")
			continue
		}

		switch msg.Action {
		case "subscribe":
			c.Subscribe(taskID)
		case "unsubscribe":
			c.hub.send(c.hub.unsubscribe, subscribeMsg{client: c, taskID: taskID})
		default:
			c.logger.Warn().Str("action", msg.Action).Msg("Unknown realtime action")
			c.sendError("unknown action")
		}
	}
}

// WritePump writes messages to the WebSocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case message := <-c.errs:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// sendError queues an error for WritePump; send is closed by the hub, errs never is
func (c *Client) sendError(text string) {
	payload, err := encodeEnvelope(TypeError, "", map[string]string{"message": text})
	if err != nil {
		return
	}
	select {
	case c.errs <- payload:
	default:
	}
}
