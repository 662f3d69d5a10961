package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/OldStager01/decision-brain/internal/logger"
	"github.com/OldStager01/decision-brain/pkg/models"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	settings *WebSocketSettings

	mu          sync.RWMutex
	environment string // empty means every environment
	closed      bool
}

type IncomingMessage struct {
	Type        string `json:"type"`
	Environment string `json:"environment,omitempty"`
}

func NewClient(hub *Hub, conn *websocket.Conn, environment string) *Client {
	return &Client{
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, hub.settings.ClientBuffer),
		settings:    hub.settings,
		environment: environment,
	}
}

func (c *Client) wants(environment string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.environment == "" || c.environment == environment
}

func (c *Client) setEnvironment(environment string) {
	c.mu.Lock()
	c.environment = environment
	c.mu.Unlock()
}

// closeSend is called by the hub goroutine only.
func (c *Client) closeSend() {
	c.mu.Lock()
	c.closed = true
	close(c.send)
	c.mu.Unlock()
}

func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.settings.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.settings.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.settings.PongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Errorf("WebSocket error: %v", err)
			}
			break
		}

		var msg IncomingMessage
		if err := json.Unmarshal(message, &msg); err == nil {
			c.handleMessage(&msg)
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(c.settings.PingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.settings.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.settings.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(msg *IncomingMessage) {
	switch msg.Type {
	case "subscribe":
		env, ok := models.ParseEnvironment(msg.Environment)
		if !ok {
			c.sendControl("error", msg.Environment)
			return
		}
		c.setEnvironment(env.String())
		logger.WithEnvironment(env.String()).Info("Client subscribed to environment")
		c.sendControl("subscribed", env.String())
	case "unsubscribe":
		c.setEnvironment("")
		logger.Info("Client unsubscribed, streaming all environments")
		c.sendControl("unsubscribed", "")
	}
}

func (c *Client) sendControl(action, environment string) {
	confirmation := map[string]interface{}{
		"type":        "subscription_update",
		"action":      action,
		"environment": environment,
		"timestamp":   time.Now(),
	}
	data, err := json.Marshal(confirmation)
	if err != nil {
		logger.Errorf("Failed to marshal confirmation: %v", err)
		return
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		logger.Warn("Client send channel full, dropping confirmation")
	}
}

func ServeWebSocket(hub *Hub) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  hub.settings.ReadBufferSize,
		WriteBufferSize: hub.settings.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	return func(c *gin.Context) {
		environment := c.Query("environment")
		if environment != "" {
			env, ok := models.ParseEnvironment(environment)
			if !ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid environment: " + environment})
				return
			}
			environment = env.String()
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Errorf("WebSocket upgrade failed: %v", err)
			return
		}

		client := NewClient(hub, conn, environment)
		hub.Register(client)

		go client.WritePump()
		go client.ReadPump()
	}
}
