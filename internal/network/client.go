package network

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/MRamiBalles/hullbreach/internal/domain/outcome"
	"github.com/MRamiBalles/hullbreach/internal/engine"
	"github.com/MRamiBalles/hullbreach/internal/platform/metrics"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 1024
)

// Client is one WebSocket connection. Commands it sends are answered on
// its own channel; events reach it through the hub.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	limiter *rate.Limiter
	closed  bool // guarded by hub.mu
}

// NewClient creates a new WebSocket client and returns it.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, hub.tuning.ClientSendBuffer),
		limiter: rate.NewLimiter(rate.Limit(hub.tuning.CommandsPerSecond), hub.tuning.CommandBurst),
	}
}

// Register adds the client to the hub. If the hub has stopped the client
// is closed instead.
func (c *Client) Register() {
	select {
	case c.hub.register <- c:
	case <-c.hub.done:
		c.hub.mu.Lock()
		c.close()
		c.hub.mu.Unlock()
	}
}

// ReadPump reads commands from the websocket connection.
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
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("WebSocket read failed", "error", err)
				metrics.Get().RecordWSError()
			}
			break
		}
		metrics.Get().RecordWSMessage(true)

		var cmd engine.Command
		if err := json.Unmarshal(message, &cmd); err != nil {
			c.hub.logger.Warn("Failed to parse command from WebSocket", "error", err)
			c.reply(cmd, outcome.Rejectf(outcome.ReasonInvalidRequest, "malformed command"))
			continue
		}
		c.reply(cmd, c.handleCommand(cmd))
	}
}

func (c *Client) handleCommand(cmd engine.Command) outcome.Result {
	if !c.limiter.Allow() {
		metrics.Get().RecordRateLimited()
		c.hub.logger.Warn("Rate limit exceeded for client command", "ship", cmd.ShipID, "type", cmd.Type)
		return outcome.Rejectf(outcome.ReasonRateLimited, "rate limit exceeded")
	}
	return c.hub.sim.Execute(cmd)
}

// reply queues a result frame for this client only. A full send buffer
// drops the reply rather than blocking the read loop.
func (c *Client) reply(cmd engine.Command, r outcome.Result) {
	payload, err := json.Marshal(Frame{
		Kind:   FrameResult,
		Result: &CommandResponse{Command: cmd, Result: r, Message: Describe(r)},
	})
	if err != nil {
		c.hub.logger.Error("Failed to serialize command result", "error", err)
		return
	}
	c.hub.mu.Lock()
	defer c.hub.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- payload:
		metrics.Get().RecordWSMessage(false)
	default:
		metrics.Get().RecordWSError()
	}
}

// close shuts the send channel once. Callers hold hub.mu.
func (c *Client) close() {
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// WritePump pumps messages from the hub to the websocket connection.
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
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// One frame per message so clients can decode each as JSON.
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
