package ws

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

// client pumps one websocket connection to and from its session.
type client struct {
	conn    *websocket.Conn
	session *Session
	config  ServerConfig
	logger  *log.Logger
}

// readPump forwards client commands to the session. It stops the session
// when the connection closes.
func (c *client) readPump() {
	defer func() {
		c.session.Stop()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.config.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("read failed", "session", c.session.ID(), "error", err)
			}
			return
		}

		cmd, err := ParseCommand(data)
		if err != nil {
			if msg, encErr := encode(TypeError, err.Error()); encErr == nil {
				c.session.Outbox().Push(msg)
			}
			continue
		}
		c.session.Send(cmd)
	}
}

// writePump drains the session's outbox into the connection and keeps it
// alive with pings.
func (c *client) writePump() {
	ticker := time.NewTicker(c.config.pingPeriod())
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	outbox := c.session.Outbox()
	for {
		select {
		case msg := <-outbox.Messages():
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-outbox.Done():
			c.flush()
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// flush writes whatever is still queued.
func (c *client) flush() {
	for {
		select {
		case msg := <-c.session.Outbox().Messages():
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		default:
			return
		}
	}
}
