package relay

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBuffer     = 32
)

// Client is one websocket connection of an authenticated user.
type Client struct {
	id     string
	userID string
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	joined bool
}

func NewClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	return &Client{
		id:     uuid.NewString(),
		userID: userID,
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
	}
}

// Serve runs the connection until the peer goes away.
func (c *Client) Serve(ctx context.Context) {
	go c.writePump()
	c.readPump(ctx)
}

// enqueue never blocks; a slow connection loses frames.
func (c *Client) enqueue(frame []byte) {
	select {
	case c.send <- frame:
	default:
		logrus.WithFields(logrus.Fields{
			"userID": c.userID,
			"connID": c.id,
		}).Warn("Relay send buffer full, dropping frame")
	}
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.leave(c)
		close(c.send)
		c.conn.Close()
		logrus.WithFields(logrus.Fields{"userID": c.userID, "connID": c.id}).Info("Relay connection closed")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logrus.WithError(err).WithField("userID", c.userID).Warn("Relay read error")
			}
			return
		}

		var frame Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			c.replyError("malformed frame")
			continue
		}
		c.handle(ctx, frame)
	}
}

func (c *Client) handle(ctx context.Context, frame Frame) {
	switch frame.Event {
	case EventJoin:
		target := joinTarget(frame.Data)
		if target != c.userID {
			logrus.WithFields(logrus.Fields{
				"userID": c.userID,
				"target": target,
			}).Warn("Rejected relay join for another user")
			c.replyError("cannot join another user's room")
			return
		}
		if !c.joined {
			c.hub.join(c)
			c.joined = true
		}
		c.reply(EventJoined, map[string]string{"userId": c.userID})

	case EventPrivateMessage, EventTyping:
		var data map[string]interface{}
		if err := json.Unmarshal(frame.Data, &data); err != nil || data == nil {
			c.replyError("invalid payload")
			return
		}
		receiver, _ := data["receiverId"].(string)
		if receiver == "" {
			c.replyError("receiverId is required")
			return
		}
		data["senderId"] = c.userID

		out, err := encodeFrame(routed[frame.Event], data)
		if err != nil {
			c.replyError("invalid payload")
			return
		}
		c.hub.Route(ctx, Delivery{To: receiver, Origin: c.id, Frame: out})

	default:
		c.replyError("unknown event " + frame.Event)
	}
}

func (c *Client) reply(event string, data interface{}) {
	out, err := encodeFrame(event, data)
	if err != nil {
		return
	}
	c.enqueue(out)
}

func (c *Client) replyError(message string) {
	c.reply(EventError, map[string]string{"message": message})
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
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
