package realtime

import (
	"context"
	"encoding/json"
	"time"

	ws "github.com/coder/websocket"
)

const (
	sendBufferSize = 32
	pingInterval   = 30 * time.Second
	maxMessageSize = 4096
)

// Client is one websocket connection of an authenticated user. rooms is
// guarded by the hub's lock.
type Client struct {
	hub    *Hub
	conn   *ws.Conn
	userID string
	send   chan []byte
	rooms  map[string]struct{}
}

func NewClient(hub *Hub, conn *ws.Conn, userID string) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, sendBufferSize),
		rooms:  make(map[string]struct{}),
	}
}

// Run blocks until the connection closes.
func (c *Client) Run(ctx context.Context) {
	c.hub.Register(c)
	defer c.hub.Unregister(c)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.conn.SetReadLimit(maxMessageSize)
	go c.writePump(ctx)
	c.readPump(ctx)
}

func (c *Client) readPump(ctx context.Context) {
	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			return
		}
		c.handle(ctx, data)
	}
}

// handle processes a join-list or leave-list request and answers on the
// client's own channel.
func (c *Client) handle(ctx context.Context, data []byte) {
	var in Message
	if err := json.Unmarshal(data, &in); err != nil {
		c.reply(Message{Type: TypeError, Error: "malformed message"})
		return
	}

	switch in.Type {
	case TypeJoinList:
		if in.ListID == "" {
			c.reply(Message{Type: TypeError, Error: "listId is required"})
			return
		}
		if err := c.hub.Join(ctx, c, in.ListID); err != nil {
			c.hub.logger.Warn("realtime join denied", "error", err, "user_id", c.userID, "list_id", in.ListID)
			c.reply(Message{Type: TypeError, ListID: in.ListID, Error: err.Error()})
			return
		}
		c.reply(Message{Type: TypeJoined, ListID: in.ListID})
	case TypeLeaveList:
		c.hub.Leave(c, in.ListID)
		c.reply(Message{Type: TypeLeft, ListID: in.ListID})
	default:
		c.reply(Message{Type: TypeError, Error: "unknown message type"})
	}
}

func (c *Client) reply(msg Message) {
	data, ok := c.hub.marshal(msg)
	if !ok {
		return
	}
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if _, registered := c.hub.clients[c]; !registered {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.Write(ctx, ws.MessageText, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
