package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/frahmantamala/shopping-list/internal/list"
)

const (
	TypeJoinList     = "join-list"
	TypeLeaveList    = "leave-list"
	TypeJoined       = "joined"
	TypeLeft         = "left"
	TypeListUpdated  = "list-updated"
	TypeItemUpdated  = "item-updated"
	TypeNotification = "notification"
	TypeError        = "error"
)

// Message is the envelope for everything pushed to a client.
type Message struct {
	Type    string      `json:"type"`
	ListID  string      `json:"listId,omitempty"`
	ItemID  string      `json:"itemId,omitempty"`
	Action  string      `json:"action,omitempty"`
	ActorID string      `json:"actorId,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ListAccess is satisfied by *list.Service.
type ListAccess interface {
	LoadAuthorized(ctx context.Context, id, requesterID string, op list.Operation) (*list.List, error)
}

// Hub tracks connected clients by user and by joined list.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	users   map[string]map[*Client]struct{}
	rooms   map[string]map[*Client]struct{}
	access  ListAccess
	logger  *slog.Logger
}

func NewHub(access ListAccess, logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		users:   make(map[string]map[*Client]struct{}),
		rooms:   make(map[string]map[*Client]struct{}),
		access:  access,
		logger:  logger,
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c] = struct{}{}
	if h.users[c.userID] == nil {
		h.users[c.userID] = make(map[*Client]struct{})
	}
	h.users[c.userID][c] = struct{}{}
	h.logger.Debug("realtime client connected", "user_id", c.userID, "clients", len(h.clients))
}

// Unregister drops the client from every room and closes its send channel.
// Calling it twice is harmless.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	removeMember(h.users, c.userID, c)
	for listID := range c.rooms {
		removeMember(h.rooms, listID, c)
	}
	c.rooms = nil
	close(c.send)
	h.logger.Debug("realtime client disconnected", "user_id", c.userID, "clients", len(h.clients))
}

// Join subscribes c to listID after checking the user may view the list.
func (h *Hub) Join(ctx context.Context, c *Client, listID string) error {
	if _, err := h.access.LoadAuthorized(ctx, listID, c.userID, list.OpView); err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return nil
	}
	if h.rooms[listID] == nil {
		h.rooms[listID] = make(map[*Client]struct{})
	}
	h.rooms[listID][c] = struct{}{}
	c.rooms[listID] = struct{}{}
	return nil
}

func (h *Hub) Leave(c *Client, listID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	removeMember(h.rooms, listID, c)
	delete(c.rooms, listID)
}

// Evict drops the clients of listID whose user may no longer view it and
// tells them they left. Membership is read from l when given, otherwise it
// is re-checked through ListAccess.
func (h *Hub) Evict(ctx context.Context, listID string, l *list.List) int {
	h.mu.RLock()
	candidates := make([]*Client, 0, len(h.rooms[listID]))
	for c := range h.rooms[listID] {
		candidates = append(candidates, c)
	}
	h.mu.RUnlock()

	allowed := make(map[string]bool)
	var revoked []*Client
	for _, c := range candidates {
		ok, seen := allowed[c.userID]
		if !seen {
			if l != nil {
				ok = l.IsMember(c.userID)
			} else {
				_, err := h.access.LoadAuthorized(ctx, listID, c.userID, list.OpView)
				ok = err == nil
			}
			allowed[c.userID] = ok
		}
		if !ok {
			revoked = append(revoked, c)
		}
	}
	if len(revoked) == 0 {
		return 0
	}

	data, _ := h.marshal(Message{Type: TypeLeft, ListID: listID})
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range revoked {
		if _, ok := h.rooms[listID][c]; !ok {
			continue
		}
		removeMember(h.rooms, listID, c)
		delete(c.rooms, listID)
		if data != nil {
			h.deliver(map[*Client]struct{}{c: {}}, data)
		}
		h.logger.Debug("realtime client evicted from list room", "user_id", c.userID, "list_id", listID)
	}
	return len(revoked)
}

// CloseRoom unsubscribes everyone from listID, used once the list is gone.
func (h *Hub) CloseRoom(listID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.rooms[listID] {
		delete(c.rooms, listID)
	}
	delete(h.rooms, listID)
}

func (h *Hub) SendToUser(userID string, msg Message) {
	data, ok := h.marshal(msg)
	if !ok {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	h.deliver(h.users[userID], data)
}

func (h *Hub) BroadcastToList(listID string, msg Message) {
	data, ok := h.marshal(msg)
	if !ok {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	h.deliver(h.rooms[listID], data)
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) RoomSize(listID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[listID])
}

func (h *Hub) marshal(msg Message) ([]byte, bool) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal realtime message", "error", err, "type", msg.Type)
		return nil, false
	}
	return data, true
}

// deliver must be called with h.mu held.
func (h *Hub) deliver(targets map[*Client]struct{}, data []byte) {
	for c := range targets {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("realtime client buffer full, dropping message", "user_id", c.userID)
		}
	}
}

func removeMember(index map[string]map[*Client]struct{}, key string, c *Client) {
	members := index[key]
	if members == nil {
		return
	}
	delete(members, c)
	if len(members) == 0 {
		delete(index, key)
	}
}
