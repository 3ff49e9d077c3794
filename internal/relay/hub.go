package relay

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Hub is the registry of live connections, grouped into one room per user.
type Hub struct {
	mu        sync.RWMutex
	rooms     map[string]map[*Client]struct{}
	backplane Backplane
}

// NewHub creates a hub. backplane may be nil for a single instance deployment.
func NewHub(backplane Backplane) *Hub {
	return &Hub{
		rooms:     make(map[string]map[*Client]struct{}),
		backplane: backplane,
	}
}

// Start consumes the backplane until ctx is done. It is a no-op without one.
func (h *Hub) Start(ctx context.Context) error {
	if h.backplane == nil {
		return nil
	}
	deliveries, err := h.backplane.Subscribe(ctx)
	if err != nil {
		return err
	}
	go func() {
		for d := range deliveries {
			h.deliverLocal(d)
		}
	}()
	return nil
}

func (h *Hub) join(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[c.userID]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[c.userID] = room
	}
	room[c] = struct{}{}
}

func (h *Hub) leave(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[c.userID]
	if !ok {
		return
	}
	delete(room, c)
	if len(room) == 0 {
		delete(h.rooms, c.userID)
	}
}

// Connections reports how many joined connections userID has on this instance.
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[userID])
}

// Route delivers d to the receiver's room, through the backplane when one is
// configured. Failures are logged and never reported to the sender.
func (h *Hub) Route(ctx context.Context, d Delivery) {
	if h.backplane != nil {
		if err := h.backplane.Publish(ctx, d); err != nil {
			logrus.WithError(err).WithField("to", d.To).Warn("Relay publish failed, delivering locally")
			h.deliverLocal(d)
		}
		return
	}
	h.deliverLocal(d)
}

func (h *Hub) deliverLocal(d Delivery) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[d.To] {
		if c.id == d.Origin {
			continue
		}
		c.enqueue(d.Frame)
	}
}
