package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const defaultWriteWait = 5 * time.Second

// Offer is what a connected driver app receives over the pool socket.
type Offer struct {
	Type        string            `json:"type"`
	BookingID   string            `json:"booking_id"`
	VehicleType string            `json:"vehicle_type"`
	Title       string            `json:"title"`
	Body        string            `json:"body"`
	Data        map[string]string `json:"data,omitempty"`
}

type poolClient struct {
	driverID string
	conn     *websocket.Conn
	writeMu  sync.Mutex
}

func (c *poolClient) write(deadline time.Time, v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(deadline)
	return c.conn.WriteJSON(v)
}

// PoolHub keeps one live socket per device token and pushes offers to the
// tokens a notification names.
type PoolHub struct {
	mu      sync.RWMutex
	clients map[string]*poolClient
}

func NewPoolHub() *PoolHub {
	return &PoolHub{clients: make(map[string]*poolClient)}
}

// Listen registers conn under token and blocks until the client goes away.
// A newer socket for the same token replaces the old one.
func (h *PoolHub) Listen(token, driverID string, conn *websocket.Conn) {
	client := &poolClient{driverID: driverID, conn: conn}

	h.mu.Lock()
	if old, ok := h.clients[token]; ok {
		_ = old.conn.Close()
	}
	h.clients[token] = client
	h.mu.Unlock()

	logrus.WithFields(logrus.Fields{"driver_id": driverID, "connections": h.Connected()}).Info("Pool client connected")

	defer func() {
		h.remove(token, client)
		_ = conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logrus.WithField("driver_id", driverID).WithError(err).Debug("Pool client read failed")
			}
			return
		}
	}
}

func (h *PoolHub) remove(token string, client *poolClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[token] == client {
		delete(h.clients, token)
	}
}

func (h *PoolHub) Connected() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Send writes the offer to every named token with a live socket. Tokens
// without one are skipped; they still get the push from the other sinks.
func (h *PoolHub) Send(ctx context.Context, n Notification) error {
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(defaultWriteWait)
	}
	offer := Offer{
		Type:        "booking_offer",
		BookingID:   n.BookingID,
		VehicleType: n.VehicleType,
		Title:       n.Title,
		Body:        n.Body,
		Data:        n.Data,
	}

	h.mu.RLock()
	targets := make(map[string]*poolClient, len(n.Tokens))
	for _, token := range n.Tokens {
		if c, ok := h.clients[token]; ok {
			targets[token] = c
		}
	}
	h.mu.RUnlock()

	var errs []error
	for token, c := range targets {
		if err := c.write(deadline, offer); err != nil {
			errs = append(errs, fmt.Errorf("driver %s: %w", c.driverID, err))
			h.remove(token, c)
			_ = c.conn.Close()
		}
	}
	return errors.Join(errs...)
}
