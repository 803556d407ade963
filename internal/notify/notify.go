// Package notify delivers booking offers to driver devices. Sinks are fire
// and forget: the fan-out logs their failures and moves on.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Notification is one booking offer addressed to a deduplicated token list.
type Notification struct {
	BookingID   string            `json:"booking_id"`
	VehicleType string            `json:"vehicle_type"`
	Title       string            `json:"title"`
	Body        string            `json:"body"`
	Tokens      []string          `json:"tokens"`
	Data        map[string]string `json:"data,omitempty"`
}

type Sink interface {
	Send(ctx context.Context, n Notification) error
}

// LogSink only records what would have been pushed.
type LogSink struct{}

func (LogSink) Send(_ context.Context, n Notification) error {
	logrus.WithFields(logrus.Fields{
		"booking_id":   n.BookingID,
		"vehicle_type": n.VehicleType,
		"devices":      len(n.Tokens),
	}).Info("Sending booking notification")
	return nil
}

type named struct {
	name string
	Sink
}

// Multi sends to every sink and joins their errors.
type Multi struct {
	sinks []named
}

func NewMulti() *Multi { return &Multi{} }

func (m *Multi) Add(name string, s Sink) *Multi {
	m.sinks = append(m.sinks, named{name: name, Sink: s})
	return m
}

func (m *Multi) Len() int { return len(m.sinks) }

func (m *Multi) Send(ctx context.Context, n Notification) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Send(ctx, n); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
		}
	}
	return errors.Join(errs...)
}
