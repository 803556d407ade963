package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"zing_pool/internal/models"
	"zing_pool/internal/notify"
	"zing_pool/internal/store"
)

// NotificationStore is the slice of the service-scoped store the fan-out needs.
type NotificationStore interface {
	TryClaimNotification(ctx context.Context, bookingID string) (bool, error)
	EligibleDrivers(ctx context.Context, vehicleType string, limit int) ([]store.EligibleDriver, error)
	WriteAudit(ctx context.Context, entries ...models.AuditLog) error
}

// BookingEvent is the body of a row-change webhook on bookings.
type BookingEvent struct {
	Type      string          `json:"type"`
	Table     string          `json:"table"`
	Record    *models.Booking `json:"record"`
	OldRecord *models.Booking `json:"old_record"`
}

type Outcome int

const (
	OutcomeSkipped Outcome = iota
	OutcomeAlreadySent
	OutcomeDuplicate
	OutcomeSent
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "No action needed"
	case OutcomeAlreadySent:
		return "Already notified"
	case OutcomeDuplicate:
		return "Duplicate prevented"
	default:
		return "sent"
	}
}

type FanoutResult struct {
	Outcome         Outcome
	NotifiedDrivers int
	Devices         int
}

// Fanout notifies eligible drivers about a new open booking, at most once
// per booking.
type Fanout struct {
	store       NotificationStore
	sink        notify.Sink
	limit       int
	sinkTimeout time.Duration
}

func NewFanout(s NotificationStore, sink notify.Sink, limit int, sinkTimeout time.Duration) *Fanout {
	if limit <= 0 {
		limit = 20
	}
	if sinkTimeout <= 0 {
		sinkTimeout = 3 * time.Second
	}
	return &Fanout{store: s, sink: sink, limit: limit, sinkTimeout: sinkTimeout}
}

func (f *Fanout) Handle(ctx context.Context, booking *models.Booking) (FanoutResult, error) {
	if booking == nil || booking.Status != models.BookingOpen {
		return FanoutResult{Outcome: OutcomeSkipped}, nil
	}
	if booking.NotificationSent {
		return FanoutResult{Outcome: OutcomeAlreadySent}, nil
	}

	log := logrus.WithFields(logrus.Fields{
		"booking_id":   booking.ID,
		"vehicle_type": booking.VehicleTypeRequired,
	})

	claimed, err := f.store.TryClaimNotification(ctx, booking.ID)
	if err != nil {
		return FanoutResult{}, fmt.Errorf("claim notification: %w", err)
	}
	if !claimed {
		log.Info("Notification already claimed by another delivery")
		return FanoutResult{Outcome: OutcomeDuplicate}, nil
	}

	drivers, err := f.store.EligibleDrivers(ctx, booking.VehicleTypeRequired, f.limit)
	if err != nil {
		return FanoutResult{}, fmt.Errorf("eligible drivers: %w", err)
	}

	tokens := UniqueTokens(drivers)
	result := FanoutResult{Outcome: OutcomeSent, NotifiedDrivers: len(drivers), Devices: len(tokens)}

	if len(tokens) == 0 {
		log.Info("No eligible drivers found for notification")
	} else {
		sinkCtx, cancel := context.WithTimeout(ctx, f.sinkTimeout)
		err := f.sink.Send(sinkCtx, offerFor(booking, tokens))
		cancel()
		if err != nil {
			log.WithError(err).Warn("Notification sink failed")
		} else {
			log.WithFields(logrus.Fields{"drivers": result.NotifiedDrivers, "devices": result.Devices}).Info("Booking notification sent")
		}
	}

	entry := models.NewAudit(nil, "send_booking_notification", "bookings", booking.ID, map[string]any{
		"notified_driver_count": result.NotifiedDrivers,
		"device_count":          result.Devices,
		"vehicle_type":          booking.VehicleTypeRequired,
	})
	if err := f.store.WriteAudit(ctx, entry); err != nil {
		log.WithError(err).Error("Failed to write notification audit entry")
	}
	return result, nil
}

// UniqueTokens flattens the drivers' tokens, keeping the first occurrence.
func UniqueTokens(drivers []store.EligibleDriver) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, d := range drivers {
		for _, t := range d.Tokens {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

func offerFor(b *models.Booking, tokens []string) notify.Notification {
	return notify.Notification{
		BookingID:   b.ID,
		VehicleType: b.VehicleTypeRequired,
		Title:       "New booking available",
		Body:        fmt.Sprintf("%s to %s", b.PickupAddress, b.DropAddress),
		Tokens:      tokens,
		Data: map[string]string{
			"booking_id":     b.ID,
			"seats_required": strconv.Itoa(b.SeatsRequired),
			"fare_estimate":  strconv.FormatFloat(b.FareEstimate, 'f', 2, 64),
		},
	}
}
