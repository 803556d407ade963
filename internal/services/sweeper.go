package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"zing_pool/internal/models"
)

type SubscriptionStore interface {
	ExpireSubscriptions(ctx context.Context, batch int) ([]models.Subscription, error)
	WriteAudit(ctx context.Context, entries ...models.AuditLog) error
}

// Sweeper expires subscriptions past their end date. Runs may overlap; each
// row is reported by exactly one of them.
type Sweeper struct {
	store SubscriptionStore
	batch int
}

func NewSweeper(s SubscriptionStore, batch int) *Sweeper {
	if batch <= 0 {
		batch = 500
	}
	return &Sweeper{store: s, batch: batch}
}

// Sweep runs one batch and returns how many subscriptions it expired.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	expired, err := s.store.ExpireSubscriptions(ctx, s.batch)
	if err != nil {
		return 0, fmt.Errorf("expire subscriptions: %w", err)
	}
	if len(expired) == 0 {
		return 0, nil
	}

	entries := make([]models.AuditLog, 0, len(expired))
	for _, sub := range expired {
		entries = append(entries, models.NewAudit(nil, "expire_subscription", "subscriptions", sub.ID, map[string]any{
			"driver_id": sub.DriverID,
			"reason":    "cron_expiry",
		}))
	}
	if err := s.store.WriteAudit(ctx, entries...); err != nil {
		logrus.WithField("expired", len(expired)).WithError(err).Error("Failed to write expiry audit entries")
	}

	logrus.WithField("expired", len(expired)).Info("Subscriptions expired")
	return len(expired), nil
}

// Run sweeps on every tick until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logrus.WithField("interval", interval.String()).Info("Subscription sweeper started")
	for {
		select {
		case <-ctx.Done():
			logrus.Info("Subscription sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				logrus.WithError(err).Error("Subscription sweep failed")
			}
		}
	}
}
