package store

import (
	"context"

	"gorm.io/gorm"

	"zing_pool/internal/models"
)

// ExpireSubscriptions marks up to batch active subscriptions past their end
// date as expired and returns only the rows this call changed. Concurrent
// runs never report the same row twice.
func (s *ServiceStore) ExpireSubscriptions(ctx context.Context, batch int) ([]models.Subscription, error) {
	var expired []models.Subscription
	now := s.now()

	err := s.exec.Run(ctx, "expire_subscriptions", func(tx *gorm.DB) error {
		var candidates []models.Subscription
		err := tx.Where("status = ? AND end_date < ?", models.SubscriptionActive, now).
			Order("end_date").
			Limit(batch).
			Find(&candidates).Error
		if err != nil {
			return err
		}

		for _, sub := range candidates {
			res := tx.Model(&models.Subscription{}).
				Where("id = ? AND status = ?", sub.ID, models.SubscriptionActive).
				Update("status", models.SubscriptionExpired)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 1 {
				sub.Status = models.SubscriptionExpired
				expired = append(expired, sub)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return expired, nil
}
