package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	e "silant-backend/internal/errors"
	"silant-backend/internal/model"
)

// GetSubscription returns a subscription owned by userID.
func (s *gormStore) GetSubscription(ctx context.Context, userID int64, endpoint string) (model.PushSubscription, error) {
	var sub model.PushSubscription
	err := s.db.WithContext(ctx).
		Where("endpoint = ? AND user_id = ?", endpoint, userID).
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.PushSubscription{}, fmt.Errorf("subscription: %w", e.ErrNotFound)
	}
	if err != nil {
		return model.PushSubscription{}, fmt.Errorf("failed to load subscription: %w", err)
	}
	return sub, nil
}

// PutSubscription creates a subscription or replaces its keys. An endpoint
// registered by another user is left untouched and reported as taken.
func (s *gormStore) PutSubscription(ctx context.Context, sub *model.PushSubscription) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.PushSubscription
		err := tx.Where("endpoint = ?", sub.Endpoint).First(&existing).Error
		switch {
		case err == nil && existing.UserID != sub.UserID:
			return fmt.Errorf("subscription: %w", e.ErrSubscriptionTaken)
		case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("failed to load subscription: %w", err)
		}

		err = tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
		}).Create(sub).Error
		if err != nil {
			return fmt.Errorf("failed to save subscription: %w", err)
		}
		return nil
	})
}

// DeleteSubscription removes a subscription owned by userID.
func (s *gormStore) DeleteSubscription(ctx context.Context, userID int64, endpoint string) error {
	err := s.db.WithContext(ctx).
		Where("endpoint = ? AND user_id = ?", endpoint, userID).
		Delete(&model.PushSubscription{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	return nil
}
