package repository

import (
	"fmt"

	"gorm.io/gorm"

	"viewtube/internal/model"
)

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) Create(sub *model.Subscription) error {
	if err := r.db.Create(sub).Error; err != nil {
		return fmt.Errorf("create subscription failed: %w", err)
	}
	return nil
}

func (r *SubscriptionRepository) Delete(subscriberID, channelID uint) error {
	err := r.db.
		Where("subscriber_id = ? AND channel_id = ?", subscriberID, channelID).
		Delete(&model.Subscription{}).Error
	if err != nil {
		return fmt.Errorf("delete subscription failed: %w", err)
	}
	return nil
}

func (r *SubscriptionRepository) CountSubscribers(channelID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&model.Subscription{}).Where("channel_id = ?", channelID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count subscribers failed: %w", err)
	}
	return count, nil
}

func (r *SubscriptionRepository) CountSubscriptions(subscriberID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&model.Subscription{}).Where("subscriber_id = ?", subscriberID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count subscriptions failed: %w", err)
	}
	return count, nil
}

func (r *SubscriptionRepository) IsSubscribed(subscriberID, channelID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.Subscription{}).
		Where("subscriber_id = ? AND channel_id = ?", subscriberID, channelID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check subscription failed: %w", err)
	}
	return count > 0, nil
}
