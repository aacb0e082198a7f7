package repository

import (
	"fmt"

	"gorm.io/gorm"

	"viewtube/internal/model"
)

type WatchEventRepository struct {
	db *gorm.DB
}

func NewWatchEventRepository(db *gorm.DB) *WatchEventRepository {
	return &WatchEventRepository{db: db}
}

func (r *WatchEventRepository) Create(event *model.WatchEvent) error {
	if err := r.db.Create(event).Error; err != nil {
		return fmt.Errorf("create watch event failed: %w", err)
	}
	return nil
}

func (r *WatchEventRepository) ListByUserID(userID uint, limit int) ([]model.WatchEvent, error) {
	limit = clampHistoryLimit(limit)

	var events []model.WatchEvent
	if err := r.db.Where("user_id = ?", userID).Order("watched_at DESC").Limit(limit).Find(&events).Error; err != nil {
		return nil, fmt.Errorf("list watch events failed: %w", err)
	}
	return events, nil
}

// clampHistoryLimit defaults unset limits and caps oversized ones
// without discarding an in-range request.
func clampHistoryLimit(limit int) int {
	switch {
	case limit <= 0:
		return 100
	case limit > 200:
		return 200
	default:
		return limit
	}
}
