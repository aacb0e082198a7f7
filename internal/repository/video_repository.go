package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"viewtube/internal/model"
)

type VideoRepository struct {
	db *gorm.DB
}

func NewVideoRepository(db *gorm.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

func (r *VideoRepository) Create(video *model.Video) error {
	if err := r.db.Create(video).Error; err != nil {
		return fmt.Errorf("create video failed: %w", err)
	}
	return nil
}

func (r *VideoRepository) GetByID(id uint) (*model.Video, error) {
	var video model.Video
	if err := r.db.First(&video, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query video by id failed: %w", err)
	}
	return &video, nil
}

func (r *VideoRepository) GetByIDs(ids []uint) ([]model.Video, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var videos []model.Video
	if err := r.db.Where("id IN ?", ids).Find(&videos).Error; err != nil {
		return nil, fmt.Errorf("query videos by ids failed: %w", err)
	}
	return videos, nil
}

func (r *VideoRepository) IncrementViews(id uint) error {
	tx := r.db.Model(&model.Video{}).
		Where("id = ?", id).
		Update("view_count", gorm.Expr("view_count + 1"))
	if tx.Error != nil {
		return fmt.Errorf("increment video views failed: %w", tx.Error)
	}
	return nil
}
