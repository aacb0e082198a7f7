package model

import "time"

type Video struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	OwnerID         uint      `gorm:"not null;index" json:"owner_id"`
	Title           string    `gorm:"size:128;not null" json:"title"`
	Description     string    `gorm:"type:text" json:"description"`
	VideoURL        string    `gorm:"size:512;not null" json:"video_url"`
	ThumbnailURL    string    `gorm:"size:512;not null" json:"thumbnail_url"`
	DurationSeconds float64   `json:"duration_seconds"`
	ViewCount       uint64    `gorm:"not null;default:0" json:"view_count"`
	IsPublished     bool      `gorm:"not null;default:true" json:"is_published"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
