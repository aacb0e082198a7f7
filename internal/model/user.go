package model

import "time"

// User is both the stored account record and the response shape; the
// password hash and refresh token never serialize.
type User struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Username      string    `gorm:"size:64;not null;uniqueIndex" json:"username"`
	Email         string    `gorm:"size:128;not null;uniqueIndex" json:"email"`
	FullName      string    `gorm:"size:128;not null" json:"full_name"`
	PasswordHash  string    `gorm:"size:255;not null" json:"-"`
	AvatarURL     string    `gorm:"size:512;not null" json:"avatar_url"`
	CoverImageURL string    `gorm:"size:512" json:"cover_image_url,omitempty"`
	RefreshToken  string    `gorm:"size:512" json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
