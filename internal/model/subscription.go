package model

import "time"

// Subscription is a directed "subscriber follows channel" edge between
// two users. Duplicate edges are not constrained.
type Subscription struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SubscriberID uint      `gorm:"not null;index" json:"subscriber_id"`
	ChannelID    uint      `gorm:"not null;index" json:"channel_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
