package model

import "time"

// WatchEvent records one playback of a video by a user. The per-user
// watch history is the sequence of these rows, newest first. The same
// struct is the payload carried on the view-event queue.
type WatchEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	VideoID   uint      `gorm:"not null;index" json:"video_id"`
	WatchedAt time.Time `gorm:"not null;index" json:"watched_at"`
	CreatedAt time.Time `json:"created_at"`
}

// VideoOwner is the reduced owner projection attached to each watch
// history entry.
type VideoOwner struct {
	FullName  string `json:"full_name"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

type WatchHistoryItem struct {
	Video     Video      `json:"video"`
	Owner     VideoOwner `json:"owner"`
	WatchedAt time.Time  `json:"watched_at"`
}
