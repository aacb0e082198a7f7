package app

import (
	"context"
	"fmt"
	"strings"

	"viewtube/internal/model"
)

type SubscriptionStore interface {
	Create(sub *model.Subscription) error
	Delete(subscriberID, channelID uint) error
	CountSubscribers(channelID uint) (int64, error)
	CountSubscriptions(subscriberID uint) (int64, error)
	IsSubscribed(subscriberID, channelID uint) (bool, error)
}

type WatchEventStore interface {
	Create(event *model.WatchEvent) error
	ListByUserID(userID uint, limit int) ([]model.WatchEvent, error)
}

type VideoStore interface {
	Create(video *model.Video) error
	GetByID(id uint) (*model.Video, error)
	GetByIDs(ids []uint) ([]model.Video, error)
	IncrementViews(id uint) error
}

type WatchHistoryCache interface {
	GetHistory(ctx context.Context, userID uint) ([]model.WatchHistoryItem, bool, error)
	SetHistory(ctx context.Context, userID uint, items []model.WatchHistoryItem) error
	DeleteHistory(ctx context.Context, userID uint) error
	MarkDirty(ctx context.Context, userID uint) error
	IsDirty(ctx context.Context, userID uint) (bool, error)
}

type ChannelService struct {
	users         UserStore
	subscriptions SubscriptionStore
	videos        VideoStore
	watchEvents   WatchEventStore
	historyCache  WatchHistoryCache
}

// ChannelProfile is the aggregated public view of a user's channel.
type ChannelProfile struct {
	ID                        uint   `json:"id"`
	Username                  string `json:"username"`
	FullName                  string `json:"full_name"`
	Email                     string `json:"email"`
	AvatarURL                 string `json:"avatar_url"`
	CoverImageURL             string `json:"cover_image_url,omitempty"`
	SubscriberCount           int64  `json:"subscriber_count"`
	ChannelsSubscribedToCount int64  `json:"channels_subscribed_to_count"`
	IsSubscribed              bool   `json:"is_subscribed"`
}

func NewChannelService(
	users UserStore,
	subscriptions SubscriptionStore,
	videos VideoStore,
	watchEvents WatchEventStore,
	historyCache WatchHistoryCache,
) *ChannelService {
	return &ChannelService{
		users:         users,
		subscriptions: subscriptions,
		videos:        videos,
		watchEvents:   watchEvents,
		historyCache:  historyCache,
	}
}

// Profile aggregates the channel view for a username. viewerID may be
// zero for anonymous callers; IsSubscribed is then always false.
func (s *ChannelService) Profile(username string, viewerID uint) (*ChannelProfile, error) {
	username = strings.TrimSpace(strings.ToLower(username))
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}

	user, err := s.users.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: channel does not exist", ErrNotFound)
	}

	subscriberCount, err := s.subscriptions.CountSubscribers(user.ID)
	if err != nil {
		return nil, err
	}
	subscribedToCount, err := s.subscriptions.CountSubscriptions(user.ID)
	if err != nil {
		return nil, err
	}

	isSubscribed := false
	if viewerID != 0 {
		isSubscribed, err = s.subscriptions.IsSubscribed(viewerID, user.ID)
		if err != nil {
			return nil, err
		}
	}

	return &ChannelProfile{
		ID:                        user.ID,
		Username:                  user.Username,
		FullName:                  user.FullName,
		Email:                     user.Email,
		AvatarURL:                 user.AvatarURL,
		CoverImageURL:             user.CoverImageURL,
		SubscriberCount:           subscriberCount,
		ChannelsSubscribedToCount: subscribedToCount,
		IsSubscribed:              isSubscribed,
	}, nil
}

// ToggleSubscription flips the viewer's subscription to the named
// channel and reports the resulting state: true when now subscribed.
func (s *ChannelService) ToggleSubscription(viewerID uint, username string) (bool, error) {
	username = strings.TrimSpace(strings.ToLower(username))
	if viewerID == 0 || username == "" {
		return false, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}

	channel, err := s.users.GetByUsername(username)
	if err != nil {
		return false, err
	}
	if channel == nil {
		return false, fmt.Errorf("%w: channel does not exist", ErrNotFound)
	}
	if channel.ID == viewerID {
		return false, fmt.Errorf("%w: cannot subscribe to your own channel", ErrInvalidInput)
	}

	subscribed, err := s.subscriptions.IsSubscribed(viewerID, channel.ID)
	if err != nil {
		return false, err
	}
	if subscribed {
		if err := s.subscriptions.Delete(viewerID, channel.ID); err != nil {
			return false, err
		}
		return false, nil
	}
	if err := s.subscriptions.Create(&model.Subscription{SubscriberID: viewerID, ChannelID: channel.ID}); err != nil {
		return false, err
	}
	return true, nil
}

// WatchHistory resolves the user's ordered watch events into video
// records, each carrying a reduced owner projection.
func (s *ChannelService) WatchHistory(ctx context.Context, userID uint, limit int) ([]model.WatchHistoryItem, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}

	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user no longer exists", ErrNotFound)
	}

	if s.historyCache != nil {
		dirty, err := s.historyCache.IsDirty(ctx, userID)
		if err == nil && !dirty {
			if cached, hit, cacheErr := s.historyCache.GetHistory(ctx, userID); cacheErr == nil && hit {
				return trimHistory(cached, limit), nil
			}
		}
	}

	// Resolve the full recent window regardless of the requested limit.
	// The cache holds a single limit-agnostic snapshot per user, so a
	// limited request must never define what later callers see.
	events, err := s.watchEvents.ListByUserID(userID, 0)
	if err != nil {
		return nil, err
	}

	items, err := s.resolveHistory(events)
	if err != nil {
		return nil, err
	}

	if s.historyCache != nil {
		// A view event landing between resolve and set can still cache a
		// snapshot missing that event; the worker's DeleteHistory and the
		// entry TTL bound how long it survives.
		if dirty, dirtyErr := s.historyCache.IsDirty(ctx, userID); dirtyErr == nil && !dirty {
			_ = s.historyCache.SetHistory(ctx, userID, items)
		}
	}
	return trimHistory(items, limit), nil
}

func (s *ChannelService) resolveHistory(events []model.WatchEvent) ([]model.WatchHistoryItem, error) {
	if len(events) == 0 {
		return []model.WatchHistoryItem{}, nil
	}

	videoIDs := make([]uint, 0, len(events))
	seen := map[uint]bool{}
	for _, ev := range events {
		if !seen[ev.VideoID] {
			seen[ev.VideoID] = true
			videoIDs = append(videoIDs, ev.VideoID)
		}
	}

	videos, err := s.videos.GetByIDs(videoIDs)
	if err != nil {
		return nil, err
	}
	videosByID := make(map[uint]model.Video, len(videos))
	ownerIDs := make([]uint, 0, len(videos))
	for _, v := range videos {
		videosByID[v.ID] = v
		ownerIDs = append(ownerIDs, v.OwnerID)
	}

	owners, err := s.users.GetByIDs(ownerIDs)
	if err != nil {
		return nil, err
	}
	ownersByID := make(map[uint]model.User, len(owners))
	for _, o := range owners {
		// First matching owner only.
		if _, ok := ownersByID[o.ID]; !ok {
			ownersByID[o.ID] = o
		}
	}

	items := make([]model.WatchHistoryItem, 0, len(events))
	for _, ev := range events {
		video, ok := videosByID[ev.VideoID]
		if !ok {
			continue
		}
		owner := ownersByID[video.OwnerID]
		items = append(items, model.WatchHistoryItem{
			Video: video,
			Owner: model.VideoOwner{
				FullName:  owner.FullName,
				Username:  owner.Username,
				AvatarURL: owner.AvatarURL,
			},
			WatchedAt: ev.WatchedAt,
		})
	}
	return items, nil
}

func trimHistory(items []model.WatchHistoryItem, limit int) []model.WatchHistoryItem {
	if limit <= 0 || limit >= len(items) {
		return items
	}
	return items[:limit]
}
