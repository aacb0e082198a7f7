// Package testsupport holds in-memory fakes shared by service and
// handler tests.
package testsupport

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"viewtube/internal/model"
	"viewtube/internal/repository"
)

// MemUserStore is an in-memory app.UserStore with the same uniqueness
// behavior as the real table.
type MemUserStore struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*model.User
}

func NewMemUserStore() *MemUserStore {
	return &MemUserStore{users: map[uint]*model.User{}}
}

func (s *MemUserStore) Create(user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return fmt.Errorf("create user: %w", repository.ErrDuplicateKey)
		}
	}
	s.nextID++
	user.ID = s.nextID
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func (s *MemUserStore) GetByID(id uint) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	clone := *user
	return &clone, nil
}

func (s *MemUserStore) GetByIDs(ids []uint) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.User
	for _, id := range ids {
		if user, ok := s.users[id]; ok {
			out = append(out, *user)
		}
	}
	return out, nil
}

func (s *MemUserStore) GetByUsername(username string) (*model.User, error) {
	return s.GetByUsernameOrEmail(username, "")
}

func (s *MemUserStore) GetByUsernameOrEmail(username, email string) (*model.User, error) {
	if username == "" && email == "" {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]uint, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		user := s.users[id]
		if (username != "" && user.Username == username) || (email != "" && user.Email == email) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, nil
}

func (s *MemUserStore) SetRefreshToken(id uint, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return fmt.Errorf("set refresh token: user %d not found", id)
	}
	user.RefreshToken = token
	return nil
}

func (s *MemUserStore) ClearRefreshToken(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[id]; ok {
		user.RefreshToken = ""
	}
	return nil
}

func (s *MemUserStore) RotateRefreshToken(id uint, oldToken, newToken string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok || user.RefreshToken != oldToken {
		return false, nil
	}
	user.RefreshToken = newToken
	return true, nil
}

func (s *MemUserStore) UpdatePasswordHash(id uint, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[id]; ok {
		user.PasswordHash = hash
	}
	return nil
}

func (s *MemUserStore) UpdateProfile(id uint, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil
	}
	if email, found := fields["email"].(string); found {
		for otherID, other := range s.users {
			if otherID != id && other.Email == email {
				return fmt.Errorf("update profile: %w", repository.ErrDuplicateKey)
			}
		}
		user.Email = email
	}
	if fullName, found := fields["full_name"].(string); found {
		user.FullName = fullName
	}
	return nil
}

func (s *MemUserStore) UpdateAvatar(id uint, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[id]; ok {
		user.AvatarURL = url
	}
	return nil
}

func (s *MemUserStore) UpdateCoverImage(id uint, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[id]; ok {
		user.CoverImageURL = url
	}
	return nil
}

type MemVideoStore struct {
	mu     sync.Mutex
	nextID uint
	videos map[uint]*model.Video
}

func NewMemVideoStore() *MemVideoStore {
	return &MemVideoStore{videos: map[uint]*model.Video{}}
}

func (s *MemVideoStore) Create(video *model.Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	video.ID = s.nextID
	clone := *video
	s.videos[video.ID] = &clone
	return nil
}

func (s *MemVideoStore) GetByID(id uint) (*model.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[id]
	if !ok {
		return nil, nil
	}
	clone := *video
	return &clone, nil
}

func (s *MemVideoStore) GetByIDs(ids []uint) ([]model.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Video
	for _, id := range ids {
		if video, ok := s.videos[id]; ok {
			out = append(out, *video)
		}
	}
	return out, nil
}

func (s *MemVideoStore) IncrementViews(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if video, ok := s.videos[id]; ok {
		video.ViewCount++
	}
	return nil
}

type MemSubscriptionStore struct {
	mu   sync.Mutex
	subs []model.Subscription
}

func NewMemSubscriptionStore() *MemSubscriptionStore {
	return &MemSubscriptionStore{}
}

func (s *MemSubscriptionStore) Add(subscriberID, channelID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, model.Subscription{SubscriberID: subscriberID, ChannelID: channelID})
}

func (s *MemSubscriptionStore) Create(sub *model.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub.ID = uint(len(s.subs) + 1)
	s.subs = append(s.subs, *sub)
	return nil
}

func (s *MemSubscriptionStore) Delete(subscriberID, channelID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.subs[:0]
	for _, sub := range s.subs {
		if sub.SubscriberID == subscriberID && sub.ChannelID == channelID {
			continue
		}
		kept = append(kept, sub)
	}
	s.subs = kept
	return nil
}

func (s *MemSubscriptionStore) CountSubscribers(channelID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, sub := range s.subs {
		if sub.ChannelID == channelID {
			count++
		}
	}
	return count, nil
}

func (s *MemSubscriptionStore) CountSubscriptions(subscriberID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, sub := range s.subs {
		if sub.SubscriberID == subscriberID {
			count++
		}
	}
	return count, nil
}

func (s *MemSubscriptionStore) IsSubscribed(subscriberID, channelID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subs {
		if sub.SubscriberID == subscriberID && sub.ChannelID == channelID {
			return true, nil
		}
	}
	return false, nil
}

type MemWatchEventStore struct {
	mu     sync.Mutex
	events []model.WatchEvent
}

func NewMemWatchEventStore() *MemWatchEventStore {
	return &MemWatchEventStore{}
}

func (s *MemWatchEventStore) Create(event *model.WatchEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	event.ID = uint(len(s.events) + 1)
	s.events = append(s.events, *event)
	return nil
}

func (s *MemWatchEventStore) ListByUserID(userID uint, limit int) ([]model.WatchEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.WatchEvent
	for _, ev := range s.events {
		if ev.UserID == userID {
			out = append(out, ev)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].WatchedAt.After(out[j].WatchedAt) })
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// StubUploader returns a deterministic hosted URL per upload, or a
// fixed error.
type StubUploader struct {
	mu      sync.Mutex
	BaseURL string
	Err     error
	Uploads []string
}

func (u *StubUploader) Upload(_ context.Context, localPath string) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.Err != nil {
		return "", u.Err
	}
	u.Uploads = append(u.Uploads, localPath)
	base := u.BaseURL
	if base == "" {
		base = "https://media.example.com"
	}
	return fmt.Sprintf("%s/upload-%d", base, len(u.Uploads)), nil
}

type StubPublisher struct {
	mu     sync.Mutex
	Err    error
	Events []model.WatchEvent
}

func (p *StubPublisher) Publish(_ context.Context, event model.WatchEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.Events = append(p.Events, event)
	return nil
}

// MemHistoryCache mirrors the redis cache contract without redis.
type MemHistoryCache struct {
	mu      sync.Mutex
	entries map[uint][]model.WatchHistoryItem
	dirty   map[uint]bool

	Hits   int
	Misses int
}

func NewMemHistoryCache() *MemHistoryCache {
	return &MemHistoryCache{
		entries: map[uint][]model.WatchHistoryItem{},
		dirty:   map[uint]bool{},
	}
}

func (c *MemHistoryCache) GetHistory(_ context.Context, userID uint) ([]model.WatchHistoryItem, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	items, ok := c.entries[userID]
	if !ok {
		c.Misses++
		return nil, false, nil
	}
	c.Hits++
	return items, true, nil
}

func (c *MemHistoryCache) SetHistory(_ context.Context, userID uint, items []model.WatchHistoryItem) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[userID] = items
	return nil
}

func (c *MemHistoryCache) DeleteHistory(_ context.Context, userID uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
	return nil
}

func (c *MemHistoryCache) MarkDirty(_ context.Context, userID uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dirty[userID] = true
	return nil
}

// ClearDirty stands in for the real marker's TTL expiry.
func (c *MemHistoryCache) ClearDirty(userID uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.dirty, userID)
}

func (c *MemHistoryCache) IsDirty(_ context.Context, userID uint) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty[userID], nil
}

var ErrUploadBroken = errors.New("object store rejected the upload")
