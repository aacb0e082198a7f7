package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"viewtube/internal/model"
)

type ViewEventPublisher interface {
	Publish(ctx context.Context, event model.WatchEvent) error
}

type VideoService struct {
	videos       VideoStore
	uploader     MediaUploader
	publisher    ViewEventPublisher
	historyCache WatchHistoryCache
}

type PublishVideoInput struct {
	OwnerID         uint
	Title           string
	Description     string
	DurationSeconds float64
	VideoPath       string
	ThumbnailPath   string
}

func NewVideoService(
	videos VideoStore,
	uploader MediaUploader,
	publisher ViewEventPublisher,
	historyCache WatchHistoryCache,
) *VideoService {
	return &VideoService{
		videos:       videos,
		uploader:     uploader,
		publisher:    publisher,
		historyCache: historyCache,
	}
}

func (s *VideoService) Publish(ctx context.Context, input PublishVideoInput) (*model.Video, error) {
	title := strings.TrimSpace(input.Title)
	if input.OwnerID == 0 || title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if input.VideoPath == "" || input.ThumbnailPath == "" {
		return nil, fmt.Errorf("%w: video file and thumbnail are required", ErrInvalidInput)
	}

	videoURL, err := s.uploader.Upload(ctx, input.VideoPath)
	if err != nil {
		return nil, fmt.Errorf("%w: video: %v", ErrUploadFailed, err)
	}
	thumbnailURL, err := s.uploader.Upload(ctx, input.ThumbnailPath)
	if err != nil {
		return nil, fmt.Errorf("%w: thumbnail: %v", ErrUploadFailed, err)
	}

	video := &model.Video{
		OwnerID:         input.OwnerID,
		Title:           title,
		Description:     strings.TrimSpace(input.Description),
		VideoURL:        videoURL,
		ThumbnailURL:    thumbnailURL,
		DurationSeconds: input.DurationSeconds,
		IsPublished:     true,
	}
	if err := s.videos.Create(video); err != nil {
		return nil, err
	}
	return video, nil
}

// Get returns the video and, for authenticated viewers, enqueues a
// view event. The enqueue is fire-and-forget: a broker hiccup must not
// fail the read.
func (s *VideoService) Get(ctx context.Context, videoID, viewerID uint) (*model.Video, error) {
	if videoID == 0 {
		return nil, ErrInvalidInput
	}

	video, err := s.videos.GetByID(videoID)
	if err != nil {
		return nil, err
	}
	if video == nil {
		return nil, fmt.Errorf("%w: video does not exist", ErrNotFound)
	}

	if viewerID != 0 && s.publisher != nil {
		if s.historyCache != nil {
			_ = s.historyCache.MarkDirty(ctx, viewerID)
			_ = s.historyCache.DeleteHistory(ctx, viewerID)
		}
		event := model.WatchEvent{
			UserID:    viewerID,
			VideoID:   videoID,
			WatchedAt: time.Now(),
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			log.Printf("enqueue view event failed: %v", err)
		}
	}
	return video, nil
}
