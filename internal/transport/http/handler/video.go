package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"viewtube/internal/app"
	"viewtube/internal/transport/http/response"
)

type VideoHandler struct {
	videoService *app.VideoService
}

func NewVideoHandler(videoService *app.VideoService) *VideoHandler {
	return &VideoHandler{videoService: videoService}
}

func (h *VideoHandler) Publish(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "not authorized")
		return
	}

	input := app.PublishVideoInput{
		OwnerID:     user.ID,
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
	}
	if raw := c.PostForm("duration"); raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil {
			input.DurationSeconds = parsed
		}
	}

	videoFile, err := c.FormFile("videoFile")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "video file is required")
		return
	}
	videoPath, videoCleanup, err := saveTempFile(c, videoFile)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "store uploaded video failed")
		return
	}
	defer videoCleanup()
	input.VideoPath = videoPath

	thumbnail, err := c.FormFile("thumbnail")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "thumbnail is required")
		return
	}
	thumbnailPath, thumbnailCleanup, err := saveTempFile(c, thumbnail)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "store uploaded thumbnail failed")
		return
	}
	defer thumbnailCleanup()
	input.ThumbnailPath = thumbnailPath

	video, err := h.videoService.Publish(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err, "publish video failed")
		return
	}

	response.OK(c, http.StatusCreated, "video published successfully", video)
}

func (h *VideoHandler) Get(c *gin.Context) {
	videoID64, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || videoID64 == 0 {
		response.Error(c, http.StatusBadRequest, "invalid video id")
		return
	}

	var viewerID uint
	if user, ok := currentUser(c); ok {
		viewerID = user.ID
	}

	video, err := h.videoService.Get(c.Request.Context(), uint(videoID64), viewerID)
	if err != nil {
		respondServiceError(c, err, "fetch video failed")
		return
	}

	response.OK(c, http.StatusOK, "video fetched", video)
}
