package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"viewtube/internal/app"
	"viewtube/internal/transport/http/response"
)

type ChannelHandler struct {
	channelService *app.ChannelService
}

func NewChannelHandler(channelService *app.ChannelService) *ChannelHandler {
	return &ChannelHandler{channelService: channelService}
}

func (h *ChannelHandler) Profile(c *gin.Context) {
	var viewerID uint
	if user, ok := currentUser(c); ok {
		viewerID = user.ID
	}

	profile, err := h.channelService.Profile(c.Param("username"), viewerID)
	if err != nil {
		respondServiceError(c, err, "fetch channel profile failed")
		return
	}

	response.OK(c, http.StatusOK, "channel profile fetched", profile)
}

func (h *ChannelHandler) ToggleSubscription(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "not authorized")
		return
	}

	subscribed, err := h.channelService.ToggleSubscription(user.ID, c.Param("username"))
	if err != nil {
		respondServiceError(c, err, "toggle subscription failed")
		return
	}

	message := "unsubscribed successfully"
	if subscribed {
		message = "subscribed successfully"
	}
	response.OK(c, http.StatusOK, message, gin.H{"subscribed": subscribed})
}

func (h *ChannelHandler) WatchHistory(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "not authorized")
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	items, err := h.channelService.WatchHistory(c.Request.Context(), user.ID, limit)
	if err != nil {
		respondServiceError(c, err, "fetch watch history failed")
		return
	}

	response.OK(c, http.StatusOK, "watch history fetched", items)
}
