package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"viewtube/internal/app"
	"viewtube/internal/transport/http/response"
)

type AccountHandler struct {
	accountService *app.AccountService
}

type UpdateAccountRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

func NewAccountHandler(accountService *app.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

func (h *AccountHandler) CurrentUser(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "not authorized")
		return
	}
	response.OK(c, http.StatusOK, "current user fetched", user)
}

func (h *AccountHandler) UpdateAccount(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "not authorized")
		return
	}

	var req UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	updated, err := h.accountService.UpdateProfile(app.UpdateProfileInput{
		UserID:   user.ID,
		FullName: req.FullName,
		Email:    req.Email,
	})
	if err != nil {
		respondServiceError(c, err, "update account failed")
		return
	}

	response.OK(c, http.StatusOK, "account updated successfully", updated)
}

func (h *AccountHandler) UpdateAvatar(c *gin.Context) {
	h.updateImage(c, "avatar", func(c *gin.Context, userID uint, path string) (interface{}, error) {
		return h.accountService.UpdateAvatar(c.Request.Context(), userID, path)
	})
}

func (h *AccountHandler) UpdateCoverImage(c *gin.Context) {
	h.updateImage(c, "coverImage", func(c *gin.Context, userID uint, path string) (interface{}, error) {
		return h.accountService.UpdateCoverImage(c.Request.Context(), userID, path)
	})
}

func (h *AccountHandler) updateImage(
	c *gin.Context,
	field string,
	update func(c *gin.Context, userID uint, path string) (interface{}, error),
) {
	user, ok := currentUser(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "not authorized")
		return
	}

	file, err := c.FormFile(field)
	if err != nil {
		response.Error(c, http.StatusBadRequest, field+" file is required")
		return
	}
	path, cleanup, err := saveTempFile(c, file)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "store uploaded file failed")
		return
	}
	defer cleanup()

	updated, err := update(c, user.ID, path)
	if err != nil {
		respondServiceError(c, err, "update "+field+" failed")
		return
	}

	response.OK(c, http.StatusOK, field+" updated successfully", updated)
}
