package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"viewtube/internal/app"
	"viewtube/internal/model"
	"viewtube/internal/transport/http/middleware"
	"viewtube/internal/transport/http/response"
)

func currentUser(c *gin.Context) (*model.User, bool) {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*model.User)
	return user, ok && user != nil
}

// respondServiceError is the single translation point from service
// errors to the failure envelope.
func respondServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, app.ErrInvalidInput), errors.Is(err, app.ErrUploadFailed):
		response.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrUnauthorized):
		response.Error(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, app.ErrNotFound):
		response.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, app.ErrConflict):
		response.Error(c, http.StatusConflict, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, fallback)
	}
}

// saveTempFile spills a multipart part to a temp path the uploader can
// read. The returned cleanup always removes the file.
func saveTempFile(c *gin.Context, file *multipart.FileHeader) (string, func(), error) {
	path := filepath.Join(os.TempDir(), uuid.New().String()+filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, path); err != nil {
		return "", nil, err
	}
	return path, func() { _ = os.Remove(path) }, nil
}
