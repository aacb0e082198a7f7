package response

import "github.com/gin-gonic/gin"

// APIResponse is the envelope shared by every success and failure
// reply.
type APIResponse struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

func OK(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, APIResponse{
		Status:  status,
		Message: message,
		Data:    data,
	})
}

func Error(c *gin.Context, status int, message string) {
	c.JSON(status, APIResponse{
		Status:  status,
		Message: message,
	})
}

func ErrorWithDetails(c *gin.Context, status int, message string, errs interface{}) {
	c.JSON(status, APIResponse{
		Status:  status,
		Message: message,
		Errors:  errs,
	})
}
