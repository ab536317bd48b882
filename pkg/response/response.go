package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewOKResp returns a new OK response with the given data.
func NewOKResp(data any) Resp {
	return Resp{
		ErrorCode: 0,
		Message:   MessageSuccess,
		Data:      data,
	}
}

// OK sends 200 JSON with data.
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, NewOKResp(data))
}

// Error sends a 400 carrying err's message.
func Error(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, Resp{
		ErrorCode: ErrorCodeBadRequest,
		Message:   err.Error(),
	})
}

// Unauthorized sends 401 response.
func Unauthorized(c *gin.Context) {
	status(c, http.StatusUnauthorized, "Unauthorized")
}

// Forbidden sends 403 response.
func Forbidden(c *gin.Context) {
	status(c, http.StatusForbidden, "Forbidden")
}

// TooManyRequests sends 429 response.
func TooManyRequests(c *gin.Context) {
	status(c, http.StatusTooManyRequests, "Too many requests")
}

// ServiceUnavailable sends 503 with err's message, asking the sender to
// retry later.
func ServiceUnavailable(c *gin.Context, err error) {
	status(c, http.StatusServiceUnavailable, err.Error())
}

func status(c *gin.Context, code int, msg string) {
	c.JSON(code, Resp{ErrorCode: code, Message: msg})
}
