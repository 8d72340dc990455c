package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"filesmanager/internal/pkg/apperr"
)

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// AbortWithError writes the error envelope and stops the handler chain.
func AbortWithError(c *gin.Context, err error) {
	FromError(c, err)
	c.Abort()
}

// FromError renders a classified error. Causes of internal and storage
// failures are attached to the gin context for the request logger and never
// sent to the client.
func FromError(c *gin.Context, err error) {
	e := apperr.As(err)
	if e.Kind == apperr.KindInternal || e.Kind == apperr.KindStorage {
		_ = c.Error(err)
	}
	Error(c, StatusFor(e.Kind), e.Code, e.Message)
}

func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindInvalidInput:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
