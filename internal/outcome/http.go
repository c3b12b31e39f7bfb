package outcome

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Respond writes err to the response. Rejections keep their kind's status and
// details; anything else is logged and reported as an internal error.
func Respond(c *gin.Context, logger *zap.Logger, msg string, err error) {
	if r, ok := As(err); ok {
		c.JSON(r.HTTPStatus(), gin.H{"error": r.Message, "rejection": r})
		return
	}
	logger.Error(msg, zap.Error(err), zap.String("path", c.FullPath()))
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// Reject writes a rejection with its status.
func Reject(c *gin.Context, r *Rejection) {
	c.JSON(r.HTTPStatus(), gin.H{"error": r.Message, "rejection": r})
}
