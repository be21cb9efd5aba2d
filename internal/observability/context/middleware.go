package context

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

const requestIDHeader = "X-Request-ID"

// GinMiddleware assigns every request an id, honoring one supplied by
// the caller, and echoes it on the response.
func GinMiddleware(genID *snowflake.Node) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" && genID != nil {
			requestID = genID.Generate().String()
		}
		if requestID != "" {
			c.Set("request_id", requestID)
			c.Request = c.Request.WithContext(WithRequestID(c.Request.Context(), requestID))
			c.Header(requestIDHeader, requestID)
		}
		c.Next()
	}
}
