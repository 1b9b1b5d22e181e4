package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"schemabrowser/internal/responses"
)

const RequestIDHeader = "X-Request-ID"

// RequestID tags every request with an id, reusing a well-formed id sent
// by the client, and echoes it in the response header.
func RequestID(c *gin.Context) {
	id := c.GetHeader(RequestIDHeader)
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}

	c.Set(responses.RequestIDKey, id)
	c.Header(RequestIDHeader, id)
	c.Next()
}

// GetRequestID returns the id set by RequestID, or "" outside a tagged request.
func GetRequestID(c *gin.Context) string {
	return c.GetString(responses.RequestIDKey)
}
