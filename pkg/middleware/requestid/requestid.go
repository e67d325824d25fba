// Package requestid tags every request with a correlation ID that is echoed
// back in the X-Request-ID header and attached to access logs.
package requestid

import (
	"context"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// Header is the request and response header carrying the ID.
	Header     = "X-Request-ID"
	contextKey = "request_id"
)

type ctxKey struct{}

// Client supplied IDs are accepted only when they look like opaque tokens.
var acceptable = regexp.MustCompile(`^[A-Za-z0-9._-]{8,128}$`)

// Middleware assigns the request ID, reusing a well-formed inbound header.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(Header)
		if !acceptable.MatchString(reqID) {
			reqID = uuid.NewString()
		}

		c.Set(contextKey, reqID)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), ctxKey{}, reqID))
		c.Writer.Header().Set(Header, reqID)

		c.Next()
	}
}

// Value returns the request ID stored in the Gin context.
func Value(c *gin.Context) string {
	return c.GetString(contextKey)
}

// FromContext returns the request ID carried by a request context, used by
// code that only sees context.Context.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
