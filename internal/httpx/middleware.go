package httpx

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ctxKey int

const requestIDKey ctxKey = 0

// RequestID tags each request with an id, honoring one the caller already
// set. The id is echoed in the response header and placed in the request
// context so code below the handler layer can log against it.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		ctx := context.WithValue(c.Request.Context(), requestIDKey, rid)
		c.Request = c.Request.WithContext(ctx)
		c.Writer.Header().Set("X-Request-ID", rid)
		c.Next()
	}
}

// RequestIDFrom returns the id RequestID stored, or "" outside a request.
func RequestIDFrom(ctx context.Context) string {
	rid, _ := ctx.Value(requestIDKey).(string)
	return rid
}

func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Printf("[http] rid=%s %s %s from=%s status=%d bytes=%d dur=%s",
			RequestIDFrom(c.Request.Context()), c.Request.Method, c.Request.URL.Path,
			c.ClientIP(), c.Writer.Status(), c.Writer.Size(), time.Since(start))
	}
}
