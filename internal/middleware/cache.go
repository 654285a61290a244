package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/libvisit-api/pkg/middleware/requestid"
)

const (
	responseMetaKey  = "response_meta"
	responseStartKey = "response_meta_start"
	cacheHitKey      = "cache_hit"
)

// WithResponseMeta starts the response clock and seeds the envelope meta with the request id.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		meta := map[string]interface{}{}
		if id := requestid.Value(c); id != "" {
			meta["request_id"] = id
		}
		c.Set(responseMetaKey, meta)
		c.Set(responseStartKey, time.Now())
		c.Next()
	}
}

// SetCacheHit records whether the analytics summary came from the cache.
func SetCacheHit(c *gin.Context, hit bool) {
	SetMeta(c, cacheHitKey, hit)
}

// SetMeta adds one key to the envelope meta of the current response.
func SetMeta(c *gin.Context, key string, value interface{}) {
	ensureMeta(c)[key] = value
}

// ExtractMeta returns the meta collected so far. processing_time_ms is measured
// up to this call, so handlers call it right before writing the body.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	meta := ensureMeta(c)
	if start, ok := c.Get(responseStartKey); ok {
		if t, ok := start.(time.Time); ok {
			meta["processing_time_ms"] = time.Since(t).Milliseconds()
		}
	}
	return meta
}

func ensureMeta(c *gin.Context) map[string]interface{} {
	if meta, exists := c.Get(responseMetaKey); exists {
		if typed, ok := meta.(map[string]interface{}); ok {
			return typed
		}
	}
	meta := make(map[string]interface{})
	c.Set(responseMetaKey, meta)
	return meta
}
