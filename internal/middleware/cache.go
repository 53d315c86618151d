package middleware

import (
	"bytes"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

// ResponseCache memoizes successful GET responses for a short window. It is
// mounted on the public business endpoints, which are polled by waiting-room
// displays far more often than their data changes.
type ResponseCache struct {
	store *cache.Cache
	mu    sync.Mutex
}

type cachedResponse struct {
	status      int
	contentType string
	body        []byte
}

type cacheWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *cacheWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func NewResponseCache(ttl, cleanupInterval time.Duration) *ResponseCache {
	return &ResponseCache{
		store: cache.New(ttl, cleanupInterval),
	}
}

func (rc *ResponseCache) Cache() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := c.Request.URL.RequestURI()
		if v, found := rc.store.Get(key); found {
			cached := v.(*cachedResponse)
			c.Data(cached.status, cached.contentType, cached.body)
			c.Abort()
			return
		}

		w := &cacheWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = w

		c.Next()

		if w.Status() != http.StatusOK {
			return
		}

		rc.mu.Lock()
		rc.store.Set(key, &cachedResponse{
			status:      w.Status(),
			contentType: w.Header().Get("Content-Type"),
			body:        w.body.Bytes(),
		}, cache.DefaultExpiration)
		rc.mu.Unlock()
	}
}
