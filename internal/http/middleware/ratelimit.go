package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

type clientInfo struct {
	start time.Time
	count int
}

// RateLimit picks the Redis limiter when a client is available, the in-memory one otherwise
func RateLimit(client *redis.Client, maxRequests int, window time.Duration) gin.HandlerFunc {
	if client != nil {
		return RedisRateLimit(client, maxRequests, window)
	}
	return SimpleRateLimit(maxRequests, window)
}

// SimpleRateLimit blocks clients that send more than maxRequests per window.
// State is per process, so replicas do not share counts.
func SimpleRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	var mu sync.Mutex
	clients := make(map[string]*clientInfo)

	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := time.Now()

		mu.Lock()
		ci, ok := clients[ip]
		if !ok || now.Sub(ci.start) > window {
			ci = &clientInfo{start: now}
			clients[ip] = ci
		}
		ci.count++
		count := ci.count
		// forget idle clients now and then
		if len(clients) > 10000 {
			for k, v := range clients {
				if now.Sub(v.start) > window {
					delete(clients, k)
				}
			}
		}
		mu.Unlock()

		if count > maxRequests {
			RLBlocked.WithLabelValues(routeLabel(c)).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		RLRequests.WithLabelValues(routeLabel(c)).Inc()
		c.Next()
	}
}
