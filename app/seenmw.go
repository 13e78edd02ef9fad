// app/seenmw.go
package app

import (
	"time"

	"Gin_postgres_redis_av_lending/db"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// TouchLastSeen 每个用户每 throttle 最多写一次 last_seen_at
func TouchLastSeen(repo *db.Repo, rdb *redis.Client, throttle time.Duration, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetString(ctxUserID)
		if uid == "" {
			c.Next()
			return
		}

		key := "av:lastseen:" + uid
		if ok, _ := rdb.SetNX(c.Request.Context(), key, "1", throttle).Result(); ok {
			if err := repo.TouchUserSeen(c.Request.Context(), uid); err != nil {
				log.Warn().Err(err).Str("user_id", uid).Msg("touch last seen") // 不阻塞请求
			}
		}
		c.Next()
	}
}
