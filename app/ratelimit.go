package app

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func loginRateKey(ip string) string { return "av:login_rl:" + ip }

// LoginRateLimit 固定窗口：同一 IP 每个 window 最多 limit 次
func LoginRateLimit(rdb *redis.Client, limit int, window time.Duration, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit <= 0 {
			c.Next()
			return
		}
		ctx := c.Request.Context()
		key := loginRateKey(c.ClientIP())

		pipe := rdb.TxPipeline()
		incr := pipe.Incr(ctx, key)
		ttlCmd := pipe.TTL(ctx, key)
		if _, err := pipe.Exec(ctx); err != nil {
			// Redis 出问题时放行，登录本身还有密码校验
			log.Warn().Err(err).Msg("login rate limit")
			c.Next()
			return
		}
		n := incr.Val()
		ttl := ttlCmd.Val()

		// 没有过期时间的计数器会永久锁死该 IP：补上；补不上就删掉
		if ttl < 0 {
			if err := rdb.Expire(ctx, key, window).Err(); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("login rate limit: expire failed, dropping counter")
				_ = rdb.Del(ctx, key).Err()
			}
			ttl = window
		}
		if n > int64(limit) {
			c.Header("Retry-After", strconv.Itoa(int(ttl.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, H{"error": "too many login attempts, try again later"})
			return
		}
		c.Next()
	}
}
