package app

import (
	"errors"
	"net/http"

	"Gin_postgres_redis_av_lending/db"
	"Gin_postgres_redis_av_lending/lending"
	"Gin_postgres_redis_av_lending/session"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const AppSessionCookie = "app_session"

const (
	ctxUserID    = "userID"
	ctxUserEmail = "userEmail"
	ctxIsAdmin   = "isAdmin"
	ctxSessionID = "sessionID"
)

// AuthRequired cookie → 签名校验 → Redis 会话 → 用户仍存在
func AuthRequired(appSess *session.AppSessionStore, codec *session.CookieCodec, repo *db.Repo, cfg Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ck, err := c.Request.Cookie(AppSessionCookie)
		if err != nil || ck.Value == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		sid, err := codec.Decode(AppSessionCookie, ck.Value)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "invalid session"})
			return
		}
		as, err := appSess.Get(c.Request.Context(), sid)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "invalid session"})
			return
		}

		u, err := repo.FindUserByID(c.Request.Context(), as.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				_ = appSess.Delete(c.Request.Context(), sid)
				c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, H{"error": "internal error"})
			return
		}
		c.Set(ctxSessionID, sid)
		c.Set(ctxUserID, u.ID)
		c.Set(ctxUserEmail, u.Email)
		c.Set(ctxIsAdmin, u.IsAdmin || cfg.IsAdminEmail(u.Email))

		c.Next()
	}
}

// AdminOnly 必须挂在 AuthRequired 之后
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ctxUserID) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		if !c.GetBool(ctxIsAdmin) {
			c.AbortWithStatusJSON(http.StatusForbidden, H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// PrincipalFrom 取 AuthRequired 放进上下文的当前用户
func PrincipalFrom(c *gin.Context) lending.Principal {
	return lending.Principal{UserID: c.GetString(ctxUserID), IsAdmin: c.GetBool(ctxIsAdmin)}
}

func SessionID(c *gin.Context) string { return c.GetString(ctxSessionID) }
