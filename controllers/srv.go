// controllers/srv.go
package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"Gin_postgres_redis_av_lending/app"
	"Gin_postgres_redis_av_lending/lending"
	"Gin_postgres_redis_av_lending/session"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type Srv struct {
	Svc     *lending.Service
	AppSess *session.AppSessionStore
	Codec   *session.CookieCodec
	Cfg     app.Config
	Log     zerolog.Logger
}

func GetSrv(a *app.App) *Srv {
	return &Srv{
		Svc:     a.Svc,
		AppSess: a.AppSessions(),
		Codec:   a.Cookies(),
		Cfg:     a.Config,
		Log:     a.Log,
	}
}

// --- helpers ---

// 统一设置业务会话 Cookie；maxAge < 0 表示删除
func (s *Srv) setAppCookie(w http.ResponseWriter, value string, maxAge time.Duration) {
	ma := int(maxAge / time.Second)
	if maxAge < 0 {
		ma = -1
	}
	http.SetCookie(w, &http.Cookie{
		Name:     app.AppSessionCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.Cfg.SecureCookies(),
		MaxAge:   ma,
	})
}

// 登录成功：创建会话 + 写登录快照
func (s *Srv) issueSession(ctx context.Context, w http.ResponseWriter, userID, ip string) error {
	if err := s.Svc.Repo().TouchUserLogin(ctx, userID, ip); err != nil {
		s.Log.Warn().Err(err).Str("user_id", userID).Msg("touch login") // 不阻塞
	}
	as, err := s.AppSess.Create(ctx, userID)
	if err != nil {
		return err
	}
	v, err := s.Codec.Encode(app.AppSessionCookie, as.ID)
	if err != nil {
		return err
	}
	s.setAppCookie(w, v, s.AppSess.TTL())
	return nil
}

// fail 把 lending 的错误映射成状态码
func (s *Srv) fail(c *gin.Context, err error) {
	var ve *lending.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, app.H{"error": "validation failed", "fields": ve.Fields})
	case errors.Is(err, lending.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, app.H{"error": err.Error()})
	case errors.Is(err, lending.ErrForbidden):
		c.JSON(http.StatusForbidden, app.H{"error": "forbidden"})
	case errors.Is(err, lending.ErrNotFound):
		c.JSON(http.StatusNotFound, app.H{"error": err.Error()})
	case errors.Is(err, lending.ErrItemUnavailable),
		errors.Is(err, lending.ErrAlreadyReturned),
		errors.Is(err, lending.ErrLoanClosed),
		errors.Is(err, lending.ErrLoanNotPending),
		errors.Is(err, lending.ErrHasLoans),
		errors.Is(err, lending.ErrItemInUse),
		errors.Is(err, lending.ErrSelfDelete):
		c.JSON(http.StatusConflict, app.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal error"})
	}
}

func badJSON(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, app.H{"error": "invalid request: " + err.Error()})
}

func queryInt(c *gin.Context, key string, def int) int {
	n, err := strconv.Atoi(c.DefaultQuery(key, strconv.Itoa(def)))
	if err != nil {
		return def
	}
	return n
}
