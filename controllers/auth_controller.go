package controllers

import (
	"net/http"

	"Gin_postgres_redis_av_lending/app"

	"github.com/gin-gonic/gin"
)

type AuthController struct{ *Srv }

func NewAuthController(s *Srv) *AuthController { return &AuthController{Srv: s} }

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// POST /api/auth/login
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}
	u, err := ac.Svc.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		ac.Log.Info().Str("email", req.Email).Str("ip", c.ClientIP()).Msg("login failed")
		ac.fail(c, err)
		return
	}
	if err := ac.issueSession(c.Request.Context(), c.Writer, u.ID, c.ClientIP()); err != nil {
		ac.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true, "user": u, "isAdmin": u.IsAdmin || ac.Cfg.IsAdminEmail(u.Email)})
}

// POST /api/auth/logout
func (ac *AuthController) Logout(c *gin.Context) {
	if sid := app.SessionID(c); sid != "" {
		_ = ac.AppSess.Delete(c.Request.Context(), sid)
	}
	ac.setAppCookie(c.Writer, "", -1)
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// GET /api/auth/whoami
func (ac *AuthController) WhoAmI(c *gin.Context) {
	p := app.PrincipalFrom(c)
	u, err := ac.Svc.GetUser(c.Request.Context(), p, p.UserID)
	if err != nil {
		ac.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"user": u, "isAdmin": p.IsAdmin})
}
