package controllers

import (
	"net/http"

	"Gin_postgres_redis_av_lending/app"
	"Gin_postgres_redis_av_lending/lending"

	"github.com/gin-gonic/gin"
)

type UserController struct{ *Srv }

func GetUserController(s *Srv) *UserController { return &UserController{Srv: s} }

// GET /api/users?q=alice&page=1&size=20
func (uc *UserController) ListUsers(c *gin.Context) {
	res, err := uc.Svc.ListUsers(c.Request.Context(), app.PrincipalFrom(c),
		c.Query("q"), queryInt(c, "page", 1), queryInt(c, "size", 20))
	if err != nil {
		uc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{
		"total": res.Total,
		"users": res.Users,
	})
}

// GET /api/users/:id
func (uc *UserController) GetUser(c *gin.Context) {
	user, err := uc.Svc.GetUser(c.Request.Context(), app.PrincipalFrom(c), c.Param("id"))
	if err != nil {
		uc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"user": user})
}

// POST /api/users
func (uc *UserController) CreateUser(c *gin.Context) {
	var in lending.UserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badJSON(c, err)
		return
	}
	user, err := uc.Svc.CreateUser(c.Request.Context(), app.PrincipalFrom(c), in)
	if err != nil {
		uc.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, app.H{"user": user})
}

// PUT /api/users/:id  密码留空则不改
func (uc *UserController) UpdateUser(c *gin.Context) {
	var in lending.UserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badJSON(c, err)
		return
	}
	user, err := uc.Svc.UpdateUser(c.Request.Context(), app.PrincipalFrom(c), c.Param("id"), in)
	if err != nil {
		uc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"user": user})
}

// DELETE /api/users/:id
func (uc *UserController) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	if err := uc.Svc.DeleteUser(c.Request.Context(), app.PrincipalFrom(c), id); err != nil {
		uc.fail(c, err)
		return
	}
	// 撤销该用户的所有登录会话
	if err := uc.AppSess.RevokeAllForUser(c.Request.Context(), id); err != nil {
		uc.Log.Warn().Err(err).Str("user_id", id).Msg("revoke sessions")
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}
