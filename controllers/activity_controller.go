package controllers

import (
	"net/http"

	"Gin_postgres_redis_av_lending/app"

	"github.com/gin-gonic/gin"
)

type ActivityController struct{ *Srv }

func NewActivityController(s *Srv) *ActivityController { return &ActivityController{Srv: s} }

// GET /api/activity?subjectId=&limit=
func (ac *ActivityController) ListActivity(c *gin.Context) {
	logs, err := ac.Svc.ListActivity(c.Request.Context(), app.PrincipalFrom(c), c.Query("subjectId"), queryInt(c, "limit", 100))
	if err != nil {
		ac.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"activity": logs})
}
