package controllers

import (
	"net/http"

	"Gin_postgres_redis_av_lending/app"
	"Gin_postgres_redis_av_lending/lending"

	"github.com/gin-gonic/gin"
)

type PersonController struct{ *Srv }

func NewPersonController(s *Srv) *PersonController { return &PersonController{Srv: s} }

// GET /api/persons?q=
func (pc *PersonController) ListPersons(c *gin.Context) {
	ps, err := pc.Svc.ListPersons(c.Request.Context(), app.PrincipalFrom(c), c.Query("q"))
	if err != nil {
		pc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"persons": ps})
}

func (pc *PersonController) GetPerson(c *gin.Context) {
	p, err := pc.Svc.GetPerson(c.Request.Context(), app.PrincipalFrom(c), c.Param("id"))
	if err != nil {
		pc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"person": p})
}

func (pc *PersonController) CreatePerson(c *gin.Context) {
	var in lending.PersonInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badJSON(c, err)
		return
	}
	p, err := pc.Svc.CreatePerson(c.Request.Context(), app.PrincipalFrom(c), in)
	if err != nil {
		pc.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, app.H{"person": p})
}

func (pc *PersonController) UpdatePerson(c *gin.Context) {
	var in lending.PersonInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badJSON(c, err)
		return
	}
	p, err := pc.Svc.UpdatePerson(c.Request.Context(), app.PrincipalFrom(c), c.Param("id"), in)
	if err != nil {
		pc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"person": p})
}

// DELETE /api/persons/:id  有借用记录时 409
func (pc *PersonController) DeletePerson(c *gin.Context) {
	if err := pc.Svc.DeletePerson(c.Request.Context(), app.PrincipalFrom(c), c.Param("id")); err != nil {
		pc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}
