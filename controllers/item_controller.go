// controllers/item_controller.go
package controllers

import (
	"net/http"
	"strconv"

	"Gin_postgres_redis_av_lending/app"
	"Gin_postgres_redis_av_lending/lending"

	"github.com/gin-gonic/gin"
)

type ItemController struct{ *Srv }

func NewItemController(s *Srv) *ItemController { return &ItemController{Srv: s} }

// GET /api/items?placa=&category=&q=&available=true&page=&size=
func (ic *ItemController) ListItems(c *gin.Context) {
	avail, _ := strconv.ParseBool(c.DefaultQuery("available", "false"))
	res, err := ic.Svc.ListItems(c.Request.Context(), app.PrincipalFrom(c), lending.ItemFilter{
		Placa:         c.Query("placa"),
		Category:      c.Query("category"),
		Query:         c.Query("q"),
		AvailableOnly: avail,
		Page:          queryInt(c, "page", 1),
		Size:          queryInt(c, "size", 50),
	})
	if err != nil {
		ic.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/items/categories
func (ic *ItemController) ListCategories(c *gin.Context) {
	cats, err := ic.Svc.ListCategories(c.Request.Context(), app.PrincipalFrom(c))
	if err != nil {
		ic.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"categories": cats})
}

func (ic *ItemController) GetItem(c *gin.Context) {
	it, err := ic.Svc.GetItem(c.Request.Context(), app.PrincipalFrom(c), c.Param("id"))
	if err != nil {
		ic.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"item": it, "path": it.PublicPath()})
}

// GET /api/items/by-slug/:slug
func (ic *ItemController) GetItemBySlug(c *gin.Context) {
	it, err := ic.Svc.GetItemBySlug(c.Request.Context(), app.PrincipalFrom(c), c.Param("slug"))
	if err != nil {
		ic.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"item": it, "path": it.PublicPath()})
}

// POST /api/items  登记人即保管人
func (ic *ItemController) CreateItem(c *gin.Context) {
	var in lending.ItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badJSON(c, err)
		return
	}
	it, err := ic.Svc.CreateItem(c.Request.Context(), app.PrincipalFrom(c), in)
	if err != nil {
		ic.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, app.H{"item": it, "path": it.PublicPath()})
}

func (ic *ItemController) UpdateItem(c *gin.Context) {
	var in lending.ItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badJSON(c, err)
		return
	}
	it, err := ic.Svc.UpdateItem(c.Request.Context(), app.PrincipalFrom(c), c.Param("id"), in)
	if err != nil {
		ic.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"item": it})
}

func (ic *ItemController) DeleteItem(c *gin.Context) {
	if err := ic.Svc.DeleteItem(c.Request.Context(), app.PrincipalFrom(c), c.Param("id")); err != nil {
		ic.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

type requestLoanReq struct {
	PersonID string `json:"personId" binding:"required"`
	Notes    string `json:"notes"`
}

// POST /api/items/:id/request  从物品页发起借用申请（pending）
func (ic *ItemController) RequestLoan(c *gin.Context) {
	var req requestLoanReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}
	loan, err := ic.Svc.RequestLoan(c.Request.Context(), app.PrincipalFrom(c), lending.LoanInput{
		ItemID:   c.Param("id"),
		PersonID: req.PersonID,
		Notes:    req.Notes,
	})
	if err != nil {
		ic.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, app.H{"loan": loan})
}
