// controllers/loan_controller.go
package controllers

import (
	"errors"
	"net/http"

	"Gin_postgres_redis_av_lending/app"
	"Gin_postgres_redis_av_lending/lending"
	"Gin_postgres_redis_av_lending/models"

	"github.com/gin-gonic/gin"
)

type LoanController struct{ *Srv }

func NewLoanController(s *Srv) *LoanController { return &LoanController{Srv: s} }

// POST /api/loans  柜台直接借出（active）
func (lc *LoanController) RegisterLoan(c *gin.Context) {
	var in lending.LoanInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badJSON(c, err)
		return
	}
	loan, err := lc.Svc.RegisterLoan(c.Request.Context(), app.PrincipalFrom(c), in)
	if err != nil {
		lc.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, app.H{"loan": loan})
}

// GET /api/loans?status=open|pending|active|returned|cancelled&itemId=&personId=
func (lc *LoanController) ListLoans(c *gin.Context) {
	ls, err := lc.Svc.ListLoans(c.Request.Context(), app.PrincipalFrom(c), lending.LoanFilter{
		Status:   c.Query("status"),
		ItemID:   c.Query("itemId"),
		PersonID: c.Query("personId"),
	})
	if err != nil {
		lc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"loans": ls})
}

// GET /api/loans/mine?status=
func (lc *LoanController) ListMyLoans(c *gin.Context) {
	ls, err := lc.Svc.ListMyLoans(c.Request.Context(), app.PrincipalFrom(c), c.Query("status"))
	if err != nil {
		lc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"loans": ls})
}

func (lc *LoanController) GetLoan(c *gin.Context) {
	loan, err := lc.Svc.GetLoan(c.Request.Context(), app.PrincipalFrom(c), c.Param("id"))
	if err != nil {
		lc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"loan": loan})
}

func (lc *LoanController) ActivateLoan(c *gin.Context) {
	loan, err := lc.Svc.ActivateLoan(c.Request.Context(), app.PrincipalFrom(c), c.Param("id"))
	lc.transitionResult(c, loan, err)
}

func (lc *LoanController) ReturnLoan(c *gin.Context) {
	loan, err := lc.Svc.ReturnLoan(c.Request.Context(), app.PrincipalFrom(c), c.Param("id"))
	lc.transitionResult(c, loan, err)
}

func (lc *LoanController) CancelLoan(c *gin.Context) {
	loan, err := lc.Svc.CancelLoan(c.Request.Context(), app.PrincipalFrom(c), c.Param("id"))
	lc.transitionResult(c, loan, err)
}

// 重复归还：409，但把当前 loan 一并返回
func (lc *LoanController) transitionResult(c *gin.Context, loan *models.Loan, err error) {
	if err != nil {
		if errors.Is(err, lending.ErrAlreadyReturned) && loan != nil {
			c.JSON(http.StatusConflict, app.H{"error": err.Error(), "loan": loan})
			return
		}
		lc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"loan": loan})
}
