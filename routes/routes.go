package routes

import (
	"net/http"
	"time"

	"Gin_postgres_redis_av_lending/app"
	"Gin_postgres_redis_av_lending/controllers"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	// 控制器与依赖
	s := controllers.GetSrv(a)
	authCtl := controllers.NewAuthController(s)
	uc := controllers.GetUserController(s)
	personCtl := controllers.NewPersonController(s)
	itemCtl := controllers.NewItemController(s)
	loanCtl := controllers.NewLoanController(s)
	activityCtl := controllers.NewActivityController(s)

	// 复用的中间件
	authMW := app.AuthRequired(a.AppSessions(), a.Cookies(), a.Repo, a.Config)
	adminMW := app.AdminOnly()
	seenMW := app.TouchLastSeen(a.Repo, a.RDB, a.Config.LastSeenEvery, a.Log)
	loginRL := app.LoginRateLimit(a.RDB, a.Config.LoginRateLimit, time.Minute, a.Log)

	r.GET("/healthz", func(c *app.Ctx) { c.JSON(http.StatusOK, app.H{"ok": true}) })

	// ------------------------------
	// 登录 / 登出
	// ------------------------------
	auth := r.Group("/api/auth")
	{
		auth.POST("/login", loginRL, authCtl.Login)
		auth.POST("/logout", authMW, authCtl.Logout)
		auth.GET("/whoami", authMW, seenMW, authCtl.WhoAmI)
	}

	// ------------------------------
	// 用户管理（仅管理员）
	// ------------------------------
	users := r.Group("/api/users", authMW, seenMW, adminMW)
	{
		users.GET("", uc.ListUsers) // ?q=&page=&size=
		users.POST("", uc.CreateUser)
		users.GET("/:id", uc.GetUser)
		users.PUT("/:id", uc.UpdateUser)
		users.DELETE("/:id", uc.DeleteUser)
	}

	// ------------------------------
	// 借用人
	// ------------------------------
	persons := r.Group("/api/persons", authMW, seenMW)
	{
		persons.GET("", personCtl.ListPersons) // ?q=
		persons.POST("", personCtl.CreatePerson)
		persons.GET("/:id", personCtl.GetPerson)
		persons.PUT("/:id", personCtl.UpdatePerson)
		persons.DELETE("/:id", adminMW, personCtl.DeletePerson)
	}

	// ------------------------------
	// 设备
	// ------------------------------
	items := r.Group("/api/items", authMW, seenMW)
	{
		items.GET("", itemCtl.ListItems) // ?placa=&category=&q=&available=
		items.GET("/categories", itemCtl.ListCategories)
		items.GET("/by-slug/:slug", itemCtl.GetItemBySlug)
		items.POST("", itemCtl.CreateItem)
		items.GET("/:id", itemCtl.GetItem)
		items.PUT("/:id", itemCtl.UpdateItem)
		items.DELETE("/:id", itemCtl.DeleteItem)
		items.POST("/:id/request", itemCtl.RequestLoan)
	}

	// ------------------------------
	// 借还
	// ------------------------------
	loans := r.Group("/api/loans", authMW, seenMW)
	{
		loans.GET("", adminMW, loanCtl.ListLoans) // ?status=&itemId=&personId=
		loans.GET("/mine", loanCtl.ListMyLoans)
		loans.POST("", loanCtl.RegisterLoan)
		loans.GET("/:id", loanCtl.GetLoan)
		loans.POST("/:id/activate", loanCtl.ActivateLoan)
		loans.POST("/:id/return", loanCtl.ReturnLoan)
		loans.POST("/:id/cancel", loanCtl.CancelLoan)
	}

	r.GET("/api/activity", authMW, adminMW, activityCtl.ListActivity) // ?subjectId=
}
