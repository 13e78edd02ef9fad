package app

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// useCORS 只放行前端所在的 origin；会话靠 cookie，所以要 AllowCredentials
func useCORS(r *gin.Engine, cfg Config) {
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{cfg.WebOrigin},
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowHeaders: []string{"Content-Type"},
		// 登录限流时前端要读 Retry-After
		ExposeHeaders:    []string{"Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
