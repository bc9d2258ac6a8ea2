package api

import (
	"github.com/SlpAus/guo-backend/internal/pot"
	"github.com/gin-gonic/gin"
)

// SetupRoutes 注册项目的所有API路由
func SetupRoutes(router *gin.Engine, pots *pot.Handler, health gin.HandlerFunc) {
	api := router.Group("/api")
	{
		// 约锅相关的路由
		pots.RegisterRoutes(api)

		api.GET("/health", health)
	}
}
