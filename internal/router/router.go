// Package router 设置 HTTP 路由
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/zhiqutech/tiku/internal/handler"
	"github.com/zhiqutech/tiku/internal/middleware"
	"github.com/zhiqutech/tiku/internal/service"
)

// SetupRouter 设置路由
func SetupRouter(h *handler.Handlers, svc *service.Services) *gin.Engine {
	r := gin.New()

	// 中间件
	r.Use(middleware.RecoveryMiddleware())
	r.Use(middleware.LoggingMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1
	v1 := r.Group("/api/v1")
	{
		// Auth 认证
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", h.Auth.Register)
			authGroup.POST("/login", h.Auth.Login)
			authGroup.GET("/me", middleware.RequireAuth(svc), h.Auth.Me)
			authGroup.POST("/change-password", middleware.RequireAuth(svc), h.Auth.ChangePassword)
		}

		// 以下接口都要求登录
		authed := v1.Group("", middleware.RequireAuth(svc))

		// Document 文档
		docs := authed.Group("/documents")
		{
			docs.POST("", h.Document.Upload)
			docs.GET("", h.Document.List)
			docs.GET("/:id", h.Document.Get)
			docs.DELETE("/:id", h.Document.Delete)
			docs.POST("/:id/parse", h.Document.Parse)
			docs.GET("/:id/status", h.Document.Status)
			docs.PUT("/:id/status", h.Document.OverrideStatus)
			docs.GET("/:id/chapters", h.Document.ListChapters)
		}

		// Chapter 章节
		chapters := authed.Group("/chapters")
		{
			chapters.PUT("/:id", h.Document.RenameChapter)
			chapters.DELETE("/:id", h.Document.DeleteChapter)
		}

		// Question 题目
		questions := authed.Group("/questions")
		{
			questions.POST("", h.Question.Create)
			questions.GET("", h.Question.List)
			questions.GET("/search", h.Question.Search)
			questions.GET("/:id", h.Question.Get)
			questions.PUT("/:id", h.Question.Update)
			questions.DELETE("/:id", h.Question.Delete)
		}

		// Progress 学习进度
		progressGroup := authed.Group("/progress")
		{
			progressGroup.POST("", h.Progress.Submit)
			progressGroup.GET("", h.Progress.Get)
			progressGroup.GET("/list", h.Progress.List)
		}

		// 管理接口
		admin := authed.Group("", middleware.RequireAdmin())

		// Provider 供应商配置
		providers := admin.Group("/providers")
		{
			providers.POST("", h.Provider.Create)
			providers.GET("", h.Provider.List)
			providers.GET("/:id", h.Provider.Get)
			providers.PUT("/:id", h.Provider.Update)
			providers.DELETE("/:id", h.Provider.Delete)
		}

		// Setting 设置
		settings := admin.Group("/settings")
		{
			settings.GET("/prompts/:key", h.Setting.GetPrompt)
			settings.PUT("/prompts/:key", h.Setting.SavePrompt)
		}
	}

	return r
}
