package app

import (
	"skill_quest_backend/internal/config"
	"skill_quest_backend/internal/middleware"
	"skill_quest_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	// 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/profile", c.auth.GetProfile)

		// 诊断测试
		diagnostic := authGroup.Group("/diagnostic")
		{
			diagnostic.GET("/start", c.diagnostic.Start)
			diagnostic.POST("/answer", c.diagnostic.SubmitAnswer)
			diagnostic.POST("/complete", c.diagnostic.Complete)
		}

		// 练习/对战会话结算
		authGroup.POST("/sessions/complete", c.session.CompletePractice)

		// 成就系统
		achievements := authGroup.Group("/achievements")
		{
			achievements.GET("", c.achievement.GetUserAchievements)
			achievements.GET("/leaderboard", c.achievement.GetLeaderboard)
		}
	}
}
