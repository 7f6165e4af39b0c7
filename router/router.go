package router

import (
	"time"

	"fintrack/api"
	"fintrack/config"
	_ "fintrack/docs"
	"fintrack/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config) *gin.Engine {
	// 设置运行模式
	gin.SetMode(cfg.Server.Mode)

	r := gin.Default()

	// CORS 中间件
	r.Use(CORSMiddleware())

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1 路由组
	v1 := r.Group("/api/v1")
	{
		// 认证相关路由（无需登录，登录接口限流）
		authHandler := api.NewAuthHandler(cfg)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", middleware.LoginRateLimit(10, time.Minute), authHandler.Login)
		}

		// 推荐类别列表（无需登录）
		categoryHandler := api.NewCategoryHandler()
		v1.GET("/categories", categoryHandler.List)

		// 需要 JWT 认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth())
		{
			// 用户相关
			authorized.GET("/auth/profile", authHandler.GetProfile)

			// 推荐类别维护
			authorized.POST("/categories", categoryHandler.Create)

			// 消费记录相关
			expenseHandler := api.NewExpenseHandler()
			expenses := authorized.Group("/expenses")
			{
				expenses.POST("", expenseHandler.Create)
				expenses.GET("", expenseHandler.List)
				expenses.GET("/statistics", expenseHandler.GetCategoryStatistics)
				expenses.GET("/period-statistics", expenseHandler.GetPeriodStatistics)
				expenses.GET("/:id", expenseHandler.Get)
				expenses.PUT("/:id", expenseHandler.Update)
				expenses.DELETE("/:id", expenseHandler.Delete)
			}

			// 预算相关
			budgetHandler := api.NewBudgetHandler(cfg)
			budgets := authorized.Group("/budgets")
			{
				budgets.POST("", budgetHandler.Upsert)
				budgets.GET("", budgetHandler.List)
				budgets.DELETE("/:id", budgetHandler.Delete)
				budgets.POST("/allocate/proportional", budgetHandler.AllocateProportional)
				budgets.POST("/allocate/ai", budgetHandler.AllocateAI)
			}

			// 预算预警
			alertHandler := api.NewAlertHandler(cfg)
			authorized.GET("/alerts", alertHandler.GetAlerts)

			// AI模型管理
			aiModelHandler := api.NewAIModelHandler()
			aiModels := authorized.Group("/ai-models")
			{
				aiModels.GET("", aiModelHandler.List)
				aiModels.POST("", aiModelHandler.Create)
				aiModels.PUT("/:id", aiModelHandler.Update)
				aiModels.DELETE("/:id", aiModelHandler.Delete)
				aiModels.POST("/:id/test", aiModelHandler.Test)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	return r
}

// CORSMiddleware CORS 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
