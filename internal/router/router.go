package router

import (
	"fmt"
	"strings"

	"github.com/stablefront/internal/cache"
	"github.com/stablefront/internal/config"
	adminhandlers "github.com/stablefront/internal/http/handlers/admin"
	publichandlers "github.com/stablefront/internal/http/handlers/public"
	"github.com/stablefront/internal/logger"
	"github.com/stablefront/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)

	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "sf"
	}
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
	}

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	apiV1 := r.Group("/api/v1")
	{
		// 店面公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/products", publicHandler.ListProducts)
			public.GET("/products/:id", publicHandler.GetProduct)
		}

		// 买家订单接口（无需登录，凭订单编号访问）
		orders := apiV1.Group("/orders")
		{
			orders.POST("", publicHandler.CreateOrder)
			orders.GET("/:order_no", publicHandler.GetOrder)
			orders.POST("/:order_no/tx-hash", publicHandler.AttachTxHash)
		}

		// 支付回调（真实 HTTP 状态码，不走响应信封）
		apiV1.POST("/payments/webhook/mural", publicHandler.MuralWebhook)

		// 商户端接口
		admin := apiV1.Group("/admin")
		{
			admin.POST("/login",
				RateLimitMiddleware(cache.Client(), loginRule, KeyByIPAndJSONField("username")),
				adminHandler.Login)

			authed := admin.Group("")
			authed.Use(MerchantJWTAuthMiddleware(cfg.JWT.SecretKey, c.MerchantRepo))
			{
				authed.GET("/orders", adminHandler.ListOrders)
				authed.GET("/orders/:id", adminHandler.GetOrder)
				authed.POST("/orders/:id/payout/execute", adminHandler.ExecutePayout)
				authed.POST("/orders/:id/payout/refresh", adminHandler.RefreshPayout)
				authed.POST("/orders/:id/fulfill", adminHandler.FulfillOrder)
			}
		}
	}

	return r
}
