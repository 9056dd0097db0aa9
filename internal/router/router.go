package router

import (
	"github.com/vladbogun1/tg-shop-miniapp/config"
	"github.com/vladbogun1/tg-shop-miniapp/internal/cache"
	"github.com/vladbogun1/tg-shop-miniapp/internal/handlers"
	"github.com/vladbogun1/tg-shop-miniapp/internal/middleware"
	"github.com/vladbogun1/tg-shop-miniapp/internal/security"
	"github.com/vladbogun1/tg-shop-miniapp/internal/service"
	"github.com/vladbogun1/tg-shop-miniapp/internal/token"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Deps struct {
	Config    *config.Config
	Orders    service.OrderService
	Catalog   service.CatalogService
	Cache     *cache.RedisCache // nil, если Redis выключен
	Tokens    token.Provider
	Validator *security.InitDataValidator
	Log       *zap.Logger
}

func Router(d Deps) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Tg-Init-Data", "X-Admin-Password"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	catalogHandler := handlers.NewCatalogHandler(d.Catalog, d.Cache, d.Log)
	orderHandler := handlers.NewOrderHandler(d.Orders, d.Log)
	authHandler := handlers.NewAuthHandler(
		d.Config.Security.AdminPassword, d.Tokens,
		d.Config.Telegram.BotUsername, "UAH",
		d.Config.Telegram.AdminUserIDs, d.Log,
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.GET("/products", catalogHandler.ListProducts)
		api.GET("/tags", catalogHandler.ListTags)
		api.GET("/app-info", authHandler.AppInfo)

		user := api.Group("", middleware.InitDataRequired(d.Validator, d.Log))
		{
			user.GET("/me", authHandler.Me)
			user.POST("/orders", orderHandler.CreateOrder)
		}

		api.POST("/admin/login", authHandler.AdminLogin)

		admin := api.Group("/admin", middleware.AdminRequired(
			d.Config.Security.AdminPassword, d.Tokens, d.Validator,
			d.Config.Telegram.AdminUserIDs, d.Log,
		))
		{
			admin.GET("/products", catalogHandler.AdminListProducts)
			admin.GET("/products/archived", catalogHandler.AdminListArchivedProducts)
			admin.GET("/products/:id", catalogHandler.AdminGetProduct)
			admin.POST("/products", catalogHandler.AdminCreateProduct)
			admin.PUT("/products/:id", catalogHandler.AdminUpdateProduct)
			admin.PATCH("/products/:id/active", catalogHandler.AdminSetProductActive)
			admin.PATCH("/products/:id/archived", catalogHandler.AdminSetProductArchived)

			admin.POST("/tags", catalogHandler.AdminCreateTag)
			admin.PUT("/tags/:id", catalogHandler.AdminRenameTag)
			admin.DELETE("/tags/:id", catalogHandler.AdminDeleteTag)

			admin.GET("/promocodes", catalogHandler.AdminListPromoCodes)
			admin.POST("/promocodes", catalogHandler.AdminCreatePromoCode)
			admin.PUT("/promocodes/:id", catalogHandler.AdminUpdatePromoCode)
			admin.DELETE("/promocodes/:id", catalogHandler.AdminDeletePromoCode)

			admin.GET("/orders", orderHandler.AdminListOrders)
			admin.GET("/orders/:id", orderHandler.AdminGetOrder)
			admin.POST("/orders/:id/approve", orderHandler.AdminApproveOrder)
			admin.POST("/orders/:id/reject", orderHandler.AdminRejectOrder)
			admin.POST("/orders/:id/ship", orderHandler.AdminShipOrder)
			admin.DELETE("/orders/:id", orderHandler.AdminDeleteOrder)

			admin.GET("/payment-template", catalogHandler.AdminGetPaymentTemplate)
			admin.PUT("/payment-template", catalogHandler.AdminSetPaymentTemplate)
		}
	}

	return r
}
