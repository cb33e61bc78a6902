package http

import (
	"github.com/gin-gonic/gin"
	"github.com/iyhunko/inventory-service/internal/config"
	"github.com/iyhunko/inventory-service/internal/http/controller"
	"github.com/iyhunko/inventory-service/internal/http/middleware"
	"github.com/iyhunko/inventory-service/internal/repository"
)

func InitRouter(conf *config.Config, tokens repository.TokenRepository, server *gin.Engine, ctr *controller.Controller, productCtr *controller.ProductController) *gin.Engine {
	httpMiddleware := middleware.New(conf, tokens)

	// Recovery first so panics in the other middlewares are caught too
	server.Use(middleware.Recovery(), middleware.Logger(), middleware.CORS())

	server.GET("/ping", ctr.Ping)

	// RateLimit keys on the subject set by Auth
	api := server.Group("/api", httpMiddleware.Auth(), httpMiddleware.RateLimit())
	{
		api.GET("/user", ctr.CurrentUser)
		api.POST("/logout", ctr.Logout)

		products := api.Group("/products")
		products.GET("", productCtr.ListProducts)
		products.POST("", productCtr.CreateProduct)
		products.GET("/:id", productCtr.GetProduct)
		products.PUT("/:id", productCtr.UpdateProduct)
		products.PATCH("/:id", productCtr.UpdateProduct)
		products.DELETE("/:id", productCtr.DeleteProduct)
	}

	return server
}
