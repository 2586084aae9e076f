package restapi

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter wires the wallet API routes and the metrics endpoint.
func SetupRouter(handler *WalletHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/wallets", handler.ListWalletsHandler)
		v1.GET("/wallets/:name", handler.GetWalletHandler)
		v1.POST("/wallets/:name/transfer", handler.TransferHandler)
		v1.POST("/wallets/:name/sign", handler.SignHandler)
		v1.GET("/notifications", handler.ListNotificationsHandler)
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
