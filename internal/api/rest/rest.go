package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/feral-file/ff-fractions/internal/api/middleware"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler, authCfg middleware.AuthConfig) {
	// Health check endpoint (no auth, no version prefix)
	router.GET("/health", handler.HealthCheck)

	auth := middleware.Auth(authCfg)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Sale endpoints (public read access)
		v1.GET("/sales", handler.ListSales)
		v1.GET("/sales/settleable", handler.ListSettleableSales)
		v1.GET("/sales/:id", handler.GetSale)
		v1.GET("/sales/:id/successful", handler.IsSaleSuccessful)
		v1.GET("/sales/:id/open", handler.IsSaleOpen)
		v1.GET("/sales/:id/bought-out", handler.IsTokenIdBoughtOut)

		// Sale lifecycle (requires authentication)
		v1.POST("/sales", auth, handler.SetupSale)
		v1.POST("/sales/:id/purchases", auth, handler.BuyFractions)
		v1.POST("/sales/:id/nft/withdraw", auth, handler.WithdrawFailedSaleNft)
		v1.POST("/sales/:id/fractions-kept/withdraw", auth, handler.WithdrawFractionsKept)
		v1.POST("/fractions/transfers", auth, handler.TransferFractions)

		// Buyouts
		v1.GET("/buyouts/:id", handler.GetBuyout)
		v1.POST("/sales/:id/buyouts", auth, handler.RequestBuyout)
		v1.POST("/sales/:id/buyouts/unsupervised", auth, handler.BuyoutUnsupervised)
		v1.PUT("/buyouts/:id/params", auth, handler.SetBuyoutParams)
		v1.POST("/buyouts/:id/execute", auth, handler.ExecuteBuyout)

		// Escrows
		v1.GET("/escrows/:address", handler.GetEscrow)
		v1.POST("/escrows/:address/release", auth, handler.Release)
		v1.POST("/escrows/:address/release-seller", auth, handler.ReleaseSeller)

		// Payment token accounts
		v1.GET("/value-tokens/:token/accounts/:holder", handler.GetValueAccount)
		v1.POST("/value-tokens/:token/approvals", auth, handler.ApproveValue)

		// Notifications journal (public read access)
		v1.GET("/notifications", handler.GetNotifications)

		// Admin endpoints, gated by capability in the protocol
		v1.GET("/admin/params", handler.GetProtocolParams)
		v1.PUT("/admin/params", auth, handler.UpdateProtocolParams)
		v1.POST("/admin/allow-list", auth, handler.UpdateAllowList)
		v1.POST("/admin/roles", auth, handler.UpdateRole)
		v1.POST("/admin/faucet/value", auth, handler.MintValue)
		v1.POST("/admin/faucet/assets", auth, handler.MintAsset)
	}
}
