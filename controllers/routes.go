package controllers

import (
	"context"
	"net/http"
	"time"

	"bitbucket.org/mmdatafocus/pos_backend/middlewares"
	"bitbucket.org/mmdatafocus/pos_backend/models"
	"github.com/gin-gonic/gin"
)

// HealthCheck reports whether the backing services are reachable.
type HealthCheck func(ctx context.Context) error

func HealthHandler(check HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		if err := check(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func RegisterRoutes(r *gin.Engine, ctl *TransactionController, apiSecret string, health HealthCheck) {
	r.GET("/healthz", HealthHandler(health))

	api := r.Group("/api", middlewares.AuthMiddleware(apiSecret), middlewares.RequireActor())

	tx := api.Group("/transactions")
	tx.POST("/sales", ctl.CreateSale)
	tx.POST("/purchases", ctl.CreatePurchase)
	tx.POST("/expenses", ctl.CreateExpense)
	tx.POST("/incomes", ctl.CreateIncome)
	tx.GET("/drafts/:id", ctl.GetDraft)
	tx.POST("/drafts/:id/complete", ctl.CompleteDraft)
	tx.GET("/:id", ctl.GetTransaction)
	tx.GET("/:id/payments", ctl.PaymentHistory)
	tx.POST("/:id/debt-payments", ctl.PayDebt)
	tx.POST("/:id/installment-payments", ctl.PayInstallment)
	tx.POST("/:id/cancel", middlewares.RequireRole(models.UserRoleAdmin), ctl.Cancel)

	api.GET("/preferences", ctl.GetPreference)
	api.PUT("/preferences", middlewares.RequireRole(models.UserRoleAdmin), ctl.UpdatePreference)

	api.GET("/reports/outstanding", ctl.OutstandingReport)
}
