package controllers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"bitbucket.org/mmdatafocus/pos_backend/config"
	"bitbucket.org/mmdatafocus/pos_backend/middlewares"
	"bitbucket.org/mmdatafocus/pos_backend/models"
	"bitbucket.org/mmdatafocus/pos_backend/reports"
	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"bitbucket.org/mmdatafocus/pos_backend/workflow"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type TransactionService = workflow.Service

type TransactionController struct {
	service TransactionService
	logger  logrus.FieldLogger
}

func NewTransactionController(service TransactionService, logger logrus.FieldLogger) *TransactionController {
	return &TransactionController{service: service, logger: logger}
}

// respondError maps AppErrors to their status; anything else is a logged 500.
func (ctl *TransactionController) respondError(c *gin.Context, funcName string, err error) {
	if appErr, ok := models.AsAppError(err); ok {
		utils.Error(c, appErr.StatusCode, appErr.Code, appErr.Message, nil)
		return
	}
	config.LogError(ctl.logger, "TransactionController", funcName, c.Request.URL.Path, nil, err)
	utils.Error(c, http.StatusInternalServerError, models.ErrPersistence.Code, "internal server error", nil)
}

func pathId(c *gin.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, models.ErrValidation.Withf("invalid id %q", c.Param("id"))
	}
	return id, nil
}

func bindJSON(c *gin.Context, dest any) error {
	if err := c.ShouldBindJSON(dest); err != nil {
		return models.ErrValidation.Withf("invalid request body: %v", err)
	}
	return nil
}

func actorOf(c *gin.Context) models.Actor {
	actor, _ := middlewares.ActorFromContext(c)
	return actor
}

func (ctl *TransactionController) CreateSale(c *gin.Context) {
	var input models.NewTradeTransaction
	if err := bindJSON(c, &input); err != nil {
		ctl.respondError(c, "CreateSale", err)
		return
	}
	tx, err := ctl.service.CreateSale(c.Request.Context(), actorOf(c), input)
	if err != nil {
		ctl.respondError(c, "CreateSale", err)
		return
	}
	utils.SuccessWithStatus(c, http.StatusCreated, "sale created", tx)
}

func (ctl *TransactionController) CreatePurchase(c *gin.Context) {
	var input models.NewTradeTransaction
	if err := bindJSON(c, &input); err != nil {
		ctl.respondError(c, "CreatePurchase", err)
		return
	}
	tx, err := ctl.service.CreatePurchase(c.Request.Context(), actorOf(c), input)
	if err != nil {
		ctl.respondError(c, "CreatePurchase", err)
		return
	}
	utils.SuccessWithStatus(c, http.StatusCreated, "purchase created", tx)
}

func (ctl *TransactionController) CreateExpense(c *gin.Context) {
	var input models.NewCashEntry
	if err := bindJSON(c, &input); err != nil {
		ctl.respondError(c, "CreateExpense", err)
		return
	}
	tx, err := ctl.service.CreateExpense(c.Request.Context(), actorOf(c), input)
	if err != nil {
		ctl.respondError(c, "CreateExpense", err)
		return
	}
	utils.SuccessWithStatus(c, http.StatusCreated, "expense created", tx)
}

func (ctl *TransactionController) CreateIncome(c *gin.Context) {
	var input models.NewCashEntry
	if err := bindJSON(c, &input); err != nil {
		ctl.respondError(c, "CreateIncome", err)
		return
	}
	tx, err := ctl.service.CreateIncome(c.Request.Context(), actorOf(c), input)
	if err != nil {
		ctl.respondError(c, "CreateIncome", err)
		return
	}
	utils.SuccessWithStatus(c, http.StatusCreated, "income created", tx)
}

// POST /api/transactions/:id/debt-payments
func (ctl *TransactionController) PayDebt(c *gin.Context) {
	ctl.pay(c, "PayDebt", ctl.service.PayDebt)
}

// POST /api/transactions/:id/installment-payments
func (ctl *TransactionController) PayInstallment(c *gin.Context) {
	ctl.pay(c, "PayInstallment", ctl.service.PayInstallment)
}

type payFunc func(ctx context.Context, actor models.Actor, input models.PaymentInput) (*models.PaymentResult, error)

func (ctl *TransactionController) pay(c *gin.Context, funcName string, fn payFunc) {
	id, err := pathId(c)
	if err != nil {
		ctl.respondError(c, funcName, err)
		return
	}
	var input models.PaymentInput
	if err := bindJSON(c, &input); err != nil {
		ctl.respondError(c, funcName, err)
		return
	}
	input.TransactionId = id

	result, err := fn(c.Request.Context(), actorOf(c), input)
	if err != nil {
		ctl.respondError(c, funcName, err)
		return
	}
	utils.Success(c, "payment recorded", result)
}

func (ctl *TransactionController) GetDraft(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		ctl.respondError(c, "GetDraft", err)
		return
	}
	detail, err := ctl.service.GetDraft(c.Request.Context(), actorOf(c), id)
	if err != nil {
		ctl.respondError(c, "GetDraft", err)
		return
	}
	utils.Success(c, "ok", detail)
}

func (ctl *TransactionController) CompleteDraft(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		ctl.respondError(c, "CompleteDraft", err)
		return
	}
	tx, err := ctl.service.CompleteDraft(c.Request.Context(), actorOf(c), id)
	if err != nil {
		ctl.respondError(c, "CompleteDraft", err)
		return
	}
	utils.Success(c, "draft completed", tx)
}

func (ctl *TransactionController) Cancel(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		ctl.respondError(c, "Cancel", err)
		return
	}
	tx, err := ctl.service.CancelTransaction(c.Request.Context(), actorOf(c), id)
	if err != nil {
		ctl.respondError(c, "Cancel", err)
		return
	}
	utils.Success(c, "transaction cancelled", tx)
}

func (ctl *TransactionController) GetTransaction(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		ctl.respondError(c, "GetTransaction", err)
		return
	}
	detail, err := ctl.service.GetTransaction(c.Request.Context(), actorOf(c), id)
	if err != nil {
		ctl.respondError(c, "GetTransaction", err)
		return
	}
	utils.Success(c, "ok", detail)
}

func (ctl *TransactionController) PaymentHistory(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		ctl.respondError(c, "PaymentHistory", err)
		return
	}
	records, err := ctl.service.PaymentHistory(c.Request.Context(), actorOf(c), id)
	if err != nil {
		ctl.respondError(c, "PaymentHistory", err)
		return
	}
	utils.Success(c, "ok", records)
}

func (ctl *TransactionController) GetPreference(c *gin.Context) {
	pref, err := ctl.service.GetPreference(c.Request.Context())
	if err != nil {
		ctl.respondError(c, "GetPreference", err)
		return
	}
	utils.Success(c, "ok", pref)
}

func (ctl *TransactionController) UpdatePreference(c *gin.Context) {
	var input models.NewPreference
	if err := bindJSON(c, &input); err != nil {
		ctl.respondError(c, "UpdatePreference", err)
		return
	}
	pref, err := ctl.service.UpdatePreference(c.Request.Context(), actorOf(c), input)
	if err != nil {
		ctl.respondError(c, "UpdatePreference", err)
		return
	}
	utils.Success(c, "preference saved", pref)
}

// GET /api/reports/outstanding?as_of=2024-02-01&format=json
// The default format is an xlsx download.
func (ctl *TransactionController) OutstandingReport(c *gin.Context) {
	asOf := time.Now()
	if v := c.Query("as_of"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			ctl.respondError(c, "OutstandingReport", models.ErrValidation.Withf("as_of must be YYYY-MM-DD"))
			return
		}
		// include the whole day
		asOf = d.Add(24*time.Hour - time.Nanosecond)
	}

	rows, err := ctl.service.OutstandingBalances(c.Request.Context(), actorOf(c), asOf)
	if err != nil {
		ctl.respondError(c, "OutstandingReport", err)
		return
	}

	if c.Query("format") == "json" {
		utils.Success(c, "ok", rows)
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=outstanding-"+asOf.Format("20060102")+".xlsx")
	c.Status(http.StatusOK)
	if err := reports.WriteOutstandingReport(c.Writer, rows); err != nil {
		config.LogError(ctl.logger, "TransactionController", "OutstandingReport", "write xlsx", nil, err)
	}
}
