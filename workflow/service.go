package workflow

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/pos_backend/models"
)

// Service is the surface the REST controllers and the GraphQL resolvers call.
type Service interface {
	CreateSale(ctx context.Context, actor models.Actor, input models.NewTradeTransaction) (*models.Transaction, error)
	CreatePurchase(ctx context.Context, actor models.Actor, input models.NewTradeTransaction) (*models.Transaction, error)
	CreateExpense(ctx context.Context, actor models.Actor, input models.NewCashEntry) (*models.Transaction, error)
	CreateIncome(ctx context.Context, actor models.Actor, input models.NewCashEntry) (*models.Transaction, error)
	PayDebt(ctx context.Context, actor models.Actor, input models.PaymentInput) (*models.PaymentResult, error)
	PayInstallment(ctx context.Context, actor models.Actor, input models.PaymentInput) (*models.PaymentResult, error)
	GetDraft(ctx context.Context, actor models.Actor, id int) (*models.TransactionDetail, error)
	CompleteDraft(ctx context.Context, actor models.Actor, id int) (*models.Transaction, error)
	CancelTransaction(ctx context.Context, actor models.Actor, id int) (*models.Transaction, error)
	GetTransaction(ctx context.Context, actor models.Actor, id int) (*models.TransactionDetail, error)
	PaymentHistory(ctx context.Context, actor models.Actor, id int) ([]models.PaymentRecord, error)
	OutstandingBalances(ctx context.Context, actor models.Actor, asOf time.Time) ([]models.OutstandingBalance, error)
	GetPreference(ctx context.Context) (*models.Preference, error)
	UpdatePreference(ctx context.Context, actor models.Actor, input models.NewPreference) (*models.Preference, error)
}

var _ Service = (*TransactionWorkflow)(nil)
