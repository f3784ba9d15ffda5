package graph

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/pos_backend/directives"
	"bitbucket.org/mmdatafocus/pos_backend/models"
)

func (r *mutationResolver) CreateSale(ctx context.Context, input models.NewTradeTransaction) (*models.Transaction, error) {
	return r.Service.CreateSale(ctx, directives.Actor(ctx), input)
}

func (r *mutationResolver) CreatePurchase(ctx context.Context, input models.NewTradeTransaction) (*models.Transaction, error) {
	return r.Service.CreatePurchase(ctx, directives.Actor(ctx), input)
}

func (r *mutationResolver) CreateExpense(ctx context.Context, input models.NewCashEntry) (*models.Transaction, error) {
	return r.Service.CreateExpense(ctx, directives.Actor(ctx), input)
}

func (r *mutationResolver) CreateIncome(ctx context.Context, input models.NewCashEntry) (*models.Transaction, error) {
	return r.Service.CreateIncome(ctx, directives.Actor(ctx), input)
}

func (r *mutationResolver) PayDebt(ctx context.Context, transactionID int, input models.PaymentInput) (*models.PaymentResult, error) {
	input.TransactionId = transactionID
	return r.Service.PayDebt(ctx, directives.Actor(ctx), input)
}

func (r *mutationResolver) PayInstallment(ctx context.Context, transactionID int, input models.PaymentInput) (*models.PaymentResult, error) {
	input.TransactionId = transactionID
	return r.Service.PayInstallment(ctx, directives.Actor(ctx), input)
}

func (r *mutationResolver) CompleteDraft(ctx context.Context, id int) (*models.Transaction, error) {
	return r.Service.CompleteDraft(ctx, directives.Actor(ctx), id)
}

func (r *mutationResolver) CancelTransaction(ctx context.Context, id int) (*models.Transaction, error) {
	return r.Service.CancelTransaction(ctx, directives.Actor(ctx), id)
}

func (r *mutationResolver) UpdatePreference(ctx context.Context, input models.NewPreference) (*models.Preference, error) {
	return r.Service.UpdatePreference(ctx, directives.Actor(ctx), input)
}

func (r *queryResolver) Transaction(ctx context.Context, id int) (*models.Transaction, error) {
	detail, err := r.Service.GetTransaction(ctx, directives.Actor(ctx), id)
	if err != nil {
		return nil, err
	}
	primeDetail(ctx, detail)
	return detail.Transaction, nil
}

func (r *queryResolver) Draft(ctx context.Context, id int) (*models.Transaction, error) {
	detail, err := r.Service.GetDraft(ctx, directives.Actor(ctx), id)
	if err != nil {
		return nil, err
	}
	primeDetail(ctx, detail)
	return detail.Transaction, nil
}

func (r *queryResolver) PaymentHistory(ctx context.Context, transactionID int) ([]models.PaymentRecord, error) {
	return r.Service.PaymentHistory(ctx, directives.Actor(ctx), transactionID)
}

func (r *queryResolver) OutstandingBalances(ctx context.Context, asOf *time.Time) ([]models.OutstandingBalance, error) {
	at := time.Now()
	if asOf != nil {
		at = *asOf
	}
	return r.Service.OutstandingBalances(ctx, directives.Actor(ctx), at)
}

func (r *queryResolver) Preference(ctx context.Context) (*models.Preference, error) {
	return r.Service.GetPreference(ctx)
}
