package workflow

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/pos_backend/models"
	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// PayDebt records a payment against a debt transaction.
func (w *TransactionWorkflow) PayDebt(ctx context.Context, actor models.Actor, input models.PaymentInput) (*models.PaymentResult, error) {
	return w.recordPayment(ctx, actor, input, models.PaymentMethodDebt)
}

// PayInstallment records a payment against an installment transaction.
func (w *TransactionWorkflow) PayInstallment(ctx context.Context, actor models.Actor, input models.PaymentInput) (*models.PaymentResult, error) {
	return w.recordPayment(ctx, actor, input, models.PaymentMethodInstallment)
}

func (w *TransactionWorkflow) recordPayment(ctx context.Context, actor models.Actor, input models.PaymentInput, flow models.PaymentMethod) (result *models.PaymentResult, err error) {
	ctx, span := w.startSpan(ctx, "RecordPayment",
		attribute.Int("transaction.id", input.TransactionId),
		attribute.String("payment.flow", string(flow)),
	)
	defer func() { endSpan(span, err) }()

	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if !input.Amount.IsPositive() {
		return nil, models.ErrInvalidAmount
	}

	unlock, err := w.locker.Lock(ctx, input.TransactionId)
	if err != nil {
		w.logUnexpected(ctx, "recordPayment", input.TransactionId, err)
		return nil, err
	}
	defer unlock()

	tx, err := w.transactions.FindById(ctx, input.TransactionId)
	if err != nil {
		if isNotFound(err) {
			return nil, models.ErrNotFound.Withf("transaction %d not found", input.TransactionId)
		}
		w.logUnexpected(ctx, "recordPayment", input.TransactionId, err)
		return nil, err
	}

	// a deferred transaction on the other endpoint is a wrong flow whatever
	// its status; a settled debt has reverted to cash and reads as closed.
	flowErr := checkPaymentFlow(tx, flow)
	if errors.Is(flowErr, models.ErrWrongPaymentFlow) {
		return nil, flowErr
	}
	if tx.Status != models.TransactionStatusUnpaid {
		return nil, models.ErrTransactionClosed.Withf("transaction %s is %s and does not accept payments", tx.TransactionNumber, tx.Status)
	}
	if flowErr != nil {
		return nil, flowErr
	}

	var pref *models.Preference
	if flow == models.PaymentMethodInstallment {
		pref, err = w.preferences.FindOne(ctx)
		if err != nil {
			w.logUnexpected(ctx, "recordPayment", "preference", err)
			return nil, err
		}
	}

	outcome, err := models.RecordPayment(tx, input.Amount, input.PaymentDate, w.now(), actor.Id)
	if err != nil {
		return nil, err
	}

	settlement := models.EvaluateSettlement(*tx, outcome.PaidTotal, *outcome.Record.PaymentDate, pref)
	if err := models.ValidateTransition(tx.Status, settlement.Status); err != nil {
		return nil, err
	}
	tx.ApplySettlement(settlement)

	if err := w.transactions.Save(ctx, tx); err != nil {
		w.logUnexpected(ctx, "recordPayment", tx.TransactionNumber, err)
		return nil, err
	}

	if settlement.Settled {
		w.publishSettlement(ctx, tx, *outcome.Record.PaymentDate, actor.Id)
	}

	return &models.PaymentResult{
		Transaction: tx,
		Status:      tx.Status,
		Applied:     outcome.Applied,
		Change:      outcome.Change,
	}, nil
}

// checkPaymentFlow rejects a payment endpoint used against a transaction of
// another method. A deferred method on the wrong endpoint is a wrong flow;
// an immediate method never takes payments at all.
func checkPaymentFlow(tx *models.Transaction, flow models.PaymentMethod) error {
	if tx.PaymentMethod == flow {
		return nil
	}
	if tx.PaymentMethod.IsDeferred() {
		return models.ErrWrongPaymentFlow.Withf("transaction %s is paid by %s, not %s", tx.TransactionNumber, tx.PaymentMethod, flow)
	}
	return models.ErrMethodMismatch.Withf("transaction %s is paid by %s and takes no %s payments", tx.TransactionNumber, tx.PaymentMethod, flow)
}

// publishSettlement is best effort; the payment is already committed.
func (w *TransactionWorkflow) publishSettlement(ctx context.Context, tx *models.Transaction, settledAt time.Time, actorId int) {
	correlationId, _ := utils.GetCorrelationIdFromContext(ctx)
	event := SettlementEvent{
		CorrelationId:     correlationId,
		TransactionId:     tx.ID,
		TransactionNumber: tx.TransactionNumber,
		TransactionType:   tx.TransactionType,
		Status:            tx.Status,
		PaymentMethod:     tx.PaymentMethod,
		TotalPrice:        tx.TotalPrice,
		PaidTotal:         tx.PaidTotal,
		SettledAt:         settledAt,
		SettledById:       actorId,
	}
	if err := w.publisher.PublishSettlement(ctx, event); err != nil {
		w.logger.WithFields(logrus.Fields{
			"field":          "publishSettlement",
			"correlation_id": correlationId,
			"transaction_id": tx.ID,
		}).Warn("failed to publish settlement event: " + err.Error())
	}
}
