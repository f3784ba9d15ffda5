package workflow

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/pos_backend/models"
	"go.opentelemetry.io/otel/attribute"
)

func isNotFound(err error) bool {
	return errors.Is(err, models.ErrNotFound)
}

// GetDraft returns a held transaction with its references resolved.
// Any other status is reported as not found.
func (w *TransactionWorkflow) GetDraft(ctx context.Context, actor models.Actor, id int) (detail *models.TransactionDetail, err error) {
	ctx, span := w.startSpan(ctx, "GetDraft", attribute.Int("transaction.id", id))
	defer func() { endSpan(span, err) }()

	if err := actor.Validate(); err != nil {
		return nil, err
	}
	tx, err := w.transactions.FindOne(ctx, models.TransactionFilter{ID: id, Status: models.TransactionStatusPendingDraft})
	if err != nil {
		if isNotFound(err) {
			return nil, models.ErrNotFound.Withf("draft %d not found", id)
		}
		w.logUnexpected(ctx, "GetDraft", id, err)
		return nil, err
	}
	return w.resolveDetail(ctx, tx)
}

// CompleteDraft releases a held transaction: deferred methods become unpaid,
// immediate methods become paid in full.
func (w *TransactionWorkflow) CompleteDraft(ctx context.Context, actor models.Actor, id int) (tx *models.Transaction, err error) {
	ctx, span := w.startSpan(ctx, "CompleteDraft", attribute.Int("transaction.id", id))
	defer func() { endSpan(span, err) }()

	if err := actor.Validate(); err != nil {
		return nil, err
	}

	unlock, err := w.locker.Lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	tx, err = w.transactions.FindOne(ctx, models.TransactionFilter{ID: id, Status: models.TransactionStatusPendingDraft})
	if err != nil {
		if isNotFound(err) {
			return nil, models.ErrNotFound.Withf("draft %d not found", id)
		}
		w.logUnexpected(ctx, "CompleteDraft", id, err)
		return nil, err
	}

	target := models.TransactionStatusPaid
	if tx.PaymentMethod.IsDeferred() {
		target = models.TransactionStatusUnpaid
	}
	if err := models.ValidateTransition(tx.Status, target); err != nil {
		return nil, err
	}
	tx.Status = target
	if target == models.TransactionStatusPaid {
		tx.PaidTotal = tx.TotalPrice
	} else {
		tx.PaidTotal = tx.ComputePaidTotal()
	}

	if err := w.transactions.Save(ctx, tx); err != nil {
		w.logUnexpected(ctx, "CompleteDraft", id, err)
		return nil, err
	}
	return tx, nil
}

// CancelTransaction is restricted to admins. The payment schedule is kept.
func (w *TransactionWorkflow) CancelTransaction(ctx context.Context, actor models.Actor, id int) (tx *models.Transaction, err error) {
	ctx, span := w.startSpan(ctx, "CancelTransaction", attribute.Int("transaction.id", id))
	defer func() { endSpan(span, err) }()

	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, models.ErrForbidden.Withf("only admins can cancel transactions")
	}

	unlock, err := w.locker.Lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	tx, err = w.transactions.FindById(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, models.ErrNotFound.Withf("transaction %d not found", id)
		}
		w.logUnexpected(ctx, "CancelTransaction", id, err)
		return nil, err
	}
	if err := models.ValidateTransition(tx.Status, models.TransactionStatusCancelled); err != nil {
		return nil, err
	}

	now := w.now()
	tx.Status = models.TransactionStatusCancelled
	tx.CancelledAt = &now
	if err := w.transactions.Save(ctx, tx); err != nil {
		w.logUnexpected(ctx, "CancelTransaction", id, err)
		return nil, err
	}
	return tx, nil
}

func (w *TransactionWorkflow) GetTransaction(ctx context.Context, actor models.Actor, id int) (detail *models.TransactionDetail, err error) {
	ctx, span := w.startSpan(ctx, "GetTransaction", attribute.Int("transaction.id", id))
	defer func() { endSpan(span, err) }()

	if err := actor.Validate(); err != nil {
		return nil, err
	}
	tx, err := w.transactions.FindById(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, models.ErrNotFound.Withf("transaction %d not found", id)
		}
		w.logUnexpected(ctx, "GetTransaction", id, err)
		return nil, err
	}
	return w.resolveDetail(ctx, tx)
}

// PaymentHistory returns the schedule ordered by sequence.
func (w *TransactionWorkflow) PaymentHistory(ctx context.Context, actor models.Actor, id int) (records []models.PaymentRecord, err error) {
	ctx, span := w.startSpan(ctx, "PaymentHistory", attribute.Int("transaction.id", id))
	defer func() { endSpan(span, err) }()

	if err := actor.Validate(); err != nil {
		return nil, err
	}
	tx, err := w.transactions.FindById(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, models.ErrNotFound.Withf("transaction %d not found", id)
		}
		w.logUnexpected(ctx, "PaymentHistory", id, err)
		return nil, err
	}
	if tx.PaymentSchedule == nil {
		return []models.PaymentRecord{}, nil
	}
	return tx.PaymentSchedule, nil
}

// OutstandingBalances lists unpaid debt and installment transactions created
// up to asOf that still have a balance.
func (w *TransactionWorkflow) OutstandingBalances(ctx context.Context, actor models.Actor, asOf time.Time) (rows []models.OutstandingBalance, err error) {
	ctx, span := w.startSpan(ctx, "OutstandingBalances")
	defer func() { endSpan(span, err) }()

	if err := actor.Validate(); err != nil {
		return nil, err
	}
	list, err := w.transactions.List(ctx, models.TransactionFilter{
		Statuses:       []models.TransactionStatus{models.TransactionStatusUnpaid},
		PaymentMethods: []models.PaymentMethod{models.PaymentMethodDebt, models.PaymentMethodInstallment},
		CreatedBefore:  &asOf,
	})
	if err != nil {
		w.logUnexpected(ctx, "OutstandingBalances", asOf, err)
		return nil, err
	}

	rows = make([]models.OutstandingBalance, 0, len(list))
	for _, tx := range list {
		if !tx.RemainingBalance().IsPositive() {
			continue
		}
		rows = append(rows, models.NewOutstandingBalance(*tx, asOf))
	}
	return rows, nil
}

// resolveDetail attaches names for the parties and products of tx.
func (w *TransactionWorkflow) resolveDetail(ctx context.Context, tx *models.Transaction) (*models.TransactionDetail, error) {
	staff, err := w.references.Summaries(ctx, models.ReferenceKindStaff, []int{tx.CashierId, tx.DeliveryStaffId, tx.UnloadingStaffId})
	if err != nil {
		return nil, err
	}
	customers, err := w.references.Summaries(ctx, models.ReferenceKindCustomer, []int{tx.CustomerId})
	if err != nil {
		return nil, err
	}
	suppliers, err := w.references.Summaries(ctx, models.ReferenceKindSupplier, []int{tx.SupplierId})
	if err != nil {
		return nil, err
	}
	productIds := make([]int, 0, len(tx.LineItems))
	for _, item := range tx.LineItems {
		productIds = append(productIds, item.ProductId)
	}
	products, err := w.references.Summaries(ctx, models.ReferenceKindProduct, productIds)
	if err != nil {
		return nil, err
	}

	detail := &models.TransactionDetail{
		Transaction:    tx,
		Cashier:        referenceOf(tx.CashierId, staff),
		Customer:       referenceOf(tx.CustomerId, customers),
		Supplier:       referenceOf(tx.SupplierId, suppliers),
		DeliveryStaff:  referenceOf(tx.DeliveryStaffId, staff),
		UnloadingStaff: referenceOf(tx.UnloadingStaffId, staff),
	}
	for _, item := range tx.LineItems {
		detail.LineItemDetails = append(detail.LineItemDetails, models.LineItemDetail{
			LineItem: item,
			Product:  referenceOf(item.ProductId, products),
		})
	}
	return detail, nil
}

// referenceOf falls back to an id-only reference when the row is gone.
func referenceOf(id int, found map[int]models.RefSummary) models.Reference[models.RefSummary] {
	if summary, ok := found[id]; ok && id > 0 {
		return models.Resolved(id, summary)
	}
	return models.RefId[models.RefSummary](id)
}
