package workflow

import (
	"context"
	"errors"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/pos_backend/config"
	"bitbucket.org/mmdatafocus/pos_backend/models"
	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const moduleName = "TransactionWorkflow"

const createAttempts = 2

type Dependencies struct {
	Transactions TransactionStore
	Preferences  PreferenceStore
	References   ReferenceResolver
	Numbers      NumberGenerator
	Locker       Locker
	Publisher    SettlementPublisher
	Logger       logrus.FieldLogger
	Tracer       trace.Tracer
	Now          func() time.Time
}

// TransactionWorkflow owns the transaction lifecycle: creation, payment
// recording, draft completion and cancellation.
type TransactionWorkflow struct {
	transactions TransactionStore
	preferences  PreferenceStore
	references   ReferenceResolver
	numbers      NumberGenerator
	locker       Locker
	publisher    SettlementPublisher
	logger       logrus.FieldLogger
	tracer       trace.Tracer
	now          func() time.Time
}

func NewTransactionWorkflow(deps Dependencies) *TransactionWorkflow {
	w := &TransactionWorkflow{
		transactions: deps.Transactions,
		preferences:  deps.Preferences,
		references:   deps.References,
		numbers:      deps.Numbers,
		locker:       deps.Locker,
		publisher:    deps.Publisher,
		logger:       deps.Logger,
		tracer:       deps.Tracer,
		now:          deps.Now,
	}
	if w.logger == nil {
		w.logger = logrus.New()
	}
	if w.locker == nil {
		w.locker = NewKeyedMutex()
	}
	if w.publisher == nil {
		w.publisher = NewLogPublisher(w.logger)
	}
	if w.tracer == nil {
		w.tracer = otel.Tracer("pos-backend")
	}
	if w.now == nil {
		w.now = time.Now
	}
	return w
}

func (w *TransactionWorkflow) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return w.tracer.Start(ctx, moduleName+"."+name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// logUnexpected logs errors that are not part of the expected taxonomy.
func (w *TransactionWorkflow) logUnexpected(ctx context.Context, funcName string, data any, err error) {
	if appErr, ok := models.AsAppError(err); ok && appErr.StatusCode < 500 {
		return
	}
	logger := w.logger
	if correlationId, ok := utils.GetCorrelationIdFromContext(ctx); ok {
		logger = logger.WithField("correlation_id", correlationId)
	}
	config.LogError(logger, moduleName, funcName, "unexpected error", data, err)
}

func (w *TransactionWorkflow) CreateSale(ctx context.Context, actor models.Actor, input models.NewTradeTransaction) (*models.Transaction, error) {
	return w.createTrade(ctx, actor, models.TransactionTypeSale, input)
}

func (w *TransactionWorkflow) CreatePurchase(ctx context.Context, actor models.Actor, input models.NewTradeTransaction) (*models.Transaction, error) {
	return w.createTrade(ctx, actor, models.TransactionTypePurchase, input)
}

func (w *TransactionWorkflow) CreateExpense(ctx context.Context, actor models.Actor, input models.NewCashEntry) (*models.Transaction, error) {
	return w.createCashEntry(ctx, actor, models.TransactionTypeExpense, input)
}

func (w *TransactionWorkflow) CreateIncome(ctx context.Context, actor models.Actor, input models.NewCashEntry) (*models.Transaction, error) {
	return w.createCashEntry(ctx, actor, models.TransactionTypeIncome, input)
}

func (w *TransactionWorkflow) createTrade(ctx context.Context, actor models.Actor, txType models.TransactionType, input models.NewTradeTransaction) (tx *models.Transaction, err error) {
	ctx, span := w.startSpan(ctx, "Create",
		attribute.String("transaction.type", string(txType)),
		attribute.String("transaction.payment_method", string(input.PaymentMethod)),
	)
	defer func() { endSpan(span, err) }()

	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if err := input.Validate(txType); err != nil {
		return nil, err
	}
	if err := w.checkReferences(ctx, txType, input); err != nil {
		return nil, err
	}

	now := w.now()
	tx = &models.Transaction{
		TransactionType:  txType,
		PaymentMethod:    input.PaymentMethod,
		CashierId:        actor.Id,
		CustomerId:       input.CustomerId,
		SupplierId:       input.SupplierId,
		DeliveryStaffId:  input.DeliveryStaffId,
		UnloadingStaffId: input.UnloadingStaffId,
		Description:      strings.TrimSpace(input.Description),
		Version:          1,
		CreatedAt:        now,
	}
	for _, item := range input.LineItems {
		tx.LineItems = append(tx.LineItems, models.LineItem{
			ProductId:  item.ProductId,
			UnitId:     item.UnitId,
			CategoryId: item.CategoryId,
			BrandId:    item.BrandId,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
		})
	}
	tx.TotalPrice = models.ComputeLineTotals(tx.LineItems)

	if input.PaymentMethod.IsDeferred() {
		tx.Status = models.TransactionStatusUnpaid
		tx.DownPayment = input.DownPayment
		if len(input.InstallmentPlan) > 0 {
			tx.PaymentSchedule = models.PlannedSchedule(input.InstallmentPlan)
		}
		tx.PaidTotal = tx.ComputePaidTotal()
	} else {
		tx.Status = models.TransactionStatusPaid
		tx.DownPayment = decimal.Zero
		tx.PaidTotal = tx.TotalPrice
	}
	if input.Hold {
		tx.Status = models.TransactionStatusPendingDraft
		tx.PaidTotal = tx.ComputePaidTotal()
	}

	if err := w.createNumbered(ctx, "createTrade", tx); err != nil {
		return nil, err
	}
	return tx, nil
}

func (w *TransactionWorkflow) createCashEntry(ctx context.Context, actor models.Actor, txType models.TransactionType, input models.NewCashEntry) (tx *models.Transaction, err error) {
	ctx, span := w.startSpan(ctx, "Create", attribute.String("transaction.type", string(txType)))
	defer func() { endSpan(span, err) }()

	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	now := w.now()
	tx = &models.Transaction{
		TransactionType: txType,
		PaymentMethod:   models.PaymentMethodCash,
		Status:          models.TransactionStatusPaid,
		TotalPrice:      input.TotalPrice,
		DownPayment:     decimal.Zero,
		PaidTotal:       input.TotalPrice,
		CashierId:       actor.Id,
		Description:     strings.TrimSpace(input.Description),
		Version:         1,
		CreatedAt:       now,
	}
	if err := w.createNumbered(ctx, "createCashEntry", tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// createNumbered draws a transaction number and inserts tx. Two writers can
// draw the same number (a cold redis counter, or the database count
// fallback); the unique index rejects the loser with ErrConflict and it
// draws again once.
func (w *TransactionWorkflow) createNumbered(ctx context.Context, funcName string, tx *models.Transaction) error {
	var err error
	for attempt := 1; attempt <= createAttempts; attempt++ {
		var number string
		number, err = w.numbers.Next(ctx, tx.TransactionType, tx.CreatedAt)
		if err != nil {
			w.logUnexpected(ctx, funcName, tx.TransactionType, err)
			return err
		}
		tx.TransactionNumber = number

		err = w.transactions.Create(ctx, tx)
		if err == nil {
			return nil
		}
		if !errors.Is(err, models.ErrConflict) {
			break
		}
		w.logger.WithFields(logrus.Fields{
			"field":              funcName,
			"transaction_number": number,
			"attempt":            attempt,
		}).Warn("transaction number already taken")
	}
	w.logUnexpected(ctx, funcName, tx.TransactionNumber, err)
	return err
}

// checkReferences fails with ErrInvalidReference naming the first kind that
// has unknown or inactive ids.
func (w *TransactionWorkflow) checkReferences(ctx context.Context, txType models.TransactionType, input models.NewTradeTransaction) error {
	wanted := map[models.ReferenceKind][]int{}
	switch txType {
	case models.TransactionTypeSale:
		wanted[models.ReferenceKindCustomer] = []int{input.CustomerId}
	case models.TransactionTypePurchase:
		wanted[models.ReferenceKindSupplier] = []int{input.SupplierId}
	}
	for _, staffId := range []int{input.DeliveryStaffId, input.UnloadingStaffId} {
		if staffId > 0 {
			wanted[models.ReferenceKindStaff] = append(wanted[models.ReferenceKindStaff], staffId)
		}
	}
	for _, item := range input.LineItems {
		wanted[models.ReferenceKindProduct] = append(wanted[models.ReferenceKindProduct], item.ProductId)
		if txType == models.TransactionTypePurchase {
			wanted[models.ReferenceKindUnit] = append(wanted[models.ReferenceKindUnit], item.UnitId)
			wanted[models.ReferenceKindCategory] = append(wanted[models.ReferenceKindCategory], item.CategoryId)
			wanted[models.ReferenceKindBrand] = append(wanted[models.ReferenceKindBrand], item.BrandId)
		}
	}

	// fixed order keeps the error message deterministic
	for _, kind := range []models.ReferenceKind{
		models.ReferenceKindCustomer, models.ReferenceKindSupplier, models.ReferenceKindStaff,
		models.ReferenceKindProduct, models.ReferenceKindUnit, models.ReferenceKindCategory, models.ReferenceKindBrand,
	} {
		ids, ok := wanted[kind]
		if !ok {
			continue
		}
		missing, err := w.references.Missing(ctx, kind, ids)
		if err != nil {
			w.logUnexpected(ctx, "checkReferences", kind, err)
			return err
		}
		if len(missing) > 0 {
			return models.ErrInvalidReference.Withf("%s %v not found", kind, missing)
		}
	}
	return nil
}
