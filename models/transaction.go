package models

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

type Transaction struct {
	ID                int               `gorm:"primary_key" json:"id"`
	TransactionNumber string            `gorm:"size:64;uniqueIndex;not null" json:"transaction_number"`
	TransactionType   TransactionType   `gorm:"type:enum('sale','purchase','expense','income');not null;index" json:"transaction_type"`
	PaymentMethod     PaymentMethod     `gorm:"type:enum('cash','card','bank_transfer','installment','debt');not null;index" json:"payment_method"`
	Status            TransactionStatus `gorm:"type:enum('paid','unpaid','pending_draft','paid_early','cancelled');not null;index" json:"status"`
	TotalPrice        decimal.Decimal   `gorm:"type:decimal(20,4);default:0" json:"total_price"`
	DownPayment       decimal.Decimal   `gorm:"type:decimal(20,4);default:0" json:"down_payment"`
	PaidTotal         decimal.Decimal   `gorm:"type:decimal(20,4);default:0" json:"paid_total"`
	CashierId         int               `gorm:"index" json:"cashier_id"`
	CustomerId        int               `gorm:"index" json:"customer_id"`
	SupplierId        int               `gorm:"index" json:"supplier_id"`
	DeliveryStaffId   int               `json:"delivery_staff_id"`
	UnloadingStaffId  int               `json:"unloading_staff_id"`
	Description       string            `gorm:"type:text" json:"description"`
	PaymentSchedule   []PaymentRecord   `gorm:"foreignKey:TransactionId" json:"payment_schedule"`
	LineItems         []LineItem        `gorm:"foreignKey:TransactionId" json:"line_items"`
	Version           int               `gorm:"not null;default:1" json:"version"`
	CancelledAt       *time.Time        `json:"cancelled_at,omitempty"`
	CreatedAt         time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

// PaymentRecord is one row of the payment schedule. Rows recorded by a payment
// carry Paid=true and DueDate equal to the actual payment date; planned
// installment rows carry their agreed due date and no PaymentDate.
type PaymentRecord struct {
	ID                int             `gorm:"primary_key" json:"id"`
	TransactionId     int             `gorm:"not null;uniqueIndex:uniq_payment_seq" json:"transaction_id"`
	Seq               int             `gorm:"not null;uniqueIndex:uniq_payment_seq" json:"seq"`
	DueDate           time.Time       `gorm:"not null" json:"due_date"`
	InstallmentAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"installment_amount"`
	Paid              bool            `gorm:"not null;default:false" json:"paid"`
	PaymentDate       *time.Time      `json:"payment_date"`
	RecordedById      int             `json:"recorded_by_id"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type LineItem struct {
	ID            int             `gorm:"primary_key" json:"id"`
	TransactionId int             `gorm:"index;not null" json:"transaction_id"`
	ProductId     int             `gorm:"index;not null" json:"product_id"`
	UnitId        int             `json:"unit_id"`
	CategoryId    int             `json:"category_id"`
	BrandId       int             `json:"brand_id"`
	Quantity      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"quantity"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_price"`
	UnitOfMeasure string          `gorm:"size:50" json:"unit_of_measure"`
	LineTotal     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"line_total"`
}

func (tx Transaction) GetId() int {
	return tx.ID
}

// ComputePaidTotal is the down payment plus every paid schedule row.
func (tx Transaction) ComputePaidTotal() decimal.Decimal {
	total := tx.DownPayment
	for _, r := range tx.PaymentSchedule {
		if r.Paid {
			total = total.Add(r.InstallmentAmount)
		}
	}
	return total
}

// RemainingBalance never goes below zero.
func (tx Transaction) RemainingBalance() decimal.Decimal {
	remaining := tx.TotalPrice.Sub(tx.ComputePaidTotal())
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

func (tx Transaction) nextSeq() int {
	seq := 0
	for _, r := range tx.PaymentSchedule {
		if r.Seq > seq {
			seq = r.Seq
		}
	}
	return seq + 1
}

// NextDueDate returns the due date of the first planned installment that the
// recorded payments do not fully cover. Payments after the down payment are
// applied to planned rows in due date order. Nil when every row is covered.
func (tx Transaction) NextDueDate() *time.Time {
	paid := decimal.Zero
	var planned []PaymentRecord
	for _, r := range tx.PaymentSchedule {
		if r.Paid {
			paid = paid.Add(r.InstallmentAmount)
			continue
		}
		planned = append(planned, r)
	}
	sort.SliceStable(planned, func(i, j int) bool {
		return planned[i].DueDate.Before(planned[j].DueDate)
	})

	for _, r := range planned {
		if paid.GreaterThanOrEqual(r.InstallmentAmount) {
			paid = paid.Sub(r.InstallmentAmount)
			continue
		}
		d := r.DueDate
		return &d
	}
	return nil
}

// ApplySettlement copies the evaluator's decision onto the entity.
func (tx *Transaction) ApplySettlement(s Settlement) {
	tx.Status = s.Status
	tx.PaymentMethod = s.PaymentMethod
}

// ComputeLineTotals fills LineTotal on each item and returns their sum.
func ComputeLineTotals(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for i := range items {
		items[i].LineTotal = items[i].Quantity.Mul(items[i].UnitPrice)
		total = total.Add(items[i].LineTotal)
	}
	return total
}

type TransactionFilter struct {
	ID             int
	Status         TransactionStatus
	Statuses       []TransactionStatus
	PaymentMethods []PaymentMethod
	CreatedBefore  *time.Time
}

// inputs

type NewTradeTransaction struct {
	PaymentMethod    PaymentMethod           `json:"payment_method" binding:"required" validate:"required"`
	CustomerId       int                     `json:"customer_id" validate:"gte=0"`
	SupplierId       int                     `json:"supplier_id" validate:"gte=0"`
	DeliveryStaffId  int                     `json:"delivery_staff_id" validate:"gte=0"`
	UnloadingStaffId int                     `json:"unloading_staff_id" validate:"gte=0"`
	DownPayment      decimal.Decimal         `json:"down_payment" validate:"gte=0"`
	Hold             bool                    `json:"hold"`
	Description      string                  `json:"description"`
	LineItems        []NewLineItem           `json:"line_items" validate:"required,min=1,dive"`
	InstallmentPlan  []NewPlannedInstallment `json:"installment_plan" validate:"dive"`
}

type NewLineItem struct {
	ProductId  int             `json:"product_id" validate:"required,gt=0"`
	UnitId     int             `json:"unit_id" validate:"gte=0"`
	CategoryId int             `json:"category_id" validate:"gte=0"`
	BrandId    int             `json:"brand_id" validate:"gte=0"`
	Quantity   decimal.Decimal `json:"quantity" validate:"gt=0"`
	UnitPrice  decimal.Decimal `json:"unit_price" validate:"gte=0"`
}

type NewPlannedInstallment struct {
	DueDate time.Time       `json:"due_date" validate:"required"`
	Amount  decimal.Decimal `json:"amount" validate:"gt=0"`
}

type NewCashEntry struct {
	TotalPrice  decimal.Decimal `json:"total_price"`
	Description string          `json:"description"`
}

type PaymentInput struct {
	TransactionId int             `json:"-"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   *time.Time      `json:"payment_date"`
}

type PaymentResult struct {
	Transaction *Transaction      `json:"transaction"`
	Status      TransactionStatus `json:"status"`
	Applied     decimal.Decimal   `json:"applied"`
	Change      decimal.Decimal   `json:"change"`
}

// TransactionDetail is a transaction with its party and product references resolved.
type TransactionDetail struct {
	*Transaction
	Cashier         Reference[RefSummary] `json:"cashier"`
	Customer        Reference[RefSummary] `json:"customer"`
	Supplier        Reference[RefSummary] `json:"supplier"`
	DeliveryStaff   Reference[RefSummary] `json:"delivery_staff"`
	UnloadingStaff  Reference[RefSummary] `json:"unloading_staff"`
	LineItemDetails []LineItemDetail      `json:"line_item_details"`
}

type LineItemDetail struct {
	LineItem
	Product Reference[RefSummary] `json:"product"`
}
