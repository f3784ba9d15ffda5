package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OutstandingBalance is one row of the receivable/payable aging view.
type OutstandingBalance struct {
	TransactionId     int             `json:"transaction_id"`
	TransactionNumber string          `json:"transaction_number"`
	TransactionType   TransactionType `json:"transaction_type"`
	PaymentMethod     PaymentMethod   `json:"payment_method"`
	CustomerId        int             `json:"customer_id"`
	SupplierId        int             `json:"supplier_id"`
	TotalPrice        decimal.Decimal `json:"total_price"`
	PaidTotal         decimal.Decimal `json:"paid_total"`
	Remaining         decimal.Decimal `json:"remaining"`
	CreatedAt         time.Time       `json:"created_at"`
	DaysOutstanding   int             `json:"days_outstanding"`
	NextDueDate       *time.Time      `json:"next_due_date"`
}

func NewOutstandingBalance(tx Transaction, asOf time.Time) OutstandingBalance {
	return OutstandingBalance{
		TransactionId:     tx.ID,
		TransactionNumber: tx.TransactionNumber,
		TransactionType:   tx.TransactionType,
		PaymentMethod:     tx.PaymentMethod,
		CustomerId:        tx.CustomerId,
		SupplierId:        tx.SupplierId,
		TotalPrice:        tx.TotalPrice,
		PaidTotal:         tx.ComputePaidTotal(),
		Remaining:         tx.RemainingBalance(),
		CreatedAt:         tx.CreatedAt,
		DaysOutstanding:   ElapsedDays(tx.CreatedAt, asOf),
		NextDueDate:       tx.NextDueDate(),
	}
}
