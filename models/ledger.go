package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentOutcome struct {
	Record    PaymentRecord
	Applied   decimal.Decimal
	Change    decimal.Decimal
	PaidTotal decimal.Decimal
}

// RecordPayment appends a paid row to the schedule and recomputes PaidTotal.
//
// The amount applied is capped at the outstanding balance; anything above it
// is returned as Change and never enters the ledger. The entity is untouched
// when an error is returned. Persisting the result is the caller's job.
func RecordPayment(tx *Transaction, amount decimal.Decimal, paymentDate *time.Time, now time.Time, actorId int) (PaymentOutcome, error) {
	if !amount.IsPositive() {
		return PaymentOutcome{}, ErrInvalidAmount
	}

	remaining := tx.RemainingBalance()
	if !remaining.IsPositive() {
		return PaymentOutcome{}, ErrTransactionClosed.Withf("transaction %s has no outstanding balance", tx.TransactionNumber)
	}

	paidAt := now
	if paymentDate != nil && !paymentDate.IsZero() {
		paidAt = *paymentDate
	}
	if paidAt.Before(startOfDay(tx.CreatedAt)) {
		return PaymentOutcome{}, ErrValidation.Withf("payment date %s is before the transaction date %s",
			paidAt.Format("2006-01-02"), tx.CreatedAt.Format("2006-01-02"))
	}

	applied := decimal.Min(amount, remaining)
	record := PaymentRecord{
		TransactionId:     tx.ID,
		Seq:               tx.nextSeq(),
		DueDate:           paidAt,
		InstallmentAmount: applied,
		Paid:              true,
		PaymentDate:       &paidAt,
		RecordedById:      actorId,
	}

	tx.PaymentSchedule = append(tx.PaymentSchedule, record)
	tx.PaidTotal = tx.ComputePaidTotal()

	return PaymentOutcome{
		Record:    record,
		Applied:   applied,
		Change:    amount.Sub(applied),
		PaidTotal: tx.PaidTotal,
	}, nil
}

// PlannedSchedule turns an installment plan into unpaid schedule rows.
func PlannedSchedule(plan []NewPlannedInstallment) []PaymentRecord {
	rows := make([]PaymentRecord, 0, len(plan))
	for i, p := range plan {
		rows = append(rows, PaymentRecord{
			Seq:               i + 1,
			DueDate:           p.DueDate,
			InstallmentAmount: p.Amount,
			Paid:              false,
		})
	}
	return rows
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
