package models

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

type Settlement struct {
	Status        TransactionStatus
	PaymentMethod PaymentMethod
	Settled       bool
	// ElapsedDays is only computed for installment payoffs with a preference.
	ElapsedDays *int
}

// EvaluateSettlement decides the status and payment method after a payment.
//
//   - paidTotal below the total: nothing changes.
//   - debt paid off: paid, and the method becomes cash.
//   - installment paid off: paid, or paid_early when a preference exists and
//     the whole days since creation are within MaxPelunasanHari (inclusive).
//     The method stays installment.
func EvaluateSettlement(tx Transaction, paidTotal decimal.Decimal, paymentDate time.Time, pref *Preference) Settlement {
	result := Settlement{
		Status:        tx.Status,
		PaymentMethod: tx.PaymentMethod,
	}
	if paidTotal.LessThan(tx.TotalPrice) {
		return result
	}

	result.Settled = true
	result.Status = TransactionStatusPaid

	switch tx.PaymentMethod {
	case PaymentMethodDebt:
		result.PaymentMethod = PaymentMethodCash
	case PaymentMethodInstallment:
		if pref != nil {
			elapsed := ElapsedDays(tx.CreatedAt, paymentDate)
			result.ElapsedDays = &elapsed
			if elapsed <= pref.MaxPelunasanHari {
				result.Status = TransactionStatusPaidEarly
			}
		}
	}
	return result
}

// ElapsedDays is floor((to - from) / 24h).
func ElapsedDays(from, to time.Time) int {
	return int(math.Floor(to.Sub(from).Hours() / 24))
}
