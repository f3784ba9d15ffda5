package models_test

import (
	"errors"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/pos_backend/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func installmentTx() *models.Transaction {
	return &models.Transaction{
		ID:                1,
		TransactionNumber: "SL-2024-000001",
		TransactionType:   models.TransactionTypeSale,
		PaymentMethod:     models.PaymentMethodInstallment,
		Status:            models.TransactionStatusUnpaid,
		TotalPrice:        dec("1000000"),
		DownPayment:       dec("200000"),
		PaidTotal:         dec("200000"),
		CreatedAt:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestRecordPayment_AppendsAndRecomputes(t *testing.T) {
	tx := installmentTx()
	now := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)

	out, err := models.RecordPayment(tx, dec("300000"), nil, now, 7)
	require.NoError(t, err)

	require.Len(t, tx.PaymentSchedule, 1)
	rec := tx.PaymentSchedule[0]
	assert.True(t, rec.Paid)
	assert.Equal(t, 1, rec.Seq)
	assert.Equal(t, 7, rec.RecordedById)
	assert.True(t, rec.InstallmentAmount.Equal(dec("300000")))
	assert.Equal(t, now, rec.DueDate)
	require.NotNil(t, rec.PaymentDate)
	assert.Equal(t, now, *rec.PaymentDate)

	assert.True(t, out.PaidTotal.Equal(dec("500000")))
	assert.True(t, tx.PaidTotal.Equal(dec("500000")))
	assert.True(t, out.Change.IsZero())
}

func TestRecordPayment_UsesGivenPaymentDate(t *testing.T) {
	tx := installmentTx()
	paidOn := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)

	_, err := models.RecordPayment(tx, dec("1"), &paidOn, time.Now(), 1)
	require.NoError(t, err)
	assert.Equal(t, paidOn, tx.PaymentSchedule[0].DueDate)
	assert.Equal(t, paidOn, *tx.PaymentSchedule[0].PaymentDate)
}

func TestRecordPayment_RejectsNonPositiveAmount(t *testing.T) {
	for _, amount := range []string{"0", "-5"} {
		t.Run(amount, func(t *testing.T) {
			tx := installmentTx()
			_, err := models.RecordPayment(tx, dec(amount), nil, time.Now(), 1)
			require.Error(t, err)
			assert.True(t, errors.Is(err, models.ErrInvalidAmount))
			assert.Empty(t, tx.PaymentSchedule)
			assert.True(t, tx.PaidTotal.Equal(dec("200000")))
		})
	}
}

func TestRecordPayment_CapsOverpayment(t *testing.T) {
	tx := installmentTx()

	out, err := models.RecordPayment(tx, dec("900000"), nil, time.Now(), 1)
	require.NoError(t, err)
	assert.True(t, out.Applied.Equal(dec("800000")))
	assert.True(t, out.Change.Equal(dec("100000")))
	assert.True(t, tx.PaidTotal.Equal(tx.TotalPrice))
	assert.True(t, tx.PaymentSchedule[0].InstallmentAmount.Equal(dec("800000")))
}

func TestRecordPayment_NoBalanceLeft(t *testing.T) {
	tx := installmentTx()
	tx.DownPayment = tx.TotalPrice

	_, err := models.RecordPayment(tx, dec("10"), nil, time.Now(), 1)
	assert.True(t, errors.Is(err, models.ErrTransactionClosed))
	assert.Empty(t, tx.PaymentSchedule)
}

func TestRecordPayment_MonotonicLedger(t *testing.T) {
	tx := installmentTx()
	tx.TotalPrice = dec("10000000")
	prevLen := 0
	prevPaid := tx.ComputePaidTotal()

	for i, amount := range []string{"1", "250.50", "1000", "0.01", "99999"} {
		_, err := models.RecordPayment(tx, dec(amount), nil, time.Now(), 1)
		require.NoError(t, err)
		assert.Greater(t, len(tx.PaymentSchedule), prevLen)
		assert.True(t, tx.PaidTotal.GreaterThanOrEqual(prevPaid), "payment %d decreased the paid total", i)
		assert.Equal(t, i+1, tx.PaymentSchedule[i].Seq)
		prevLen = len(tx.PaymentSchedule)
		prevPaid = tx.PaidTotal
	}
}

func TestRecordPayment_IgnoresPlannedRowsInPaidTotal(t *testing.T) {
	tx := installmentTx()
	tx.PaymentSchedule = models.PlannedSchedule([]models.NewPlannedInstallment{
		{DueDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Amount: dec("400000")},
		{DueDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Amount: dec("400000")},
	})

	_, err := models.RecordPayment(tx, dec("400000"), nil, time.Now(), 1)
	require.NoError(t, err)
	require.Len(t, tx.PaymentSchedule, 3)
	assert.Equal(t, 3, tx.PaymentSchedule[2].Seq)
	assert.True(t, tx.PaidTotal.Equal(dec("600000")))
	// the payment covers the first planned row
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *tx.NextDueDate())
}
