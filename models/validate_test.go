package models_test

import (
	"errors"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/pos_backend/models"
	"github.com/stretchr/testify/assert"
)

func saleInput() models.NewTradeTransaction {
	return models.NewTradeTransaction{
		PaymentMethod: models.PaymentMethodCash,
		CustomerId:    3,
		LineItems: []models.NewLineItem{
			{ProductId: 1, Quantity: dec("2"), UnitPrice: dec("15000")},
			{ProductId: 2, Quantity: dec("1.5"), UnitPrice: dec("10000")},
		},
	}
}

func TestNewTradeTransaction_Total(t *testing.T) {
	assert.True(t, saleInput().Total().Equal(dec("45000")))
}

func TestNewTradeTransaction_Validate(t *testing.T) {
	cases := []struct {
		name    string
		txType  models.TransactionType
		mutate  func(in *models.NewTradeTransaction)
		wantErr *models.AppError
	}{
		{"valid cash sale", models.TransactionTypeSale, func(in *models.NewTradeTransaction) {}, nil},
		{"expense type rejected", models.TransactionTypeExpense, func(in *models.NewTradeTransaction) {}, models.ErrValidation},
		{"unknown method", models.TransactionTypeSale, func(in *models.NewTradeTransaction) { in.PaymentMethod = "barter" }, models.ErrValidation},
		{"no line items", models.TransactionTypeSale, func(in *models.NewTradeTransaction) { in.LineItems = nil }, models.ErrValidation},
		{"zero quantity", models.TransactionTypeSale, func(in *models.NewTradeTransaction) { in.LineItems[0].Quantity = dec("0") }, models.ErrValidation},
		{"missing product", models.TransactionTypeSale, func(in *models.NewTradeTransaction) { in.LineItems[1].ProductId = 0 }, models.ErrValidation},
		{"sale without customer", models.TransactionTypeSale, func(in *models.NewTradeTransaction) { in.CustomerId = 0 }, models.ErrInvalidReference},
		{"purchase without supplier", models.TransactionTypePurchase, func(in *models.NewTradeTransaction) {}, models.ErrInvalidReference},
		{"purchase without catalog refs", models.TransactionTypePurchase, func(in *models.NewTradeTransaction) { in.SupplierId = 4 }, models.ErrInvalidReference},
		{"valid purchase", models.TransactionTypePurchase, func(in *models.NewTradeTransaction) {
			in.SupplierId = 4
			for i := range in.LineItems {
				in.LineItems[i].UnitId, in.LineItems[i].CategoryId, in.LineItems[i].BrandId = 1, 1, 1
			}
		}, nil},
		{"down payment on cash", models.TransactionTypeSale, func(in *models.NewTradeTransaction) { in.DownPayment = dec("100") }, models.ErrValidation},
		{"down payment covers total", models.TransactionTypeSale, func(in *models.NewTradeTransaction) {
			in.PaymentMethod = models.PaymentMethodDebt
			in.DownPayment = dec("45000")
		}, models.ErrValidation},
		{"valid debt with down payment", models.TransactionTypeSale, func(in *models.NewTradeTransaction) {
			in.PaymentMethod = models.PaymentMethodDebt
			in.DownPayment = dec("5000")
		}, nil},
		{"plan must add up", models.TransactionTypeSale, func(in *models.NewTradeTransaction) {
			in.PaymentMethod = models.PaymentMethodInstallment
			in.DownPayment = dec("5000")
			in.InstallmentPlan = []models.NewPlannedInstallment{{DueDate: time.Now(), Amount: dec("10000")}}
		}, models.ErrValidation},
		{"plan on debt rejected", models.TransactionTypeSale, func(in *models.NewTradeTransaction) {
			in.PaymentMethod = models.PaymentMethodDebt
			in.InstallmentPlan = []models.NewPlannedInstallment{{DueDate: time.Now(), Amount: dec("45000")}}
		}, models.ErrValidation},
		{"valid plan", models.TransactionTypeSale, func(in *models.NewTradeTransaction) {
			in.PaymentMethod = models.PaymentMethodInstallment
			in.DownPayment = dec("5000")
			in.InstallmentPlan = []models.NewPlannedInstallment{
				{DueDate: time.Now().AddDate(0, 1, 0), Amount: dec("20000")},
				{DueDate: time.Now().AddDate(0, 2, 0), Amount: dec("20000")},
			}
		}, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := saleInput()
			tc.mutate(&in)
			err := in.Validate(tc.txType)
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tc.wantErr), "got %v", err)
		})
	}
}

func TestNewCashEntry_Validate(t *testing.T) {
	assert.NoError(t, models.NewCashEntry{TotalPrice: dec("1"), Description: "listrik"}.Validate())
	assert.True(t, errors.Is(models.NewCashEntry{TotalPrice: dec("0"), Description: "x"}.Validate(), models.ErrValidation))
	assert.True(t, errors.Is(models.NewCashEntry{TotalPrice: dec("-3"), Description: "x"}.Validate(), models.ErrValidation))
	assert.True(t, errors.Is(models.NewCashEntry{TotalPrice: dec("10"), Description: "   "}.Validate(), models.ErrValidation))
}

func TestNewPreference_Validate(t *testing.T) {
	days := 30
	assert.NoError(t, models.NewPreference{MaxPelunasanHari: &days}.Validate())

	negative := -1
	assert.True(t, errors.Is(models.NewPreference{MaxPelunasanHari: &negative}.Validate(), models.ErrValidation))
	assert.True(t, errors.Is(models.NewPreference{}.Validate(), models.ErrValidation))

	p := models.NewPreference{MaxPelunasanHari: &days, Language: "id"}.ToPreference()
	assert.Equal(t, models.PreferenceSingletonId, p.ID)
	assert.Equal(t, 30, p.MaxPelunasanHari)
}
