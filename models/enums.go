package models

import (
	"encoding/json"
	"fmt"
)

type TransactionType string

const (
	TransactionTypeSale     TransactionType = "sale"
	TransactionTypePurchase TransactionType = "purchase"
	TransactionTypeExpense  TransactionType = "expense"
	TransactionTypeIncome   TransactionType = "income"
)

func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeSale, TransactionTypePurchase, TransactionTypeExpense, TransactionTypeIncome:
		return true
	}
	return false
}

// HasLineItems reports whether the type is built from line items (sale/purchase)
// rather than a single amount (expense/income).
func (t TransactionType) HasLineItems() bool {
	return t == TransactionTypeSale || t == TransactionTypePurchase
}

// NumberPrefix is used when generating transaction numbers.
func (t TransactionType) NumberPrefix() string {
	switch t {
	case TransactionTypeSale:
		return "SL"
	case TransactionTypePurchase:
		return "PR"
	case TransactionTypeExpense:
		return "EX"
	case TransactionTypeIncome:
		return "IN"
	}
	return "TR"
}

func (t *TransactionType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("transaction type must be string")
	}
	if !TransactionType(s).IsValid() {
		return fmt.Errorf("invalid transaction type %q", s)
	}
	*t = TransactionType(s)
	return nil
}

type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodInstallment  PaymentMethod = "installment"
	PaymentMethodDebt         PaymentMethod = "debt"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodBankTransfer, PaymentMethodInstallment, PaymentMethodDebt:
		return true
	}
	return false
}

// IsDeferred is true for methods that are paid off over time.
func (m PaymentMethod) IsDeferred() bool {
	return m == PaymentMethodInstallment || m == PaymentMethodDebt
}

func (m *PaymentMethod) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("payment method must be string")
	}
	if !PaymentMethod(s).IsValid() {
		return fmt.Errorf("invalid payment method %q", s)
	}
	*m = PaymentMethod(s)
	return nil
}

type TransactionStatus string

const (
	TransactionStatusPaid         TransactionStatus = "paid"
	TransactionStatusUnpaid       TransactionStatus = "unpaid"
	TransactionStatusPendingDraft TransactionStatus = "pending_draft"
	TransactionStatusPaidEarly    TransactionStatus = "paid_early"
	TransactionStatusCancelled    TransactionStatus = "cancelled"
)

func (s TransactionStatus) IsValid() bool {
	switch s {
	case TransactionStatusPaid, TransactionStatusUnpaid, TransactionStatusPendingDraft, TransactionStatusPaidEarly, TransactionStatusCancelled:
		return true
	}
	return false
}

func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusPaid || s == TransactionStatusPaidEarly || s == TransactionStatusCancelled
}

// IsSettled is true once the full amount has been received.
func (s TransactionStatus) IsSettled() bool {
	return s == TransactionStatusPaid || s == TransactionStatusPaidEarly
}

type UserRole string

const (
	UserRoleAdmin   UserRole = "admin"
	UserRoleCashier UserRole = "cashier"
)
