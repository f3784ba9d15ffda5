package models_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"bitbucket.org/mmdatafocus/pos_backend/models"
)

func TestReference(t *testing.T) {
	byId := models.RefId[models.RefSummary](5)
	if byId.ID() != 5 || byId.IsResolved() {
		t.Fatalf("expected unresolved reference 5, got id %d resolved %v", byId.ID(), byId.IsResolved())
	}
	if _, ok := byId.Value(); ok {
		t.Fatalf("unresolved reference returned a value")
	}

	resolved := models.Resolved(5, models.RefSummary{Id: 5, Name: "Budi"})
	v, ok := resolved.Value()
	if !ok || v.Name != "Budi" {
		t.Fatalf("expected resolved Budi, got %+v (ok=%v)", v, ok)
	}

	var none models.Reference[models.RefSummary]
	if !none.IsZero() {
		t.Fatalf("zero reference should be IsZero")
	}

	b, err := json.Marshal(struct {
		A models.Reference[models.RefSummary] `json:"a"`
		B models.Reference[models.RefSummary] `json:"b"`
		C models.Reference[models.RefSummary] `json:"c"`
	}{byId, resolved, none})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	expected := `{"a":{"id":5},"b":{"id":5,"data":{"id":5,"name":"Budi"}},"c":null}`
	if string(b) != expected {
		t.Fatalf("expected %s, got %s", expected, b)
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to models.TransactionStatus
		allowed  bool
	}{
		{models.TransactionStatusPendingDraft, models.TransactionStatusUnpaid, true},
		{models.TransactionStatusUnpaid, models.TransactionStatusUnpaid, true},
		{models.TransactionStatusUnpaid, models.TransactionStatusPaidEarly, true},
		{models.TransactionStatusPaid, models.TransactionStatusCancelled, true},
		{models.TransactionStatusPaid, models.TransactionStatusUnpaid, false},
		{models.TransactionStatusPaidEarly, models.TransactionStatusPaid, false},
		{models.TransactionStatusCancelled, models.TransactionStatusCancelled, false},
		{models.TransactionStatusPendingDraft, models.TransactionStatusPaidEarly, false},
	}
	for _, tc := range cases {
		if got := models.CanTransition(tc.from, tc.to); got != tc.allowed {
			t.Fatalf("CanTransition(%s, %s) expected %v, got %v", tc.from, tc.to, tc.allowed, got)
		}
	}

	err := models.ValidateTransition(models.TransactionStatusPaid, models.TransactionStatusUnpaid)
	if !errors.Is(err, models.ErrTransactionClosed) {
		t.Fatalf("expected ErrTransactionClosed, got %v", err)
	}
}

func TestAppError(t *testing.T) {
	wrapped := models.ErrPersistence.WithError(errors.New("connection refused"))
	if !errors.Is(wrapped, models.ErrPersistence) || errors.Is(wrapped, models.ErrNotFound) {
		t.Fatalf("wrapped error matched the wrong code: %v", wrapped)
	}
	if !strings.Contains(wrapped.Error(), "connection refused") {
		t.Fatalf("cause missing from %q", wrapped.Error())
	}

	appErr, ok := models.AsAppError(models.ErrNotFound.Withf("transaction %d not found", 9))
	if !ok {
		t.Fatalf("AsAppError did not find the AppError")
	}
	if appErr.StatusCode != http.StatusNotFound || appErr.Message != "transaction 9 not found" {
		t.Fatalf("unexpected error %d %q", appErr.StatusCode, appErr.Message)
	}
	if models.ErrNotFound.Message != "record not found" {
		t.Fatalf("Withf mutated the sentinel: %q", models.ErrNotFound.Message)
	}

	if !models.ErrConflict.Retryable() || models.ErrValidation.Retryable() {
		t.Fatalf("only conflicts are retryable")
	}
}

func TestEnums(t *testing.T) {
	var m models.PaymentMethod
	if err := json.Unmarshal([]byte(`"installment"`), &m); err != nil || !m.IsDeferred() {
		t.Fatalf("installment should decode as deferred, got %q err %v", m, err)
	}
	if err := json.Unmarshal([]byte(`"cheque"`), &m); err == nil {
		t.Fatalf("expected an error for an unknown payment method")
	}

	var tt models.TransactionType
	if err := json.Unmarshal([]byte(`"purchase"`), &tt); err != nil {
		t.Fatalf("decode purchase: %v", err)
	}
	if tt.NumberPrefix() != "PR" {
		t.Fatalf("expected prefix PR, got %s", tt.NumberPrefix())
	}
	if err := json.Unmarshal([]byte(`3`), &tt); err == nil {
		t.Fatalf("expected an error for a numeric transaction type")
	}

	if !models.TransactionStatusCancelled.IsTerminal() || models.TransactionStatusUnpaid.IsTerminal() {
		t.Fatalf("cancelled must be terminal and unpaid must not")
	}
}
