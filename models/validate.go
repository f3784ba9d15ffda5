package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report json names so messages match the request payload
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	// lets gt/gte rules work on money fields
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// ValidateStruct runs the struct's validate tags and converts the first
// failure into ErrValidation.
func ValidateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return ErrValidation.Withf("%s", describeFieldError(fe))
	}
	return ErrValidation.WithError(err)
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must contain at least %s item(s)", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	}
	return fmt.Sprintf("%s failed on the '%s' rule", field, fe.Tag())
}

// Validate checks the shape of a sale or purchase request. Reference
// resolution happens later against the store.
func (input NewTradeTransaction) Validate(txType TransactionType) error {
	if !txType.HasLineItems() {
		return ErrValidation.Withf("%s transactions do not take line items", txType)
	}
	if !input.PaymentMethod.IsValid() {
		return ErrValidation.Withf("invalid payment method %q", input.PaymentMethod)
	}
	if err := ValidateStruct(input); err != nil {
		return err
	}

	switch txType {
	case TransactionTypeSale:
		if input.CustomerId <= 0 {
			return ErrInvalidReference.Withf("customer is required for a sale")
		}
	case TransactionTypePurchase:
		if input.SupplierId <= 0 {
			return ErrInvalidReference.Withf("supplier is required for a purchase")
		}
		for i, item := range input.LineItems {
			if item.UnitId <= 0 || item.CategoryId <= 0 || item.BrandId <= 0 {
				return ErrInvalidReference.Withf("line_items[%d]: unit, category and brand are required for a purchase", i)
			}
		}
	}

	total := input.Total()
	if !total.IsPositive() {
		return ErrValidation.Withf("total price must be greater than zero")
	}

	if !input.PaymentMethod.IsDeferred() {
		if !input.DownPayment.IsZero() {
			return ErrValidation.Withf("down payment only applies to installment or debt")
		}
		if len(input.InstallmentPlan) > 0 {
			return ErrValidation.Withf("installment plan only applies to installment")
		}
		return nil
	}

	if input.DownPayment.GreaterThanOrEqual(total) {
		return ErrValidation.Withf("down payment must be less than the total price; use an immediate payment method")
	}
	if len(input.InstallmentPlan) > 0 {
		if input.PaymentMethod != PaymentMethodInstallment {
			return ErrValidation.Withf("installment plan only applies to installment")
		}
		planned := decimal.Zero
		for _, p := range input.InstallmentPlan {
			planned = planned.Add(p.Amount)
		}
		if !planned.Equal(total.Sub(input.DownPayment)) {
			return ErrValidation.Withf("installment plan must add up to %s", total.Sub(input.DownPayment).StringFixed(2))
		}
	}
	return nil
}

// Total is Σ quantity × unit price.
func (input NewTradeTransaction) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range input.LineItems {
		total = total.Add(item.Quantity.Mul(item.UnitPrice))
	}
	return total
}

func (input NewCashEntry) Validate() error {
	if !input.TotalPrice.IsPositive() {
		return ErrValidation.Withf("total price must be greater than zero")
	}
	if strings.TrimSpace(input.Description) == "" {
		return ErrValidation.Withf("description is required")
	}
	return nil
}
