package graph

import (
	"context"

	"bitbucket.org/mmdatafocus/pos_backend/middlewares"
	"bitbucket.org/mmdatafocus/pos_backend/models"
)

// primeDetail hands the references the workflow already resolved to the
// request loaders so field resolution does not query them again.
func primeDetail(ctx context.Context, detail *models.TransactionDetail) {
	primeReference(ctx, models.ReferenceKindStaff, detail.Cashier)
	primeReference(ctx, models.ReferenceKindCustomer, detail.Customer)
	primeReference(ctx, models.ReferenceKindSupplier, detail.Supplier)
	primeReference(ctx, models.ReferenceKindStaff, detail.DeliveryStaff)
	primeReference(ctx, models.ReferenceKindStaff, detail.UnloadingStaff)
	for _, item := range detail.LineItemDetails {
		primeReference(ctx, models.ReferenceKindProduct, item.Product)
	}
}

func primeReference(ctx context.Context, kind models.ReferenceKind, ref models.Reference[models.RefSummary]) {
	if v, ok := ref.Value(); ok {
		middlewares.PrimeReference(ctx, kind, ref.ID(), v)
	}
}
