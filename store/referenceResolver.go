package store

import (
	"context"
	"fmt"

	"bitbucket.org/mmdatafocus/pos_backend/models"
	"gorm.io/gorm"
)

type ReferenceResolver struct {
	db *gorm.DB
}

func NewReferenceResolver(db *gorm.DB) *ReferenceResolver {
	return &ReferenceResolver{db: db}
}

func referenceModel(kind models.ReferenceKind) (any, error) {
	switch kind {
	case models.ReferenceKindCustomer:
		return &models.Customer{}, nil
	case models.ReferenceKindSupplier:
		return &models.Supplier{}, nil
	case models.ReferenceKindStaff:
		return &models.Staff{}, nil
	case models.ReferenceKindProduct:
		return &models.Product{}, nil
	case models.ReferenceKindUnit:
		return &models.ProductUnit{}, nil
	case models.ReferenceKindCategory:
		return &models.ProductCategory{}, nil
	case models.ReferenceKindBrand:
		return &models.Brand{}, nil
	}
	return nil, fmt.Errorf("unknown reference kind %q", kind)
}

// Missing returns the ids that do not exist or are inactive.
func (r *ReferenceResolver) Missing(ctx context.Context, kind models.ReferenceKind, ids []int) ([]int, error) {
	ids = uniqueIds(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	model, err := referenceModel(kind)
	if err != nil {
		return nil, err
	}

	var found []int
	err = r.db.WithContext(ctx).Model(model).
		Where("id IN ? AND is_active = ?", ids, true).
		Pluck("id", &found).Error
	if err != nil {
		return nil, mapError(err)
	}

	present := make(map[int]bool, len(found))
	for _, id := range found {
		present[id] = true
	}
	var missing []int
	for _, id := range ids {
		if !present[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// Summaries resolves ids to {id, name}, including inactive rows so that old
// transactions still display their parties.
func (r *ReferenceResolver) Summaries(ctx context.Context, kind models.ReferenceKind, ids []int) (map[int]models.RefSummary, error) {
	ids = uniqueIds(ids)
	result := make(map[int]models.RefSummary, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	model, err := referenceModel(kind)
	if err != nil {
		return nil, err
	}

	var rows []models.RefSummary
	err = r.db.WithContext(ctx).Model(model).
		Select("id, name").
		Where("id IN ?", ids).
		Scan(&rows).Error
	if err != nil {
		return nil, mapError(err)
	}
	for _, row := range rows {
		result[row.Id] = row
	}
	return result, nil
}

// uniqueIds drops zero ids and duplicates, keeping order.
func uniqueIds(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
