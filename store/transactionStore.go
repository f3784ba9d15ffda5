package store

import (
	"context"

	"bitbucket.org/mmdatafocus/pos_backend/models"
	"gorm.io/gorm"
)

type TransactionStore struct {
	db *gorm.DB
}

func NewTransactionStore(db *gorm.DB) *TransactionStore {
	return &TransactionStore{db: db}
}

func preloadDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("PaymentSchedule", func(db *gorm.DB) *gorm.DB {
			return db.Order("seq ASC")
		}).
		Preload("LineItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		})
}

func applyFilter(db *gorm.DB, filter models.TransactionFilter) *gorm.DB {
	if filter.ID > 0 {
		db = db.Where("id = ?", filter.ID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if len(filter.Statuses) > 0 {
		db = db.Where("status IN ?", filter.Statuses)
	}
	if len(filter.PaymentMethods) > 0 {
		db = db.Where("payment_method IN ?", filter.PaymentMethods)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at <= ?", *filter.CreatedBefore)
	}
	return db
}

// Create inserts the header together with its line items and schedule rows.
func (s *TransactionStore) Create(ctx context.Context, tx *models.Transaction) error {
	if tx.Version == 0 {
		tx.Version = 1
	}
	err := s.db.WithContext(ctx).Transaction(func(dbTx *gorm.DB) error {
		return dbTx.Create(tx).Error
	})
	return mapError(err)
}

func (s *TransactionStore) FindById(ctx context.Context, id int) (*models.Transaction, error) {
	var tx models.Transaction
	if err := preloadDetails(s.db.WithContext(ctx)).First(&tx, id).Error; err != nil {
		return nil, mapError(err)
	}
	return &tx, nil
}

// FindOne returns ErrNotFound when no row matches the filter.
func (s *TransactionStore) FindOne(ctx context.Context, filter models.TransactionFilter) (*models.Transaction, error) {
	var tx models.Transaction
	db := applyFilter(preloadDetails(s.db.WithContext(ctx)), filter)
	if err := db.Order("id ASC").First(&tx).Error; err != nil {
		return nil, mapError(err)
	}
	return &tx, nil
}

func (s *TransactionStore) List(ctx context.Context, filter models.TransactionFilter) ([]*models.Transaction, error) {
	var results []*models.Transaction
	db := applyFilter(preloadDetails(s.db.WithContext(ctx)), filter)
	if err := db.Order("created_at ASC, id ASC").Find(&results).Error; err != nil {
		return nil, mapError(err)
	}
	return results, nil
}

// Save persists a mutated transaction atomically: the header update is
// guarded by the version the caller loaded, and schedule rows without an id
// are inserted in the same db transaction. A stale version yields ErrConflict.
func (s *TransactionStore) Save(ctx context.Context, tx *models.Transaction) error {
	err := s.db.WithContext(ctx).Transaction(func(dbTx *gorm.DB) error {
		res := dbTx.Model(&models.Transaction{}).
			Where("id = ? AND version = ?", tx.ID, tx.Version).
			Updates(map[string]interface{}{
				"status":         tx.Status,
				"payment_method": tx.PaymentMethod,
				"paid_total":     tx.PaidTotal,
				"cancelled_at":   tx.CancelledAt,
				"version":        gorm.Expr("version + 1"),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.ErrConflict.Withf("transaction %d was modified concurrently, retry", tx.ID)
		}

		for i := range tx.PaymentSchedule {
			record := &tx.PaymentSchedule[i]
			if record.ID != 0 {
				continue
			}
			record.TransactionId = tx.ID
			if err := dbTx.Create(record).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return mapError(err)
	}
	tx.Version++
	return nil
}
