package models

import (
	"gorm.io/gorm"
)

func MigrateTable(db *gorm.DB) error {
	return db.AutoMigrate(
		&Transaction{}, &PaymentRecord{}, &LineItem{},
		&Preference{},
		&Customer{}, &Supplier{}, &Staff{},
		&Product{}, &ProductUnit{}, &ProductCategory{}, &Brand{},
	)
}
