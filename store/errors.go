package store

import (
	"errors"

	"bitbucket.org/mmdatafocus/pos_backend/models"
	mysqlDriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

func isDuplicateKeyErr(err error) bool {
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return false
}

// mapError converts driver and gorm errors into the models taxonomy.
// AppErrors pass through untouched.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := models.AsAppError(err); ok {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ErrNotFound
	}
	if isDuplicateKeyErr(err) {
		return models.ErrConflict.WithError(err)
	}
	return models.ErrPersistence.WithError(err)
}
