package store

import (
	"context"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/pos_backend/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// NumberSequence hands out transaction numbers of the form PREFIX-YYYY-NNNNNN,
// counted per type and year. The redis counter is seeded from the database the
// first time it is created; without redis the database count is used directly.
// The unique index on transaction_number rejects any collision.
type NumberSequence struct {
	db     *gorm.DB
	rdb    *redis.Client
	logger logrus.FieldLogger
}

func NewNumberSequence(db *gorm.DB, rdb *redis.Client, logger logrus.FieldLogger) *NumberSequence {
	return &NumberSequence{db: db, rdb: rdb, logger: logger}
}

func FormatTransactionNumber(prefix string, year int, seq int64) string {
	return fmt.Sprintf("%s-%04d-%06d", prefix, year, seq)
}

func (s *NumberSequence) Next(ctx context.Context, txType models.TransactionType, at time.Time) (string, error) {
	prefix := txType.NumberPrefix()
	year := at.Year()

	if s.rdb != nil {
		seq, err := s.nextFromRedis(ctx, prefix, year)
		if err == nil {
			return FormatTransactionNumber(prefix, year, seq), nil
		}
		s.logger.WithFields(logrus.Fields{
			"prefix": prefix,
			"year":   year,
		}).Warnf("redis counter unavailable, falling back to database: %v", err)
	}

	count, err := s.countExisting(ctx, prefix, year)
	if err != nil {
		return "", err
	}
	return FormatTransactionNumber(prefix, year, count+1), nil
}

func (s *NumberSequence) nextFromRedis(ctx context.Context, prefix string, year int) (int64, error) {
	key := fmt.Sprintf("TransactionNumber:%s:%d", prefix, year)
	seq, err := s.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if seq != 1 {
		return seq, nil
	}
	// fresh counter, catch up with rows written before it existed
	count, err := s.countExisting(ctx, prefix, year)
	if err != nil || count == 0 {
		return seq, err
	}
	return s.rdb.IncrBy(ctx, key, count).Result()
}

func (s *NumberSequence) countExisting(ctx context.Context, prefix string, year int) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("transaction_number LIKE ?", fmt.Sprintf("%s-%04d-%%", prefix, year)).
		Count(&count).Error
	if err != nil {
		return 0, mapError(err)
	}
	return count, nil
}
