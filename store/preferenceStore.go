package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/pos_backend/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var preferenceCacheKey = "Preference:" + fmt.Sprint(models.PreferenceSingletonId)

// PreferenceStore reads the singleton preference row through a redis cache.
// rdb may be nil, in which case every read goes to the database.
type PreferenceStore struct {
	db       *gorm.DB
	rdb      *redis.Client
	cacheTTL time.Duration
	logger   logrus.FieldLogger
}

func NewPreferenceStore(db *gorm.DB, rdb *redis.Client, cacheTTL time.Duration, logger logrus.FieldLogger) *PreferenceStore {
	return &PreferenceStore{db: db, rdb: rdb, cacheTTL: cacheTTL, logger: logger}
}

// FindOne returns nil without error when no preference has been configured.
func (s *PreferenceStore) FindOne(ctx context.Context) (*models.Preference, error) {
	if pref, ok := s.getCached(ctx); ok {
		return pref, nil
	}

	var pref models.Preference
	err := s.db.WithContext(ctx).First(&pref, models.PreferenceSingletonId).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, mapError(err)
	}
	s.setCached(ctx, &pref)
	return &pref, nil
}

func (s *PreferenceStore) Upsert(ctx context.Context, pref models.Preference) (*models.Preference, error) {
	pref.ID = models.PreferenceSingletonId
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"max_pelunasan_hari", "dark_mode", "language", "company_name", "company_address", "updated_at",
		}),
	}).Create(&pref).Error
	if err != nil {
		return nil, mapError(err)
	}
	s.clearCached(ctx)
	return &pref, nil
}

func (s *PreferenceStore) getCached(ctx context.Context) (*models.Preference, bool) {
	if s.rdb == nil {
		return nil, false
	}
	val, err := s.rdb.Get(ctx, preferenceCacheKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.WithField("key", preferenceCacheKey).Warnf("preference cache read failed: %v", err)
		}
		return nil, false
	}
	var pref models.Preference
	if err := json.Unmarshal([]byte(val), &pref); err != nil {
		s.logger.WithField("key", preferenceCacheKey).Warnf("preference cache decode failed: %v", err)
		return nil, false
	}
	return &pref, true
}

func (s *PreferenceStore) setCached(ctx context.Context, pref *models.Preference) {
	if s.rdb == nil {
		return
	}
	b, err := json.Marshal(pref)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, preferenceCacheKey, b, s.cacheTTL).Err(); err != nil {
		s.logger.WithField("key", preferenceCacheKey).Warnf("preference cache write failed: %v", err)
	}
}

func (s *PreferenceStore) clearCached(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, preferenceCacheKey).Err(); err != nil {
		s.logger.WithField("key", preferenceCacheKey).Warnf("preference cache clear failed: %v", err)
	}
}
