package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"bitbucket.org/mmdatafocus/pos_backend/models"
	"github.com/bsm/redislock"
	"github.com/sirupsen/logrus"
)

// Locker serializes work on one transaction. The returned func releases the lock.
type Locker interface {
	Lock(ctx context.Context, transactionId int) (func(), error)
}

func transactionLockKey(transactionId int) string {
	return fmt.Sprintf("lock:transaction:%d", transactionId)
}

// RedisLocker holds a redislock lease per transaction so that several
// instances never record payments on the same transaction at once.
type RedisLocker struct {
	client  *redislock.Client
	ttl     time.Duration
	retry   int
	backoff time.Duration
	logger  logrus.FieldLogger
}

func NewRedisLocker(client *redislock.Client, ttl time.Duration, retry int, backoff time.Duration, logger logrus.FieldLogger) *RedisLocker {
	return &RedisLocker{
		client:  client,
		ttl:     ttl,
		retry:   retry,
		backoff: backoff,
		logger:  logger,
	}
}

func (l *RedisLocker) Lock(ctx context.Context, transactionId int) (func(), error) {
	key := transactionLockKey(transactionId)
	lock, err := l.client.Obtain(ctx, key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(l.backoff), l.retry),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, models.ErrConflict.Withf("transaction %d is busy, retry", transactionId)
	}
	if err != nil {
		return nil, models.ErrPersistence.WithError(err)
	}

	return func() {
		// release with a fresh context, the request one may already be done
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := lock.Release(releaseCtx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.logger.WithFields(logrus.Fields{
				"field":          "RedisLocker",
				"transaction_id": transactionId,
			}).Warn("failed to release redis lock: " + err.Error())
		}
	}, nil
}

// KeyedMutex is the single-instance fallback used when redis is not configured.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[int]*keyedLock
}

type keyedLock struct {
	ch   chan struct{}
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[int]*keyedLock)}
}

func (k *KeyedMutex) Lock(ctx context.Context, transactionId int) (func(), error) {
	k.mu.Lock()
	l, ok := k.locks[transactionId]
	if !ok {
		l = &keyedLock{ch: make(chan struct{}, 1)}
		k.locks[transactionId] = l
	}
	l.refs++
	k.mu.Unlock()

	select {
	case l.ch <- struct{}{}:
	case <-ctx.Done():
		k.drop(transactionId, l)
		return nil, models.ErrConflict.WithError(ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-l.ch
			k.drop(transactionId, l)
		})
	}, nil
}

func (k *KeyedMutex) drop(transactionId int, l *keyedLock) {
	k.mu.Lock()
	defer k.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(k.locks, transactionId)
	}
}
