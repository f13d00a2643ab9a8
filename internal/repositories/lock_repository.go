package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type LockRepository interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (*DistributedLock, error)
	ReleaseLock(ctx context.Context, lock *DistributedLock) error
	IsLocked(ctx context.Context, key string) (bool, error)
}

type DistributedLock struct {
	Key        string
	Value      string
	TTL        time.Duration
	AcquiredAt time.Time
}

type lockRepository struct {
	client *redis.Client
}

func NewLockRepository(client *redis.Client) LockRepository {
	return &lockRepository{
		client: client,
	}
}

const (
	lockPrefix  = "lock:"
	releaseLock = `
		if redis.call("GET", KEYS[1]) == ARGV[1] then
			return redis.call("DEL", KEYS[1])
		else
			return 0
		end
	`
)

func (r *lockRepository) AcquireLock(ctx context.Context, key string, ttl time.Duration) (*DistributedLock, error) {
	lockKey := lockPrefix + key
	lockValue := uuid.New().String()

	result, err := r.client.SetNX(ctx, lockKey, lockValue, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}

	if !result {
		return nil, fmt.Errorf("lock already acquired for key: %s", key)
	}

	return &DistributedLock{
		Key:        lockKey,
		Value:      lockValue,
		TTL:        ttl,
		AcquiredAt: time.Now(),
	}, nil
}

func (r *lockRepository) ReleaseLock(ctx context.Context, lock *DistributedLock) error {
	// Lua script so we only delete a lock we still own
	result, err := r.client.Eval(ctx, releaseLock, []string{lock.Key}, lock.Value).Result()
	if err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}

	if result.(int64) == 0 {
		return fmt.Errorf("lock not found or already released: %s", lock.Key)
	}

	return nil
}

func (r *lockRepository) IsLocked(ctx context.Context, key string) (bool, error) {
	exists, err := r.client.Exists(ctx, lockPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check lock existence: %w", err)
	}

	return exists > 0, nil
}

// AccountLockManager serializes financial operations per user so concurrent
// executions cannot double-apply against the same account.
type AccountLockManager struct {
	lockRepo LockRepository
}

func NewAccountLockManager(lockRepo LockRepository) *AccountLockManager {
	return &AccountLockManager{
		lockRepo: lockRepo,
	}
}

func (m *AccountLockManager) LockUser(ctx context.Context, userID int64, operation string, ttl time.Duration) (*DistributedLock, error) {
	lockKey := fmt.Sprintf("user:%d:%s", userID, operation)
	return m.lockRepo.AcquireLock(ctx, lockKey, ttl)
}

func (m *AccountLockManager) ReleaseLock(ctx context.Context, lock *DistributedLock) error {
	return m.lockRepo.ReleaseLock(ctx, lock)
}
