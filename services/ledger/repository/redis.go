package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/opencollective/ledger/internal/pkg/constants"
	"github.com/opencollective/ledger/internal/pkg/models"
)

// GetCachedBalances returns the cached balances of a collective. ok is false on a miss.
func (r *LedgerRepo) GetCachedBalances(ctx context.Context, collectiveID int64) ([]models.Balance, bool, error) {
	key := fmt.Sprintf(constants.KeyCollectiveBalance, collectiveID)

	raw, err := r.redisClient.Get(ctx, key)
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cached balance: %w", err)
	}

	var balances []models.Balance
	if err := json.Unmarshal([]byte(raw), &balances); err != nil {
		// a corrupt entry is a miss
		return nil, false, nil
	}
	return balances, true, nil
}

// CacheBalances stores the balances of a collective for ttl
func (r *LedgerRepo) CacheBalances(ctx context.Context, collectiveID int64, balances []models.Balance, ttl time.Duration) error {
	data, err := json.Marshal(balances)
	if err != nil {
		return fmt.Errorf("failed to marshal balances: %w", err)
	}

	key := fmt.Sprintf(constants.KeyCollectiveBalance, collectiveID)
	if err := r.redisClient.Set(ctx, key, data, ttl); err != nil {
		return fmt.Errorf("failed to cache balance: %w", err)
	}
	return nil
}

// InvalidateBalances drops the cached balances of the given collectives
func (r *LedgerRepo) InvalidateBalances(ctx context.Context, collectiveIDs ...int64) error {
	keys := make([]string, 0, len(collectiveIDs))
	for _, id := range collectiveIDs {
		keys = append(keys, fmt.Sprintf(constants.KeyCollectiveBalance, id))
	}
	if err := r.redisClient.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("failed to invalidate balances: %w", err)
	}
	return nil
}

// AcquireLock takes the lock key for ttl, identified by token
func (r *LedgerRepo) AcquireLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	return r.redisClient.AcquireLock(ctx, key, token, ttl)
}

// ReleaseLock frees the lock key if token still owns it
func (r *LedgerRepo) ReleaseLock(ctx context.Context, key, token string) error {
	return r.redisClient.ReleaseLock(ctx, key, token)
}
