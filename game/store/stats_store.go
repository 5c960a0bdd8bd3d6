// game/store/stats_store.go
package store

import (
	"context"
	"fmt"
	"strconv"

	redisu "github.com/PubWars/GO-SERVICES/shared/redis"
	"github.com/redis/go-redis/v9"
)

// StatsStore keeps per-user games-won counters in Redis. The win evaluator
// increments them as a side effect of game completion; losing the counter is
// tolerable, corrupting game state is not, so these live outside the conquest
// transaction.
type StatsStore struct {
	client *redis.ClusterClient
}

// NewStatsStore creates a StatsStore instance.
func NewStatsStore(client *redis.ClusterClient) *StatsStore {
	return &StatsStore{client: client}
}

// IncrementGamesWon atomically bumps a user's games-won counter.
func (ss *StatsStore) IncrementGamesWon(ctx context.Context, userID string) error {
	key := fmt.Sprintf(redisu.GamesWonKeyPrefix, userID)
	if err := ss.client.Incr(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to increment games won for user %s: %w", userID, err)
	}
	return nil
}

// GetGamesWon returns a user's games-won counter, zero when absent.
func (ss *StatsStore) GetGamesWon(ctx context.Context, userID string) (int64, error) {
	key := fmt.Sprintf(redisu.GamesWonKeyPrefix, userID)
	val, err := ss.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get games won for user %s: %w", userID, err)
	}
	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt games won counter for user %s: %w", userID, err)
	}
	return count, nil
}
