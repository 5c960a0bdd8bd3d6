// game/store/presence_store.go
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	redisu "github.com/PubWars/GO-SERVICES/shared/redis"
	"github.com/redis/go-redis/v9"
)

// PresenceStore tracks which users are present in a game room. Keys carry a
// TTL refreshed while the websocket stays connected, so a crashed client
// drops off the presence list without explicit cleanup.
type PresenceStore struct {
	client    *redis.ClusterClient
	onlineTTL time.Duration
}

// NewPresenceStore creates a PresenceStore with the given key TTL.
func NewPresenceStore(client *redis.ClusterClient, onlineTTL time.Duration) *PresenceStore {
	return &PresenceStore{
		client:    client,
		onlineTTL: onlineTTL,
	}
}

// SetUserOnline marks a user present in a game room, refreshing the TTL if
// the key already exists.
func (ps *PresenceStore) SetUserOnline(ctx context.Context, gameID, userID string) error {
	key := fmt.Sprintf(redisu.OnlineKeyPrefix, gameID, userID)
	if err := ps.client.Set(ctx, key, time.Now().Unix(), ps.onlineTTL).Err(); err != nil {
		return fmt.Errorf("failed to mark user %s online in game %s: %w", userID, gameID, err)
	}
	return nil
}

// SetUserOffline removes a user's presence key immediately.
func (ps *PresenceStore) SetUserOffline(ctx context.Context, gameID, userID string) error {
	key := fmt.Sprintf(redisu.OnlineKeyPrefix, gameID, userID)
	if err := ps.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to mark user %s offline in game %s: %w", userID, gameID, err)
	}
	return nil
}

// ListOnlineUsers scans the presence keys of one game and returns the user
// ids. The game id hash tag puts all of a game's keys in one cluster slot, so
// a single-node scan covers them.
func (ps *PresenceStore) ListOnlineUsers(ctx context.Context, gameID string) ([]string, error) {
	pattern := fmt.Sprintf(redisu.OnlineKeyPrefix, gameID, "*")
	prefix := fmt.Sprintf(redisu.OnlineKeyPrefix, gameID, "")

	var users []string
	iter := ps.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		users = append(users, strings.TrimPrefix(iter.Val(), prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan online users for game %s: %w", gameID, err)
	}
	return users, nil
}
