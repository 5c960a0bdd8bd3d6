// shared/registry/client.go
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RegistryClient reads the registry. Kept separate from ServiceRegistrar so
// consumers that only discover instances never write registration state.
type RegistryClient struct {
	redisClient    *redis.ClusterClient
	serviceTimeout time.Duration
}

// NewRegistryClient wraps an initialized Redis client. serviceTimeout bounds
// how old a heartbeat may be before an instance is considered gone.
func NewRegistryClient(redisClient *redis.ClusterClient, serviceTimeout time.Duration) *RegistryClient {
	return &RegistryClient{
		redisClient:    redisClient,
		serviceTimeout: serviceTimeout,
	}
}

// GetActiveServices returns the live instances of a service type, keyed by
// instance id. Entries with stale heartbeats are filtered out; the registrar's
// cleanup loop deletes them eventually.
func (rc *RegistryClient) GetActiveServices(ctx context.Context, serviceType string) (map[string]ServiceInfo, error) {
	key := RedisRegistryHashPrefix + serviceType
	results, err := rc.redisClient.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get services of type %s from Redis: %w", serviceType, err)
	}

	active := make(map[string]ServiceInfo)
	now := time.Now()
	for instanceID, infoJSON := range results {
		var info ServiceInfo
		if err := json.Unmarshal([]byte(infoJSON), &info); err != nil {
			log.Printf("WARN: RegistryClient: failed to unmarshal ServiceInfo for %s (type %s): %v", instanceID, serviceType, err)
			continue
		}
		if now.Sub(time.UnixMilli(info.LastSeen)) <= rc.serviceTimeout {
			active[instanceID] = info
		}
	}
	return active, nil
}
