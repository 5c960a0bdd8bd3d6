// shared/registry/registrar.go
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/PubWars/GO-SERVICES/shared/config"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ServiceRegistrar registers this instance in the Redis registry and keeps it
// alive with heartbeats. Other instances read the registry to build the
// consistent-hash ring that decides which instance owns which game.
type ServiceRegistrar struct {
	redisClient *redis.ClusterClient
	serviceType string
	cfg         *config.CommonConfig
	serviceID   string
	stopChan    chan struct{}
	doneChan    chan struct{}
}

// NewServiceRegistrar creates a registrar with a freshly generated instance id.
func NewServiceRegistrar(redisClient *redis.ClusterClient, serviceType string, cfg *config.CommonConfig) *ServiceRegistrar {
	return &ServiceRegistrar{
		redisClient: redisClient,
		serviceType: serviceType,
		cfg:         cfg,
		serviceID:   fmt.Sprintf("%s-%s", serviceType, uuid.New().String()),
		stopChan:    make(chan struct{}),
		doneChan:    make(chan struct{}),
	}
}

// Start begins registration and heartbeating in a background goroutine.
func (sr *ServiceRegistrar) Start() {
	log.Printf("INFO: Starting service registrar for %s (ID: %s) at %s:%d",
		sr.serviceType, sr.serviceID, sr.cfg.ServiceIP, sr.cfg.ServicePort)
	go sr.run()
}

// Stop halts heartbeating and removes this instance from the registry.
func (sr *ServiceRegistrar) Stop() {
	close(sr.stopChan)
	<-sr.doneChan

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	hashKey := RedisRegistryHashPrefix + sr.serviceType
	if _, err := sr.redisClient.HDel(ctx, hashKey, sr.serviceID).Result(); err != nil {
		log.Printf("ERROR: Failed to remove %s (ID: %s) from registry on shutdown: %v",
			sr.serviceType, sr.serviceID, err)
	} else {
		log.Printf("INFO: Service %s (ID: %s) removed from registry on shutdown.", sr.serviceType, sr.serviceID)
	}
}

func (sr *ServiceRegistrar) run() {
	defer close(sr.doneChan)

	heartbeat := time.NewTicker(sr.cfg.HeartbeatInterval)
	defer heartbeat.Stop()

	var cleanup *time.Ticker
	var cleanupC <-chan time.Time
	if sr.cfg.RegistryCleanupInterval > 0 {
		cleanup = time.NewTicker(sr.cfg.RegistryCleanupInterval)
		defer cleanup.Stop()
		cleanupC = cleanup.C
	}

	sr.heartbeatOnce()

	for {
		select {
		case <-heartbeat.C:
			sr.heartbeatOnce()
		case <-cleanupC:
			sr.sweepStaleEntries()
		case <-sr.stopChan:
			return
		}
	}
}

// heartbeatOnce writes (or refreshes) this instance's registry entry.
func (sr *ServiceRegistrar) heartbeatOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	info := ServiceInfo{
		ServiceID:   sr.serviceID,
		ServiceType: sr.serviceType,
		IP:          sr.cfg.ServiceIP,
		Port:        sr.cfg.ServicePort,
		LastSeen:    time.Now().UnixMilli(),
	}

	infoJSON, err := json.Marshal(info)
	if err != nil {
		log.Printf("ERROR: Failed to marshal ServiceInfo for %s: %v", sr.serviceID, err)
		return
	}

	hashKey := RedisRegistryHashPrefix + sr.serviceType
	if _, err := sr.redisClient.HSet(ctx, hashKey, sr.serviceID, infoJSON).Result(); err != nil {
		log.Printf("ERROR: Failed to heartbeat service %s to Redis: %v", sr.serviceID, err)
	}
}

// sweepStaleEntries removes registry entries whose last heartbeat exceeded the
// TTL, plus any entries that no longer unmarshal.
func (sr *ServiceRegistrar) sweepStaleEntries() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	hashKey := RedisRegistryHashPrefix + sr.serviceType
	results, err := sr.redisClient.HGetAll(ctx, hashKey).Result()
	if err != nil {
		log.Printf("ERROR: Registry cleanup failed to list services for type %s: %v", sr.serviceType, err)
		return
	}

	now := time.Now()
	for instanceID, infoJSON := range results {
		var info ServiceInfo
		if err := json.Unmarshal([]byte(infoJSON), &info); err != nil {
			log.Printf("WARN: Registry cleanup: corrupt entry %s (type %s), deleting: %v", instanceID, sr.serviceType, err)
			sr.redisClient.HDel(ctx, hashKey, instanceID)
			continue
		}
		if now.Sub(time.UnixMilli(info.LastSeen)) > sr.cfg.HeartbeatTTL {
			if _, err := sr.redisClient.HDel(ctx, hashKey, instanceID).Result(); err != nil {
				log.Printf("ERROR: Registry cleanup: failed to delete stale instance %s: %v", instanceID, err)
			} else {
				log.Printf("INFO: Registry cleanup: removed stale instance %s.", instanceID)
			}
		}
	}
}

// ServiceID returns the unique id assigned to this instance.
func (sr *ServiceRegistrar) ServiceID() string {
	return sr.serviceID
}

// ServiceType returns the registered type of this instance.
func (sr *ServiceRegistrar) ServiceType() string {
	return sr.serviceType
}
