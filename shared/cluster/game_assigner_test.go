// shared/cluster/game_assigner_test.go
package cluster

import (
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PubWars/GO-SERVICES/shared/config"
	"github.com/PubWars/GO-SERVICES/shared/registry"
)

func newTestAssigner(updateInterval time.Duration) *GameAssigner {
	// The client never reaches a live server in these tests; refresh failures
	// only log and leave the seeded ring in place.
	client := redis.NewClusterClient(&redis.ClusterOptions{Addrs: []string{"127.0.0.1:6379"}})
	cfg := &config.CommonConfig{
		HeartbeatInterval: time.Second,
		HeartbeatTTL:      3 * time.Second,
	}
	registrar := registry.NewServiceRegistrar(client, "game-service", cfg)
	registryClient := registry.NewRegistryClient(client, cfg.HeartbeatTTL)
	return NewGameAssigner(registryClient, registrar, updateInterval)
}

func TestGameAssigner_StartReturnsImmediately(t *testing.T) {
	assigner := newTestAssigner(50 * time.Millisecond)
	defer assigner.Stop()

	done := make(chan struct{})
	go func() {
		assigner.Start()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Start blocked the caller instead of spawning the refresh loop")
	}
}

func TestGameAssigner_FreshInstanceOwnsEveryGame(t *testing.T) {
	assigner := newTestAssigner(time.Hour)
	defer assigner.Stop()

	for _, gameID := range []string{"g1", "g2", "some-other-game"} {
		responsible, err := assigner.IsResponsible(gameID)
		require.NoError(t, err)
		assert.True(t, responsible, "a lone instance must own game %s", gameID)
	}
}
