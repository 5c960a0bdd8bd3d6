// shared/cluster/game_assigner.go
package cluster

import (
	"context"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/PubWars/GO-SERVICES/shared/registry"
	"github.com/stathat/consistent"
)

// GameAssigner maps game ids onto service instances with consistent hashing,
// so exactly one instance processes conquest attempts for any given game. The
// per-game mutex inside that instance then gives a cluster-wide single writer
// per game.
type GameAssigner struct {
	registryClient *registry.RegistryClient
	registrar      *registry.ServiceRegistrar
	updateInterval time.Duration
	ring           *consistent.Consistent
	ringMux        sync.RWMutex
	ctx            context.Context
	cancel         context.CancelFunc
}

// NewGameAssigner builds an assigner seeded with this instance so a freshly
// started single instance owns every game until the registry is populated.
func NewGameAssigner(
	registryClient *registry.RegistryClient,
	registrar *registry.ServiceRegistrar,
	updateInterval time.Duration,
) *GameAssigner {
	ctx, cancel := context.WithCancel(context.Background())

	ga := &GameAssigner{
		registryClient: registryClient,
		registrar:      registrar,
		updateInterval: updateInterval,
		ring:           consistent.New(),
		ctx:            ctx,
		cancel:         cancel,
	}

	ga.ringMux.Lock()
	ga.ring.Add(registrar.ServiceID())
	ga.ringMux.Unlock()

	log.Printf("INFO: GameAssigner initialized for instance %s, update interval %v",
		registrar.ServiceID(), updateInterval)
	return ga
}

// Start begins the periodic ring refresh in a background goroutine.
func (ga *GameAssigner) Start() {
	go ga.run()
}

func (ga *GameAssigner) run() {
	ticker := time.NewTicker(ga.updateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ga.ctx.Done():
			log.Println("INFO: GameAssigner update loop shutting down.")
			return
		case <-ticker.C:
			ga.refreshRing()
		}
	}
}

// Stop shuts down the update loop.
func (ga *GameAssigner) Stop() {
	ga.cancel()
}

// refreshRing rebuilds the hash ring when the set of live instances changed.
func (ga *GameAssigner) refreshRing() {
	active, err := ga.registryClient.GetActiveServices(ga.ctx, ga.registrar.ServiceType())
	if err != nil {
		log.Printf("ERROR: GameAssigner: failed to get active instances: %v", err)
		return
	}

	members := make([]string, 0, len(active))
	for id := range active {
		members = append(members, id)
	}
	slices.Sort(members)

	ga.ringMux.Lock()
	defer ga.ringMux.Unlock()

	current := ga.ring.Members()
	slices.Sort(current)
	if slices.Equal(members, current) {
		return
	}

	newRing := consistent.New()
	for _, member := range members {
		newRing.Add(member)
	}
	ga.ring = newRing
	log.Printf("INFO: GameAssigner: ring updated, active instances: %v", members)
}

// IsResponsible reports whether this instance owns the given game id.
func (ga *GameAssigner) IsResponsible(gameID string) (bool, error) {
	ga.ringMux.RLock()
	defer ga.ringMux.RUnlock()

	if len(ga.ring.Members()) == 0 {
		return false, fmt.Errorf("game assignment ring is empty")
	}

	owner, err := ga.ring.Get(gameID)
	if err != nil {
		return false, fmt.Errorf("failed to resolve owner instance for game %s: %w", gameID, err)
	}
	return owner == ga.registrar.ServiceID(), nil
}
