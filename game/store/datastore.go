// game/store/datastore.go
package store

import (
	"go.mongodb.org/mongo-driver/mongo"
)

// Datastore bundles the per-entity stores into one value satisfying
// service.Datastore through method promotion.
type Datastore struct {
	*GameStore
	*TeamStore
	*PubStore
	*ConquestStore
}

// NewDatastore wires the entity stores and the transactional conquest store
// around one set of collections.
func NewDatastore(client *mongo.Client, games, teams, pubs *mongo.Collection) *Datastore {
	return &Datastore{
		GameStore:     NewGameStore(games),
		TeamStore:     NewTeamStore(teams),
		PubStore:      NewPubStore(pubs),
		ConquestStore: NewConquestStore(client, games, teams, pubs),
	}
}
