// game/store/conquest_store.go
package store

import (
	"context"
	"fmt"

	"github.com/PubWars/GO-SERVICES/shared/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ConquestStore commits the multi-document state changes of a conquest. The
// original system saved pub, rosters and event log as independent writes,
// which could leave the roster mirrors disagreeing with true ownership after
// a mid-sequence failure; here the whole set goes through one MongoDB
// transaction so either everything lands or nothing does.
type ConquestStore struct {
	client *mongo.Client
	games  *mongo.Collection
	teams  *mongo.Collection
	pubs   *mongo.Collection
}

// NewConquestStore creates a ConquestStore. The client is needed to start
// sessions; it must point at a replica set for transactions to work.
func NewConquestStore(client *mongo.Client, games, teams, pubs *mongo.Collection) *ConquestStore {
	return &ConquestStore{
		client: client,
		games:  games,
		teams:  teams,
		pubs:   pubs,
	}
}

// CommitConquest persists all entities mutated by one conquest: the captured
// pub, the conqueror's roster, the previous owner's roster (nil when the pub
// was unclaimed) and the game document, which carries the event log and, when
// the conquest ended the game, the completion fields as well. Documents are
// full replaces; the per-game serialization upstream guarantees no concurrent
// writer exists for any of them.
func (cs *ConquestStore) CommitConquest(ctx context.Context, game *models.Game, pub *models.Pub, conqueror *models.Team, previous *models.Team) error {
	session, err := cs.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session for conquest commit: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := cs.pubs.ReplaceOne(sc, bson.M{"_id": pub.ID}, pub); err != nil {
			return nil, fmt.Errorf("pub %s: %w", pub.ID, err)
		}
		if _, err := cs.teams.ReplaceOne(sc, bson.M{"_id": conqueror.ID}, conqueror); err != nil {
			return nil, fmt.Errorf("team %s: %w", conqueror.ID, err)
		}
		if previous != nil {
			if _, err := cs.teams.ReplaceOne(sc, bson.M{"_id": previous.ID}, previous); err != nil {
				return nil, fmt.Errorf("previous owner %s: %w", previous.ID, err)
			}
		}
		if _, err := cs.games.ReplaceOne(sc, bson.M{"_id": game.ID}, game); err != nil {
			return nil, fmt.Errorf("game %s: %w", game.ID, err)
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("conquest commit transaction failed: %w", err)
	}
	return nil
}
