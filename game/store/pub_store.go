// game/store/pub_store.go
package store

import (
	"context"
	"fmt"

	"github.com/PubWars/GO-SERVICES/shared/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// PubStore is the MongoDB data store for pub documents.
type PubStore struct {
	collection *mongo.Collection
}

// NewPubStore creates a new PubStore instance.
func NewPubStore(collection *mongo.Collection) *PubStore {
	return &PubStore{collection: collection}
}

// CreatePub inserts a new pub document.
func (ps *PubStore) CreatePub(ctx context.Context, pub *models.Pub) error {
	if _, err := ps.collection.InsertOne(ctx, pub); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("pub %s already exists", pub.ID)
		}
		return fmt.Errorf("failed to create pub %s: %w", pub.ID, err)
	}
	return nil
}

// GetPub retrieves a pub by its id.
func (ps *PubStore) GetPub(ctx context.Context, pubID string) (*models.Pub, error) {
	var pub models.Pub
	err := ps.collection.FindOne(ctx, bson.M{"_id": pubID}).Decode(&pub)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get pub %s: %w", pubID, err)
	}
	return &pub, nil
}

// ListPubsByGame retrieves every pub in a game's territory graph.
func (ps *PubStore) ListPubsByGame(ctx context.Context, gameID string) ([]*models.Pub, error) {
	cursor, err := ps.collection.Find(ctx, bson.M{"game": gameID})
	if err != nil {
		return nil, fmt.Errorf("failed to list pubs for game %s: %w", gameID, err)
	}
	defer cursor.Close(ctx)

	var pubs []*models.Pub
	if err := cursor.All(ctx, &pubs); err != nil {
		return nil, fmt.Errorf("failed to decode pubs for game %s: %w", gameID, err)
	}
	return pubs, nil
}

// AddPubNeighbor adds neighborID to a pub's adjacency set. $addToSet keeps the
// insert idempotent; graph construction calls this in both directions so
// adjacency stays symmetric.
func (ps *PubStore) AddPubNeighbor(ctx context.Context, pubID, neighborID string) error {
	filter := bson.M{"_id": pubID}
	update := bson.M{"$addToSet": bson.M{"neighbors": neighborID}}
	res, err := ps.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to add neighbor %s to pub %s: %w", neighborID, pubID, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
