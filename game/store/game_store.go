// game/store/game_store.go
package store

import (
	"context"
	"fmt"

	"github.com/PubWars/GO-SERVICES/shared/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GameStore is the MongoDB data store for game documents.
type GameStore struct {
	collection *mongo.Collection
}

// NewGameStore creates a new GameStore instance.
func NewGameStore(collection *mongo.Collection) *GameStore {
	return &GameStore{collection: collection}
}

// CreateGame inserts a new game document.
func (gs *GameStore) CreateGame(ctx context.Context, game *models.Game) error {
	if _, err := gs.collection.InsertOne(ctx, game); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("game %s already exists", game.ID)
		}
		return fmt.Errorf("failed to create game %s: %w", game.ID, err)
	}
	return nil
}

// GetGame retrieves a game by its id.
func (gs *GameStore) GetGame(ctx context.Context, gameID string) (*models.Game, error) {
	var game models.Game
	err := gs.collection.FindOne(ctx, bson.M{"_id": gameID}).Decode(&game)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get game %s: %w", gameID, err)
	}
	return &game, nil
}

// ListGames retrieves all games, newest first.
func (gs *GameStore) ListGames(ctx context.Context) ([]*models.Game, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := gs.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer cursor.Close(ctx)

	var games []*models.Game
	if err := cursor.All(ctx, &games); err != nil {
		return nil, fmt.Errorf("failed to decode games: %w", err)
	}
	return games, nil
}

// UpdateGame replaces a game document. Callers mutate a copy loaded in the
// same serialized section, so a full replace cannot lose concurrent writes.
func (gs *GameStore) UpdateGame(ctx context.Context, game *models.Game) error {
	res, err := gs.collection.ReplaceOne(ctx, bson.M{"_id": game.ID}, game)
	if err != nil {
		return fmt.Errorf("failed to update game %s: %w", game.ID, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
