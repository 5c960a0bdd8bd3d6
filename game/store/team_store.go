// game/store/team_store.go
package store

import (
	"context"
	"fmt"

	"github.com/PubWars/GO-SERVICES/shared/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// TeamStore is the MongoDB data store for team documents.
type TeamStore struct {
	collection *mongo.Collection
}

// NewTeamStore creates a new TeamStore instance.
func NewTeamStore(collection *mongo.Collection) *TeamStore {
	return &TeamStore{collection: collection}
}

// CreateTeam inserts a new team document.
func (ts *TeamStore) CreateTeam(ctx context.Context, team *models.Team) error {
	if _, err := ts.collection.InsertOne(ctx, team); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("team %s already exists", team.ID)
		}
		return fmt.Errorf("failed to create team %s: %w", team.ID, err)
	}
	return nil
}

// GetTeam retrieves a team by its id.
func (ts *TeamStore) GetTeam(ctx context.Context, teamID string) (*models.Team, error) {
	var team models.Team
	err := ts.collection.FindOne(ctx, bson.M{"_id": teamID}).Decode(&team)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get team %s: %w", teamID, err)
	}
	return &team, nil
}

// ListTeamsByGame retrieves every team belonging to a game.
func (ts *TeamStore) ListTeamsByGame(ctx context.Context, gameID string) ([]*models.Team, error) {
	cursor, err := ts.collection.Find(ctx, bson.M{"game": gameID})
	if err != nil {
		return nil, fmt.Errorf("failed to list teams for game %s: %w", gameID, err)
	}
	defer cursor.Close(ctx)

	var teams []*models.Team
	if err := cursor.All(ctx, &teams); err != nil {
		return nil, fmt.Errorf("failed to decode teams for game %s: %w", gameID, err)
	}
	return teams, nil
}

// UpdateTeam replaces a team document. Membership changes only happen during
// the setup phase; roster changes go through the conquest commit instead.
func (ts *TeamStore) UpdateTeam(ctx context.Context, team *models.Team) error {
	res, err := ts.collection.ReplaceOne(ctx, bson.M{"_id": team.ID}, team)
	if err != nil {
		return fmt.Errorf("failed to update team %s: %w", team.ID, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
