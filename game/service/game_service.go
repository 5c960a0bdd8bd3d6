// game/service/game_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PubWars/GO-SERVICES/game/store"
	"github.com/PubWars/GO-SERVICES/shared/models"
	"github.com/google/uuid"
)

// GameService covers the setup-phase flows: creating games, teams and pubs,
// joining teams and starting a game. Once a game is active, only the
// ConquestService mutates it.
type GameService struct {
	data Datastore
}

// NewGameService creates a GameService instance.
func NewGameService(data Datastore) *GameService {
	return &GameService{data: data}
}

// CreateGame creates a new game in setup phase with the caller as admin.
func (gs *GameService) CreateGame(ctx context.Context, name, adminID string, settings *models.GameSettings) (*models.Game, error) {
	now := time.Now().UTC()
	game := &models.Game{
		ID:        uuid.NewString(),
		Name:      name,
		Admin:     adminID,
		Status:    models.GameStatusSetup,
		Teams:     []string{},
		Pubs:      []string{},
		Settings:  models.DefaultGameSettings(),
		Events:    []models.GameEvent{},
		CreatedAt: &now,
	}
	if settings != nil {
		applySettings(&game.Settings, settings)
	}

	if err := gs.data.CreateGame(ctx, game); err != nil {
		return nil, fmt.Errorf("service failed to create game: %w", err)
	}
	return game, nil
}

// ListGames returns all games, newest first.
func (gs *GameService) ListGames(ctx context.Context) ([]*models.Game, error) {
	return gs.data.ListGames(ctx)
}

// GetGame returns one game by id.
func (gs *GameService) GetGame(ctx context.Context, gameID string) (*models.Game, error) {
	game, err := gs.data.GetGame(ctx, gameID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrGameNotFound
	}
	return game, err
}

// UpdateGame lets the admin rename a game or adjust its settings during
// setup. Status is deliberately not updatable here; it only moves through
// StartGame and the win evaluator.
func (gs *GameService) UpdateGame(ctx context.Context, gameID, userID, name string, settings *models.GameSettings) (*models.Game, error) {
	game, err := gs.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game.Admin != userID {
		return nil, ErrNotGameAdmin
	}
	if game.Status != models.GameStatusSetup {
		return nil, ErrGameNotInSetup
	}

	if name != "" {
		game.Name = name
	}
	if settings != nil {
		applySettings(&game.Settings, settings)
	}

	if err := gs.data.UpdateGame(ctx, game); err != nil {
		return nil, fmt.Errorf("service failed to update game %s: %w", gameID, err)
	}
	return game, nil
}

// CreateTeam creates a team during setup with the creating user as its first
// member. A user may belong to at most one team per game.
func (gs *GameService) CreateTeam(ctx context.Context, gameID, userID, name, color string) (*models.Team, error) {
	game, err := gs.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game.Status != models.GameStatusSetup {
		return nil, ErrGameNotInSetup
	}
	if len(game.Teams) >= game.Settings.MaxTeams {
		return nil, ErrMaxTeamsReached
	}
	if err := gs.ensureNotInAnyTeam(ctx, gameID, userID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	team := &models.Team{
		ID:        uuid.NewString(),
		Name:      name,
		Color:     color,
		Game:      gameID,
		Members:   []string{userID},
		Pubs:      []string{},
		CreatedAt: &now,
	}
	if team.Color == "" {
		team.Color = "#FF5733"
	}

	if err := gs.data.CreateTeam(ctx, team); err != nil {
		return nil, fmt.Errorf("service failed to create team: %w", err)
	}

	game.Teams = append(game.Teams, team.ID)
	game.Events = append(game.Events, models.GameEvent{
		Type:      models.EventTeamJoin,
		Team:      team.ID,
		User:      userID,
		Timestamp: now,
		Message:   fmt.Sprintf("Team %s was created", team.Name),
	})
	if err := gs.data.UpdateGame(ctx, game); err != nil {
		return nil, fmt.Errorf("service failed to attach team %s to game %s: %w", team.ID, gameID, err)
	}
	return team, nil
}

// JoinTeam adds a user to a team during setup, enforcing the per-team player
// cap and the one-team-per-user rule.
func (gs *GameService) JoinTeam(ctx context.Context, gameID, teamID, userID string) (*models.Team, error) {
	game, err := gs.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game.Status != models.GameStatusSetup {
		return nil, ErrGameNotInSetup
	}

	team, err := gs.data.GetTeam(ctx, teamID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	if team.Game != gameID {
		return nil, ErrTeamNotInGame
	}
	if len(team.Members) >= game.Settings.MaxPlayersPerTeam {
		return nil, ErrTeamFull
	}
	if err := gs.ensureNotInAnyTeam(ctx, gameID, userID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	team.Members = append(team.Members, userID)
	if err := gs.data.UpdateTeam(ctx, team); err != nil {
		return nil, fmt.Errorf("service failed to add user %s to team %s: %w", userID, teamID, err)
	}

	game.Events = append(game.Events, models.GameEvent{
		Type:      models.EventTeamJoin,
		Team:      teamID,
		User:      userID,
		Timestamp: now,
		Message:   fmt.Sprintf("A player joined team %s", team.Name),
	})
	if err := gs.data.UpdateGame(ctx, game); err != nil {
		return nil, fmt.Errorf("service failed to log team join for game %s: %w", gameID, err)
	}
	return team, nil
}

// AddPub adds a pub to a game's territory graph during setup. Neighbor links
// are mirrored in both directions so adjacency stays symmetric.
func (gs *GameService) AddPub(ctx context.Context, gameID, userID, name string, position models.Position, neighborIDs []string) (*models.Pub, error) {
	game, err := gs.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game.Admin != userID {
		return nil, ErrNotGameAdmin
	}
	if game.Status != models.GameStatusSetup {
		return nil, ErrGameNotInSetup
	}

	// Validate neighbors up front so a bad id cannot leave a half-linked pub.
	for _, neighborID := range neighborIDs {
		neighbor, err := gs.data.GetPub(ctx, neighborID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, ErrPubNotFound
			}
			return nil, err
		}
		if neighbor.Game != gameID {
			return nil, ErrPubNotInGame
		}
	}

	pub := &models.Pub{
		ID:              uuid.NewString(),
		Name:            name,
		Game:            gameID,
		Neighbors:       append([]string{}, neighborIDs...),
		Position:        position,
		ConquestHistory: []models.ConquestRecord{},
	}
	if err := gs.data.CreatePub(ctx, pub); err != nil {
		return nil, fmt.Errorf("service failed to create pub: %w", err)
	}

	// Mirror the adjacency on each neighbor.
	for _, neighborID := range neighborIDs {
		if err := gs.data.AddPubNeighbor(ctx, neighborID, pub.ID); err != nil {
			return nil, fmt.Errorf("service failed to mirror neighbor link %s <-> %s: %w", pub.ID, neighborID, err)
		}
	}

	game.Pubs = append(game.Pubs, pub.ID)
	if err := gs.data.UpdateGame(ctx, game); err != nil {
		return nil, fmt.Errorf("service failed to attach pub %s to game %s: %w", pub.ID, gameID, err)
	}
	return pub, nil
}

// StartGame moves a game from setup to active. Requires the admin and at
// least two teams; the transition is one-way.
func (gs *GameService) StartGame(ctx context.Context, gameID, userID string) (*models.Game, error) {
	game, err := gs.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game.Admin != userID {
		return nil, ErrNotGameAdmin
	}
	if game.Status != models.GameStatusSetup {
		return nil, ErrGameNotInSetup
	}
	if len(game.Teams) < 2 {
		return nil, ErrNotEnoughTeams
	}

	now := time.Now().UTC()
	game.Status = models.GameStatusActive
	game.Settings.StartTime = &now
	game.Events = append(game.Events, models.GameEvent{
		Type:      models.EventGameStart,
		User:      userID,
		Timestamp: now,
		Message:   fmt.Sprintf("Game %s started", game.Name),
	})

	if err := gs.data.UpdateGame(ctx, game); err != nil {
		return nil, fmt.Errorf("service failed to start game %s: %w", gameID, err)
	}
	return game, nil
}

// GameEvents returns a game's append-only event ledger.
func (gs *GameService) GameEvents(ctx context.Context, gameID string) ([]models.GameEvent, error) {
	game, err := gs.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return game.Events, nil
}

// TeamForUser resolves the team a user belongs to within a game, or
// ErrNotTeamMember when they have none. The socket layer uses this to turn a
// verified identity into a conquering team.
func (gs *GameService) TeamForUser(ctx context.Context, gameID, userID string) (*models.Team, error) {
	teams, err := gs.data.ListTeamsByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	for _, team := range teams {
		if team.HasMember(userID) {
			return team, nil
		}
	}
	return nil, ErrNotTeamMember
}

func (gs *GameService) ensureNotInAnyTeam(ctx context.Context, gameID, userID string) error {
	teams, err := gs.data.ListTeamsByGame(ctx, gameID)
	if err != nil {
		return err
	}
	for _, team := range teams {
		if team.HasMember(userID) {
			return ErrAlreadyInTeam
		}
	}
	return nil
}

func applySettings(dst *models.GameSettings, src *models.GameSettings) {
	if src.MaxTeams > 0 {
		dst.MaxTeams = src.MaxTeams
	}
	if src.MaxPlayersPerTeam > 0 {
		dst.MaxPlayersPerTeam = src.MaxPlayersPerTeam
	}
	if src.ConquestSpeed > 0 {
		dst.ConquestSpeed = src.ConquestSpeed
	}
}
