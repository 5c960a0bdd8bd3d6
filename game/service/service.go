// game/service/service.go

// Package service implements the business logic of the conquest game:
// setup flows, the serialized conquest transaction and win finalization.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/PubWars/GO-SERVICES/shared/models"
)

// Custom errors for clear communication to the API and socket layers.
var (
	ErrGameNotFound    = fmt.Errorf("game not found")
	ErrTeamNotFound    = fmt.Errorf("team not found")
	ErrPubNotFound     = fmt.Errorf("pub not found")
	ErrGameNotActive   = fmt.Errorf("game is not active")
	ErrGameNotInSetup  = fmt.Errorf("game is not in setup phase")
	ErrTeamNotInGame   = fmt.Errorf("team does not belong to this game")
	ErrPubNotInGame    = fmt.Errorf("pub does not belong to this game")
	ErrNotTeamMember   = fmt.Errorf("user is not a member of this team")
	ErrNotGameAdmin    = fmt.Errorf("user is not the game admin")
	ErrMaxTeamsReached = fmt.Errorf("maximum number of teams reached")
	ErrTeamFull        = fmt.Errorf("team is full")
	ErrAlreadyInTeam   = fmt.Errorf("user already belongs to a team in this game")
	ErrNotEnoughTeams  = fmt.Errorf("need at least 2 teams to start a game")
	ErrNotResponsible  = fmt.Errorf("this instance does not own the requested game")
)

// Datastore is the persistence surface the services need. store.Datastore
// implements it against MongoDB; tests substitute an in-memory fake.
type Datastore interface {
	CreateGame(ctx context.Context, game *models.Game) error
	GetGame(ctx context.Context, gameID string) (*models.Game, error)
	ListGames(ctx context.Context) ([]*models.Game, error)
	UpdateGame(ctx context.Context, game *models.Game) error

	CreateTeam(ctx context.Context, team *models.Team) error
	GetTeam(ctx context.Context, teamID string) (*models.Team, error)
	ListTeamsByGame(ctx context.Context, gameID string) ([]*models.Team, error)
	UpdateTeam(ctx context.Context, team *models.Team) error

	CreatePub(ctx context.Context, pub *models.Pub) error
	GetPub(ctx context.Context, pubID string) (*models.Pub, error)
	ListPubsByGame(ctx context.Context, gameID string) ([]*models.Pub, error)
	AddPubNeighbor(ctx context.Context, pubID, neighborID string) error

	CommitConquest(ctx context.Context, game *models.Game, pub *models.Pub, conqueror *models.Team, previous *models.Team) error
}

// StatsStore records per-user win counters.
type StatsStore interface {
	IncrementGamesWon(ctx context.Context, userID string) error
}

// Assigner decides whether this instance owns a game in a multi-instance
// deployment. cluster.GameAssigner implements it.
type Assigner interface {
	IsResponsible(gameID string) (bool, error)
}

// ConquestEvent is the outbound domain event for an applied conquest. Team
// name and color are denormalized for client convenience.
type ConquestEvent struct {
	GameID        string    `json:"gameId"`
	PubID         string    `json:"pubId"`
	PubName       string    `json:"pubName"`
	TeamID        string    `json:"teamId"`
	TeamName      string    `json:"teamName"`
	TeamColor     string    `json:"teamColor"`
	ConqueredBy   string    `json:"conqueredBy"`
	PreviousOwner string    `json:"previousOwner,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// GameOverEvent is the outbound domain event for a finished game.
type GameOverEvent struct {
	GameID    string    `json:"gameId"`
	TeamID    string    `json:"teamId"`
	TeamName  string    `json:"teamName"`
	TeamColor string    `json:"teamColor"`
	EndTime   time.Time `json:"endTime"`
}

// EventPublisher fans domain events out to interested observers. The core
// never depends on delivery semantics; the socket hub implements this.
type EventPublisher interface {
	PublishConquest(ev ConquestEvent)
	PublishGameOver(ev GameOverEvent)
}
