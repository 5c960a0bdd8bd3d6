// shared/models/game.go
package models

import "time"

// GameStatus is the lifecycle phase of a game. Transitions are one-directional:
// setup -> active -> completed. Nothing ever leaves completed.
type GameStatus string

const (
	GameStatusSetup     GameStatus = "setup"
	GameStatusActive    GameStatus = "active"
	GameStatusCompleted GameStatus = "completed"
)

// EventType enumerates the kinds of entries in a game's event log.
type EventType string

const (
	EventConquest  EventType = "conquest"
	EventTeamJoin  EventType = "team_join"
	EventGameStart EventType = "game_start"
	EventGameEnd   EventType = "game_end"
)

// GameEvent is a single entry in the append-only game event log.
type GameEvent struct {
	Type      EventType `bson:"type" json:"type"`
	Team      string    `bson:"team,omitempty" json:"team,omitempty"`
	Pub       string    `bson:"pub,omitempty" json:"pub,omitempty"`
	User      string    `bson:"user,omitempty" json:"user,omitempty"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	Message   string    `bson:"message" json:"message"`
}

// GameSettings holds the per-game caps and timing info configured by the admin.
type GameSettings struct {
	MaxTeams          int        `bson:"max_teams" json:"maxTeams"`
	MaxPlayersPerTeam int        `bson:"max_players_per_team" json:"maxPlayersPerTeam"`
	ConquestSpeed     int        `bson:"conquest_speed" json:"conquestSpeed"`
	StartTime         *time.Time `bson:"start_time,omitempty" json:"startTime,omitempty"`
	EndTime           *time.Time `bson:"end_time,omitempty" json:"endTime,omitempty"`
}

// DefaultGameSettings mirrors the caps a new game gets when the admin does not
// override them.
func DefaultGameSettings() GameSettings {
	return GameSettings{
		MaxTeams:          4,
		MaxPlayersPerTeam: 5,
		ConquestSpeed:     1,
	}
}

// Game represents a territory conquest match stored persistently in MongoDB.
// Events is append-only; Winner stays empty until the win evaluator completes
// the game.
type Game struct {
	ID        string       `bson:"_id" json:"id"`
	Name      string       `bson:"name" json:"name"`
	Admin     string       `bson:"admin" json:"admin"` // user id of the game admin
	Status    GameStatus   `bson:"status" json:"status"`
	Winner    string       `bson:"winner,omitempty" json:"winner,omitempty"`
	Teams     []string     `bson:"teams" json:"teams"`
	Pubs      []string     `bson:"pubs" json:"pubs"`
	Settings  GameSettings `bson:"settings" json:"settings"`
	Events    []GameEvent  `bson:"game_events" json:"gameEvents"`
	CreatedAt *time.Time   `bson:"created_at,omitempty" json:"createdAt,omitempty"`
}
