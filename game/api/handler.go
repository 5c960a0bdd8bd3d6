// game/api/handler.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/PubWars/GO-SERVICES/game/service"
	"github.com/PubWars/GO-SERVICES/shared/api"
	"github.com/PubWars/GO-SERVICES/shared/models"
)

// StatsReader exposes the games-won counters to the stats endpoint.
type StatsReader interface {
	GetGamesWon(ctx context.Context, userID string) (int64, error)
}

// PresenceReader lists the users currently connected to a game.
type PresenceReader interface {
	ListOnlineUsers(ctx context.Context, gameID string) ([]string, error)
}

// GameAPIHandlers holds references to the services that handle business logic.
type GameAPIHandlers struct {
	GameService     *service.GameService
	ConquestService *service.ConquestService
	Stats           StatsReader    // nil when no counter backend is configured
	Presence        PresenceReader // nil when no presence backend is configured
}

// NewGameAPIHandlers is the constructor for the API handlers.
func NewGameAPIHandlers(gs *service.GameService, cs *service.ConquestService, stats StatsReader, presence PresenceReader) *GameAPIHandlers {
	return &GameAPIHandlers{
		GameService:     gs,
		ConquestService: cs,
		Stats:           stats,
		Presence:        presence,
	}
}

// --- Request/Response DTOs ---

type CreateGameRequest struct {
	Name     string               `json:"name"`
	Settings *models.GameSettings `json:"settings,omitempty"`
}

type UpdateGameRequest struct {
	Name     string               `json:"name,omitempty"`
	Settings *models.GameSettings `json:"settings,omitempty"`
}

type CreateTeamRequest struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

type AddPubRequest struct {
	Name      string          `json:"name"`
	Position  models.Position `json:"position"`
	Neighbors []string        `json:"neighbors,omitempty"`
}

type PlayerStatsResponse struct {
	UserID   string `json:"userId"`
	GamesWon int64  `json:"gamesWon"`
}

type OnlineUsersResponse struct {
	GameID string   `json:"gameId"`
	Users  []string `json:"users"`
}

// --- Handler Methods ---

// CreateGameHandler handles requests to create a game in setup phase.
// POST /games
func (gah *GameAPIHandlers) CreateGameHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid request body")
		return
	}
	if req.Name == "" {
		api.WriteBadRequest(w, "Game name is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	game, err := gah.GameService.CreateGame(ctx, req.Name, api.UserID(r.Context()), req.Settings)
	if err != nil {
		log.Printf("ERROR: Failed to create game %q: %v", req.Name, err)
		api.WriteInternalServerError(w, "Failed to create game")
		return
	}

	api.WriteJSON(w, http.StatusCreated, game)
	log.Printf("INFO: Game %s created by user %s", game.ID, game.Admin)
}

// ListGamesHandler handles requests to list all games.
// GET /games
func (gah *GameAPIHandlers) ListGamesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	games, err := gah.GameService.ListGames(ctx)
	if err != nil {
		log.Printf("ERROR: Failed to list games: %v", err)
		api.WriteInternalServerError(w, "Failed to list games")
		return
	}
	api.WriteJSON(w, http.StatusOK, games)
}

// GetGameHandler handles requests to retrieve one game.
// GET /games/{id}
func (gah *GameAPIHandlers) GetGameHandler(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	game, err := gah.GameService.GetGame(ctx, gameID)
	if err != nil {
		gah.writeServiceError(w, gameID, err, "Failed to retrieve game")
		return
	}
	api.WriteJSON(w, http.StatusOK, game)
}

// UpdateGameHandler handles admin updates to a game during setup.
// PUT /games/{id}
func (gah *GameAPIHandlers) UpdateGameHandler(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]

	var req UpdateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	game, err := gah.GameService.UpdateGame(ctx, gameID, api.UserID(r.Context()), req.Name, req.Settings)
	if err != nil {
		gah.writeServiceError(w, gameID, err, "Failed to update game")
		return
	}
	api.WriteJSON(w, http.StatusOK, game)
}

// CreateTeamHandler handles requests to create a team, with the caller as its
// first member.
// POST /games/{id}/teams
func (gah *GameAPIHandlers) CreateTeamHandler(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]

	var req CreateTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid request body")
		return
	}
	if req.Name == "" {
		api.WriteBadRequest(w, "Team name is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	team, err := gah.GameService.CreateTeam(ctx, gameID, api.UserID(r.Context()), req.Name, req.Color)
	if err != nil {
		gah.writeServiceError(w, gameID, err, "Failed to create team")
		return
	}

	api.WriteJSON(w, http.StatusCreated, team)
	log.Printf("INFO: Team %s created in game %s", team.ID, gameID)
}

// JoinTeamHandler handles requests by the caller to join a team.
// POST /games/{id}/join/{teamId}
func (gah *GameAPIHandlers) JoinTeamHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	gameID := vars["id"]
	teamID := vars["teamId"]

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	team, err := gah.GameService.JoinTeam(ctx, gameID, teamID, api.UserID(r.Context()))
	if err != nil {
		gah.writeServiceError(w, gameID, err, "Failed to join team")
		return
	}
	api.WriteJSON(w, http.StatusOK, team)
}

// AddPubHandler handles admin requests to add a pub to the territory graph.
// POST /games/{id}/pubs
func (gah *GameAPIHandlers) AddPubHandler(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]

	var req AddPubRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid request body")
		return
	}
	if req.Name == "" {
		api.WriteBadRequest(w, "Pub name is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pub, err := gah.GameService.AddPub(ctx, gameID, api.UserID(r.Context()), req.Name, req.Position, req.Neighbors)
	if err != nil {
		gah.writeServiceError(w, gameID, err, "Failed to add pub")
		return
	}

	api.WriteJSON(w, http.StatusCreated, pub)
	log.Printf("INFO: Pub %s added to game %s", pub.ID, gameID)
}

// StartGameHandler handles admin requests to move a game from setup to active.
// POST /games/{id}/start
func (gah *GameAPIHandlers) StartGameHandler(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	game, err := gah.GameService.StartGame(ctx, gameID, api.UserID(r.Context()))
	if err != nil {
		gah.writeServiceError(w, gameID, err, "Failed to start game")
		return
	}

	api.WriteJSON(w, http.StatusOK, game)
	log.Printf("INFO: Game %s started", gameID)
}

// GetGameStateHandler returns the same full-state snapshot the websocket
// layer sends on join.
// GET /games/{id}/state
func (gah *GameAPIHandlers) GetGameStateHandler(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	snapshot, err := gah.ConquestService.Snapshot(ctx, gameID)
	if err != nil {
		gah.writeServiceError(w, gameID, err, "Failed to load game state")
		return
	}
	api.WriteJSON(w, http.StatusOK, snapshot)
}

// GetGameEventsHandler returns a game's append-only event ledger.
// GET /games/{id}/events
func (gah *GameAPIHandlers) GetGameEventsHandler(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	events, err := gah.GameService.GameEvents(ctx, gameID)
	if err != nil {
		gah.writeServiceError(w, gameID, err, "Failed to load game events")
		return
	}
	api.WriteJSON(w, http.StatusOK, events)
}

// GetOnlineUsersHandler lists the users currently connected to a game room.
// GET /games/{id}/online
func (gah *GameAPIHandlers) GetOnlineUsersHandler(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]
	if gah.Presence == nil {
		api.WriteJSON(w, http.StatusOK, OnlineUsersResponse{GameID: gameID, Users: []string{}})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	users, err := gah.Presence.ListOnlineUsers(ctx, gameID)
	if err != nil {
		log.Printf("ERROR: Failed to list online users of game %s: %v", gameID, err)
		api.WriteInternalServerError(w, "Failed to list online users")
		return
	}
	api.WriteJSON(w, http.StatusOK, OnlineUsersResponse{GameID: gameID, Users: users})
}

// GetPlayerStatsHandler returns a player's games-won counter.
// GET /players/{id}/stats
func (gah *GameAPIHandlers) GetPlayerStatsHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]
	if gah.Stats == nil {
		api.WriteJSON(w, http.StatusOK, PlayerStatsResponse{UserID: userID})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	gamesWon, err := gah.Stats.GetGamesWon(ctx, userID)
	if err != nil {
		log.Printf("ERROR: Failed to read stats of user %s: %v", userID, err)
		api.WriteInternalServerError(w, "Failed to read player stats")
		return
	}
	api.WriteJSON(w, http.StatusOK, PlayerStatsResponse{UserID: userID, GamesWon: gamesWon})
}

// writeServiceError maps service-layer sentinel errors to HTTP statuses.
func (gah *GameAPIHandlers) writeServiceError(w http.ResponseWriter, gameID string, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		api.WriteNotFound(w, fmt.Sprintf("Game %s not found", gameID))
	case errors.Is(err, service.ErrTeamNotFound), errors.Is(err, service.ErrTeamNotInGame):
		api.WriteNotFound(w, "Team not found in this game")
	case errors.Is(err, service.ErrPubNotFound), errors.Is(err, service.ErrPubNotInGame):
		api.WriteNotFound(w, "Pub not found in this game")
	case errors.Is(err, service.ErrNotGameAdmin):
		api.WriteForbidden(w, "Only the game admin may do this")
	case errors.Is(err, service.ErrGameNotInSetup):
		api.WriteConflict(w, "Game is no longer in setup")
	case errors.Is(err, service.ErrGameNotActive):
		api.WriteConflict(w, "Game is not active")
	case errors.Is(err, service.ErrMaxTeamsReached):
		api.WriteConflict(w, "Maximum number of teams reached")
	case errors.Is(err, service.ErrTeamFull):
		api.WriteConflict(w, "Team is full")
	case errors.Is(err, service.ErrAlreadyInTeam):
		api.WriteConflict(w, "You are already on a team in this game")
	case errors.Is(err, service.ErrNotEnoughTeams):
		api.WriteConflict(w, "At least two teams are required to start")
	default:
		log.Printf("ERROR: Request for game %s failed: %v", gameID, err)
		api.WriteInternalServerError(w, fallback)
	}
}

// RegisterRoutes registers all API endpoints for the Game Service.
// This method is called from main.go to set up the HTTP routes.
func (gah *GameAPIHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/games", gah.CreateGameHandler).Methods("POST")
	router.HandleFunc("/games", gah.ListGamesHandler).Methods("GET")
	router.HandleFunc("/games/{id}", gah.GetGameHandler).Methods("GET")
	router.HandleFunc("/games/{id}", gah.UpdateGameHandler).Methods("PUT")
	router.HandleFunc("/games/{id}/teams", gah.CreateTeamHandler).Methods("POST")
	router.HandleFunc("/games/{id}/join/{teamId}", gah.JoinTeamHandler).Methods("POST")
	router.HandleFunc("/games/{id}/pubs", gah.AddPubHandler).Methods("POST")
	router.HandleFunc("/games/{id}/start", gah.StartGameHandler).Methods("POST")
	router.HandleFunc("/games/{id}/state", gah.GetGameStateHandler).Methods("GET")
	router.HandleFunc("/games/{id}/events", gah.GetGameEventsHandler).Methods("GET")
	router.HandleFunc("/games/{id}/online", gah.GetOnlineUsersHandler).Methods("GET")

	router.HandleFunc("/players/{id}/stats", gah.GetPlayerStatsHandler).Methods("GET")
}
