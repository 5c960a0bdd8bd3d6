// game/socket/hub.go
package socket

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/PubWars/GO-SERVICES/game/service"
	"github.com/PubWars/GO-SERVICES/shared/api"
	"github.com/PubWars/GO-SERVICES/shared/models"
)

// ConquestAttempter is the slice of the conquest service the hub drives.
type ConquestAttempter interface {
	AttemptConquest(ctx context.Context, gameID, teamID, pubID, userID string) (*service.ConquestResult, error)
	Snapshot(ctx context.Context, gameID string) (*service.GameSnapshot, error)
}

// TeamResolver maps a verified user to their team within a game.
type TeamResolver interface {
	TeamForUser(ctx context.Context, gameID, userID string) (*models.Team, error)
}

// PresenceTracker records which users are connected to which game.
type PresenceTracker interface {
	SetUserOnline(ctx context.Context, gameID, userID string) error
	SetUserOffline(ctx context.Context, gameID, userID string) error
}

// presenceRefreshInterval must stay below the presence key TTL so that a
// connected but idle client never flickers offline.
const presenceRefreshInterval = 10 * time.Second

// Hub upgrades websocket connections, tracks game rooms and fans events out
// to every client in a room. It is the EventPublisher the conquest service
// broadcasts through.
type Hub struct {
	verifier  api.IdentityVerifier
	conquests ConquestAttempter
	teams     TeamResolver
	presence  PresenceTracker

	upgrader websocket.Upgrader

	mu    sync.RWMutex
	rooms map[string]map[*client]struct{}
}

// NewHub creates a Hub. presence may be nil when no presence backend is
// configured.
func NewHub(verifier api.IdentityVerifier, conquests ConquestAttempter, teams TeamResolver, presence PresenceTracker) *Hub {
	return &Hub{
		verifier:  verifier,
		conquests: conquests,
		teams:     teams,
		presence:  presence,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		rooms: make(map[string]map[*client]struct{}),
	}
}

// HandleWS authenticates the request, upgrades it and runs the read loop
// until the client disconnects.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	userID, err := h.verifier.Verify(r.Context(), api.BearerToken(r))
	if err != nil || userID == "" {
		api.WriteUnauthorized(w, "invalid or missing token")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WARN: Websocket upgrade failed for user %s: %v", userID, err)
		return
	}

	c := newClient(conn, userID)
	log.Printf("INFO: Websocket connected for user %s", userID)

	stopRefresh := make(chan struct{})
	go h.refreshPresence(c, stopRefresh)

	h.readLoop(c)

	close(stopRefresh)
	h.disconnect(c)
	conn.Close()
	log.Printf("INFO: Websocket disconnected for user %s", userID)
}

func (h *Hub) readLoop(c *client) {
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WARN: Websocket read error for user %s: %v", c.userID, err)
			}
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.sendError("malformed message")
			continue
		}
		h.dispatch(c, msg)
	}
}

func (h *Hub) dispatch(c *client, msg inboundMessage) {
	ctx := context.Background()
	switch msg.Action {
	case actionJoinGame:
		var p joinGamePayload
		if err := json.Unmarshal(msg.Data, &p); err != nil || p.GameID == "" {
			c.sendError("join-game requires a gameId")
			return
		}
		h.handleJoin(ctx, c, p.GameID)
	case actionLeaveGame:
		h.handleLeave(ctx, c)
	case actionConquerPub:
		var p conquerPubPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil || p.GameID == "" || p.PubID == "" {
			c.sendError("conquer-pub requires a gameId and a pubId")
			return
		}
		h.handleConquer(ctx, c, p.GameID, p.PubID)
	case actionSendMessage:
		var p chatPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil || p.GameID == "" || p.Message == "" {
			c.sendError("send-message requires a gameId and a message")
			return
		}
		h.handleChat(ctx, c, p.GameID, p.Message)
	default:
		c.sendError("unknown action: " + msg.Action)
	}
}

func (h *Hub) handleJoin(ctx context.Context, c *client, gameID string) {
	snapshot, err := h.conquests.Snapshot(ctx, gameID)
	if err != nil {
		if errors.Is(err, service.ErrGameNotFound) {
			c.sendError("game not found")
			return
		}
		log.Printf("ERROR: Failed to load snapshot of game %s: %v", gameID, err)
		c.sendError("failed to load game state")
		return
	}

	// A client is in one room at a time; joining a new game leaves the old.
	h.handleLeave(ctx, c)

	h.mu.Lock()
	room, ok := h.rooms[gameID]
	if !ok {
		room = make(map[*client]struct{})
		h.rooms[gameID] = room
	}
	room[c] = struct{}{}
	h.mu.Unlock()
	c.setGame(gameID)

	if h.presence != nil {
		if err := h.presence.SetUserOnline(ctx, gameID, c.userID); err != nil {
			log.Printf("WARN: Failed to mark user %s online in game %s: %v", c.userID, gameID, err)
		}
	}

	if err := c.send(actionGameState, snapshot); err != nil {
		log.Printf("WARN: Failed to send game state to user %s: %v", c.userID, err)
		return
	}
	h.broadcastExcept(gameID, c, actionUserJoined, userPresencePayload{UserID: c.userID})
}

func (h *Hub) handleLeave(ctx context.Context, c *client) {
	gameID := c.currentGame()
	if gameID == "" {
		return
	}
	c.setGame("")

	h.mu.Lock()
	if room, ok := h.rooms[gameID]; ok {
		delete(room, c)
		if len(room) == 0 {
			delete(h.rooms, gameID)
		}
	}
	h.mu.Unlock()

	if h.presence != nil {
		if err := h.presence.SetUserOffline(ctx, gameID, c.userID); err != nil {
			log.Printf("WARN: Failed to mark user %s offline in game %s: %v", c.userID, gameID, err)
		}
	}
	h.broadcast(gameID, actionUserLeft, userPresencePayload{UserID: c.userID})
}

func (h *Hub) handleConquer(ctx context.Context, c *client, gameID, pubID string) {
	team, err := h.teams.TeamForUser(ctx, gameID, c.userID)
	if err != nil {
		if errors.Is(err, service.ErrNotTeamMember) {
			c.sendError("you are not on a team in this game")
			return
		}
		log.Printf("ERROR: Failed to resolve team of user %s in game %s: %v", c.userID, gameID, err)
		c.sendError("failed to resolve your team")
		return
	}

	result, err := h.conquests.AttemptConquest(ctx, gameID, team.ID, pubID, c.userID)
	if err != nil {
		c.sendError(conquestErrorMessage(err))
		return
	}
	if result.Denied {
		c.sendError(result.Reason.Message())
	}
	// On success the conquest service publishes pub-conquered (and game-over)
	// through this hub; nothing more to send here.
}

func (h *Hub) handleChat(ctx context.Context, c *client, gameID, message string) {
	if c.currentGame() != gameID {
		c.sendError("join the game before chatting")
		return
	}

	broadcastMsg := chatBroadcast{
		UserID:    c.userID,
		Message:   message,
		Timestamp: time.Now().Unix(),
	}
	if team, err := h.teams.TeamForUser(ctx, gameID, c.userID); err == nil {
		broadcastMsg.TeamName = team.Name
		broadcastMsg.TeamColor = team.Color
	}
	h.broadcast(gameID, actionChatMessage, broadcastMsg)
}

func (h *Hub) disconnect(c *client) {
	h.handleLeave(context.Background(), c)
}

// PublishConquest implements service.EventPublisher.
func (h *Hub) PublishConquest(event service.ConquestEvent) {
	h.broadcast(event.GameID, actionPubConquered, event)
}

// PublishGameOver implements service.EventPublisher.
func (h *Hub) PublishGameOver(event service.GameOverEvent) {
	h.broadcast(event.GameID, actionGameOver, event)
}

func (h *Hub) broadcast(gameID, action string, data interface{}) {
	h.broadcastExcept(gameID, nil, action, data)
}

func (h *Hub) broadcastExcept(gameID string, skip *client, action string, data interface{}) {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.rooms[gameID]))
	for c := range h.rooms[gameID] {
		if c != skip {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if err := c.send(action, data); err != nil {
			log.Printf("WARN: Failed to push %s to user %s, dropping connection: %v", action, c.userID, err)
			c.conn.Close()
		}
	}
}

// refreshPresence keeps the presence key of a joined client alive until the
// connection ends.
func (h *Hub) refreshPresence(c *client, stop <-chan struct{}) {
	if h.presence == nil {
		return
	}
	ticker := time.NewTicker(presenceRefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			gameID := c.currentGame()
			if gameID == "" {
				continue
			}
			if err := h.presence.SetUserOnline(context.Background(), gameID, c.userID); err != nil {
				log.Printf("WARN: Failed to refresh presence of user %s in game %s: %v", c.userID, gameID, err)
			}
		}
	}
}

func conquestErrorMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return "game not found"
	case errors.Is(err, service.ErrGameNotActive):
		return "the game is not active"
	case errors.Is(err, service.ErrPubNotFound), errors.Is(err, service.ErrPubNotInGame):
		return "pub not found in this game"
	case errors.Is(err, service.ErrTeamNotFound), errors.Is(err, service.ErrTeamNotInGame):
		return "team not found in this game"
	case errors.Is(err, service.ErrNotTeamMember):
		return "you are not on this team"
	case errors.Is(err, service.ErrNotResponsible):
		return "this server does not handle this game"
	default:
		return "conquest failed"
	}
}
