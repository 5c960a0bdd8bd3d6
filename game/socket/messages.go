// game/socket/messages.go
package socket

import "encoding/json"

// Inbound actions a client may send over the websocket.
const (
	actionJoinGame    = "join-game"
	actionLeaveGame   = "leave-game"
	actionConquerPub  = "conquer-pub"
	actionSendMessage = "send-message"
)

// Outbound actions broadcast to game rooms or sent to single clients.
const (
	actionGameState    = "game-state"
	actionUserJoined   = "user-joined"
	actionUserLeft     = "user-left"
	actionPubConquered = "pub-conquered"
	actionGameOver     = "game-over"
	actionChatMessage  = "chat-message"
	actionError        = "error"
)

// inboundMessage is the envelope for every client request.
type inboundMessage struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

// outboundMessage is the envelope for every server push.
type outboundMessage struct {
	Action string      `json:"action"`
	Data   interface{} `json:"data"`
}

type joinGamePayload struct {
	GameID string `json:"gameId"`
}

type conquerPubPayload struct {
	GameID string `json:"gameId"`
	PubID  string `json:"pubId"`
}

type chatPayload struct {
	GameID  string `json:"gameId"`
	Message string `json:"message"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type userPresencePayload struct {
	UserID string `json:"userId"`
}

type chatBroadcast struct {
	UserID    string `json:"userId"`
	TeamName  string `json:"teamName"`
	TeamColor string `json:"teamColor"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}
