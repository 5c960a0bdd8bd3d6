// game/socket/hub_test.go
package socket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PubWars/GO-SERVICES/game/conquest"
	"github.com/PubWars/GO-SERVICES/game/service"
	"github.com/PubWars/GO-SERVICES/shared/api"
	"github.com/PubWars/GO-SERVICES/shared/models"
)

type fakeConquests struct {
	snapshot *service.GameSnapshot
	result   *service.ConquestResult
	err      error

	attempts []string // "gameID/teamID/pubID/userID"
}

func (f *fakeConquests) AttemptConquest(_ context.Context, gameID, teamID, pubID, userID string) (*service.ConquestResult, error) {
	f.attempts = append(f.attempts, strings.Join([]string{gameID, teamID, pubID, userID}, "/"))
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeConquests) Snapshot(_ context.Context, gameID string) (*service.GameSnapshot, error) {
	if f.snapshot == nil || f.snapshot.GameID != gameID {
		return nil, service.ErrGameNotFound
	}
	return f.snapshot, nil
}

type fakeTeams struct {
	teams map[string]*models.Team // userID -> team
}

func (f *fakeTeams) TeamForUser(_ context.Context, _, userID string) (*models.Team, error) {
	team, ok := f.teams[userID]
	if !ok {
		return nil, service.ErrNotTeamMember
	}
	return team, nil
}

type received struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

func dial(t *testing.T, server *httptest.Server, userID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "?token=" + userID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendAction(t *testing.T, conn *websocket.Conn, action string, data interface{}) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(inboundMessage{Action: action, Data: raw}))
}

func readAction(t *testing.T, conn *websocket.Conn) received {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg received
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func newTestHub(conquests *fakeConquests, teams *fakeTeams) (*Hub, *httptest.Server) {
	hub := NewHub(api.OpaqueVerifier{}, conquests, teams, nil)
	server := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	return hub, server
}

func TestHub_RejectsMissingToken(t *testing.T) {
	_, server := newTestHub(&fakeConquests{}, &fakeTeams{})
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHub_JoinGameSendsStateAndAnnounces(t *testing.T) {
	conquests := &fakeConquests{
		snapshot: &service.GameSnapshot{GameID: "g1", Name: "Friday Crawl", Status: models.GameStatusActive},
	}
	_, server := newTestHub(conquests, &fakeTeams{})
	defer server.Close()

	alice := dial(t, server, "alice")
	sendAction(t, alice, actionJoinGame, joinGamePayload{GameID: "g1"})

	msg := readAction(t, alice)
	require.Equal(t, actionGameState, msg.Action)
	var snapshot service.GameSnapshot
	require.NoError(t, json.Unmarshal(msg.Data, &snapshot))
	assert.Equal(t, "g1", snapshot.GameID)
	assert.Equal(t, "Friday Crawl", snapshot.Name)

	bob := dial(t, server, "bob")
	sendAction(t, bob, actionJoinGame, joinGamePayload{GameID: "g1"})
	require.Equal(t, actionGameState, readAction(t, bob).Action)

	msg = readAction(t, alice)
	require.Equal(t, actionUserJoined, msg.Action)
	var joined userPresencePayload
	require.NoError(t, json.Unmarshal(msg.Data, &joined))
	assert.Equal(t, "bob", joined.UserID)
}

func TestHub_JoinUnknownGame(t *testing.T) {
	_, server := newTestHub(&fakeConquests{}, &fakeTeams{})
	defer server.Close()

	alice := dial(t, server, "alice")
	sendAction(t, alice, actionJoinGame, joinGamePayload{GameID: "nope"})

	msg := readAction(t, alice)
	require.Equal(t, actionError, msg.Action)
	var payload errorPayload
	require.NoError(t, json.Unmarshal(msg.Data, &payload))
	assert.Equal(t, "game not found", payload.Message)
}

func TestHub_ConquerResolvesTeamAndReportsDenial(t *testing.T) {
	conquests := &fakeConquests{
		snapshot: &service.GameSnapshot{GameID: "g1", Status: models.GameStatusActive},
		result:   &service.ConquestResult{Denied: true, Reason: conquest.DenialNotAdjacent},
	}
	teams := &fakeTeams{teams: map[string]*models.Team{
		"alice": {ID: "t1", Name: "Red", Color: "#FF0000", Game: "g1"},
	}}
	_, server := newTestHub(conquests, teams)
	defer server.Close()

	alice := dial(t, server, "alice")
	sendAction(t, alice, actionJoinGame, joinGamePayload{GameID: "g1"})
	require.Equal(t, actionGameState, readAction(t, alice).Action)

	sendAction(t, alice, actionConquerPub, conquerPubPayload{GameID: "g1", PubID: "p1"})
	msg := readAction(t, alice)
	require.Equal(t, actionError, msg.Action)

	require.Len(t, conquests.attempts, 1)
	assert.Equal(t, "g1/t1/p1/alice", conquests.attempts[0])
}

func TestHub_ConquerWithoutTeam(t *testing.T) {
	conquests := &fakeConquests{
		snapshot: &service.GameSnapshot{GameID: "g1", Status: models.GameStatusActive},
	}
	_, server := newTestHub(conquests, &fakeTeams{})
	defer server.Close()

	alice := dial(t, server, "alice")
	sendAction(t, alice, actionConquerPub, conquerPubPayload{GameID: "g1", PubID: "p1"})

	msg := readAction(t, alice)
	require.Equal(t, actionError, msg.Action)
	var payload errorPayload
	require.NoError(t, json.Unmarshal(msg.Data, &payload))
	assert.Equal(t, "you are not on a team in this game", payload.Message)
	assert.Empty(t, conquests.attempts)
}

func TestHub_PublishConquestReachesRoom(t *testing.T) {
	conquests := &fakeConquests{
		snapshot: &service.GameSnapshot{GameID: "g1", Status: models.GameStatusActive},
	}
	hub, server := newTestHub(conquests, &fakeTeams{})
	defer server.Close()

	alice := dial(t, server, "alice")
	sendAction(t, alice, actionJoinGame, joinGamePayload{GameID: "g1"})
	require.Equal(t, actionGameState, readAction(t, alice).Action)

	hub.PublishConquest(service.ConquestEvent{
		GameID:  "g1",
		PubID:   "p1",
		PubName: "The Crown",
		TeamID:  "t1",
	})

	msg := readAction(t, alice)
	require.Equal(t, actionPubConquered, msg.Action)
	var event service.ConquestEvent
	require.NoError(t, json.Unmarshal(msg.Data, &event))
	assert.Equal(t, "The Crown", event.PubName)
}

func TestHub_ChatCarriesTeamIdentity(t *testing.T) {
	conquests := &fakeConquests{
		snapshot: &service.GameSnapshot{GameID: "g1", Status: models.GameStatusActive},
	}
	teams := &fakeTeams{teams: map[string]*models.Team{
		"alice": {ID: "t1", Name: "Red", Color: "#FF0000", Game: "g1"},
	}}
	_, server := newTestHub(conquests, teams)
	defer server.Close()

	alice := dial(t, server, "alice")
	bob := dial(t, server, "bob")
	sendAction(t, alice, actionJoinGame, joinGamePayload{GameID: "g1"})
	require.Equal(t, actionGameState, readAction(t, alice).Action)
	sendAction(t, bob, actionJoinGame, joinGamePayload{GameID: "g1"})
	require.Equal(t, actionGameState, readAction(t, bob).Action)
	require.Equal(t, actionUserJoined, readAction(t, alice).Action)

	sendAction(t, alice, actionSendMessage, chatPayload{GameID: "g1", Message: "to the next pub!"})

	msg := readAction(t, bob)
	require.Equal(t, actionChatMessage, msg.Action)
	var chat chatBroadcast
	require.NoError(t, json.Unmarshal(msg.Data, &chat))
	assert.Equal(t, "alice", chat.UserID)
	assert.Equal(t, "Red", chat.TeamName)
	assert.Equal(t, "to the next pub!", chat.Message)
}
