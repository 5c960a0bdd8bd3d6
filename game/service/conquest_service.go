// game/service/conquest_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/PubWars/GO-SERVICES/game/conquest"
	"github.com/PubWars/GO-SERVICES/game/store"
	"github.com/PubWars/GO-SERVICES/shared/models"
)

// ConquestService processes conquest attempts. All attempts for one game are
// serialized through a per-game mutex held for rule check, commit and win
// evaluation only; broadcasting happens after the lock is released. Different
// games proceed in parallel.
type ConquestService struct {
	data      Datastore
	stats     StatsStore
	publisher EventPublisher
	assigner  Assigner
	locks     *gameLocks
}

// NewConquestService creates a ConquestService. stats may be nil when no
// counter backend is configured.
func NewConquestService(data Datastore, stats StatsStore) *ConquestService {
	return &ConquestService{
		data:  data,
		stats: stats,
		locks: newGameLocks(),
	}
}

// SetPublisher installs the outbound event sink. Wired after construction
// because the socket hub both publishes for and calls into this service.
func (cs *ConquestService) SetPublisher(publisher EventPublisher) {
	cs.publisher = publisher
}

// SetAssigner enables cluster mode: attempts for games this instance does not
// own are refused with ErrNotResponsible.
func (cs *ConquestService) SetAssigner(assigner Assigner) {
	cs.assigner = assigner
}

// ConquestResult reports the outcome of one attempt. Either Denied is set
// with a reason, or the conquest was applied; GameOver marks the attempt that
// also ended the game.
type ConquestResult struct {
	Denied        bool
	Reason        conquest.Denial
	Pub           *models.Pub
	Team          *models.Team
	PreviousOwner string
	Timestamp     time.Time
	GameOver      bool
	Winner        *models.Team
	EndTime       time.Time
}

// AttemptConquest validates, rules on and applies a conquest attempt by
// userID of team teamID on pub pubID. Denials come back as a non-error result;
// validation and lookup failures come back as errors.
func (cs *ConquestService) AttemptConquest(ctx context.Context, gameID, teamID, pubID, userID string) (*ConquestResult, error) {
	if cs.assigner != nil {
		responsible, err := cs.assigner.IsResponsible(gameID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve game ownership for %s: %w", gameID, err)
		}
		if !responsible {
			return nil, ErrNotResponsible
		}
	}

	unlock := cs.locks.Lock(gameID)
	result, err := cs.attemptLocked(ctx, gameID, teamID, pubID, userID)
	unlock()

	if err != nil || result.Denied {
		return result, err
	}

	if cs.publisher != nil {
		cs.publisher.PublishConquest(ConquestEvent{
			GameID:        gameID,
			PubID:         result.Pub.ID,
			PubName:       result.Pub.Name,
			TeamID:        result.Team.ID,
			TeamName:      result.Team.Name,
			TeamColor:     result.Team.Color,
			ConqueredBy:   userID,
			PreviousOwner: result.PreviousOwner,
			Timestamp:     result.Timestamp,
		})
		if result.GameOver {
			cs.publisher.PublishGameOver(GameOverEvent{
				GameID:    gameID,
				TeamID:    result.Winner.ID,
				TeamName:  result.Winner.Name,
				TeamColor: result.Winner.Color,
				EndTime:   result.EndTime,
			})
		}
	}
	return result, nil
}

// attemptLocked does the rule check, the win evaluation and the single
// transactional commit while the game lock is held.
func (cs *ConquestService) attemptLocked(ctx context.Context, gameID, teamID, pubID, userID string) (*ConquestResult, error) {
	game, err := cs.data.GetGame(ctx, gameID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	if game.Status != models.GameStatusActive {
		return nil, ErrGameNotActive
	}

	team, err := cs.data.GetTeam(ctx, teamID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	if team.Game != gameID {
		return nil, ErrTeamNotInGame
	}
	if !team.HasMember(userID) {
		return nil, ErrNotTeamMember
	}

	pubs, err := cs.data.ListPubsByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	var target *models.Pub
	owned := make([]*models.Pub, 0, len(team.Pubs))
	for _, p := range pubs {
		if p.ID == pubID {
			target = p
		}
		if p.Owner == teamID {
			owned = append(owned, p)
		}
	}
	if target == nil {
		if _, err := cs.data.GetPub(ctx, pubID); errors.Is(err, store.ErrNotFound) {
			return nil, ErrPubNotFound
		}
		return nil, ErrPubNotInGame
	}

	if denial := conquest.CanConquer(team, target, owned); denial != conquest.DenialNone {
		return &ConquestResult{Denied: true, Reason: denial, Pub: target, Team: team}, nil
	}

	now := time.Now().UTC()
	previousOwner := target.Owner

	target.Owner = teamID
	target.ConquestHistory = append(target.ConquestHistory, models.ConquestRecord{
		Team:      teamID,
		Timestamp: now,
	})
	if !team.OwnsPub(target.ID) {
		team.Pubs = append(team.Pubs, target.ID)
	}

	var previousTeam *models.Team
	if previousOwner != "" && previousOwner != teamID {
		previousTeam, err = cs.data.GetTeam(ctx, previousOwner)
		if err != nil {
			return nil, fmt.Errorf("failed to load previous owner %s of pub %s: %w", previousOwner, pubID, err)
		}
		previousTeam.Pubs = removeID(previousTeam.Pubs, target.ID)
	}

	game.Events = append(game.Events, models.GameEvent{
		Type:      models.EventConquest,
		Team:      teamID,
		Pub:       target.ID,
		User:      userID,
		Timestamp: now,
		Message:   fmt.Sprintf("Team %s conquered %s", team.Name, target.Name),
	})

	// The win evaluation runs before the commit so that a winning conquest
	// and the game completion land in one transaction; a commit failure then
	// leaves no half-finished game behind. pubs already reflects the new
	// ownership through target.
	winnerID, won := conquest.CheckWin(pubs)
	if won && winnerID != teamID {
		// Cannot happen: the conquering team just took the last pub.
		return nil, fmt.Errorf("win evaluator returned team %s after a conquest by team %s", winnerID, teamID)
	}
	if won {
		game.Status = models.GameStatusCompleted
		game.Winner = teamID
		game.Settings.EndTime = &now
		game.Events = append(game.Events, models.GameEvent{
			Type:      models.EventGameEnd,
			Team:      teamID,
			Timestamp: now,
			Message:   fmt.Sprintf("Game ended. Team %s won by conquering all pubs", team.Name),
		})
	}

	if err := cs.data.CommitConquest(ctx, game, target, team, previousTeam); err != nil {
		return nil, fmt.Errorf("conquest commit failed for game %s: %w", gameID, err)
	}

	result := &ConquestResult{
		Pub:           target,
		Team:          team,
		PreviousOwner: previousOwner,
		Timestamp:     now,
	}
	if !won {
		return result, nil
	}

	if cs.stats != nil {
		for _, memberID := range team.Members {
			if err := cs.stats.IncrementGamesWon(ctx, memberID); err != nil {
				log.Printf("ERROR: Failed to increment games won for user %s: %v", memberID, err)
			}
		}
	}

	result.GameOver = true
	result.Winner = team
	result.EndTime = now
	return result, nil
}

// Snapshot returns the full state a joining client needs: game status plus
// every team and every pub of the game.
func (cs *ConquestService) Snapshot(ctx context.Context, gameID string) (*GameSnapshot, error) {
	game, err := cs.data.GetGame(ctx, gameID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}

	teams, err := cs.data.ListTeamsByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	pubs, err := cs.data.ListPubsByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	return &GameSnapshot{
		GameID: game.ID,
		Name:   game.Name,
		Status: game.Status,
		Winner: game.Winner,
		Teams:  teams,
		Pubs:   pubs,
	}, nil
}

// GameSnapshot is the full-state dump sent to a client joining a game room.
type GameSnapshot struct {
	GameID string            `json:"gameId"`
	Name   string            `json:"name"`
	Status models.GameStatus `json:"status"`
	Winner string            `json:"winner,omitempty"`
	Teams  []*models.Team    `json:"teams"`
	Pubs   []*models.Pub     `json:"pubs"`
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
