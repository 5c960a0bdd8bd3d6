// game/service/fake_test.go
package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/PubWars/GO-SERVICES/game/store"
	"github.com/PubWars/GO-SERVICES/shared/models"
)

// fakeDatastore is an in-memory Datastore. Reads hand out deep copies and
// commits store deep copies, mirroring the isolation a real document store
// gives: mutating a loaded entity is invisible until committed.
type fakeDatastore struct {
	mu    sync.Mutex
	games map[string]*models.Game
	teams map[string]*models.Team
	pubs  map[string]*models.Pub

	failCommit      bool
	conquestCommits int
}

func newFakeDatastore() *fakeDatastore {
	return &fakeDatastore{
		games: make(map[string]*models.Game),
		teams: make(map[string]*models.Team),
		pubs:  make(map[string]*models.Pub),
	}
}

func copyGame(g *models.Game) *models.Game {
	c := *g
	c.Teams = append([]string{}, g.Teams...)
	c.Pubs = append([]string{}, g.Pubs...)
	c.Events = append([]models.GameEvent{}, g.Events...)
	return &c
}

func copyTeam(t *models.Team) *models.Team {
	c := *t
	c.Members = append([]string{}, t.Members...)
	c.Pubs = append([]string{}, t.Pubs...)
	return &c
}

func copyPub(p *models.Pub) *models.Pub {
	c := *p
	c.Neighbors = append([]string{}, p.Neighbors...)
	c.ConquestHistory = append([]models.ConquestRecord{}, p.ConquestHistory...)
	return &c
}

func (f *fakeDatastore) CreateGame(_ context.Context, game *models.Game) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.games[game.ID] = copyGame(game)
	return nil
}

func (f *fakeDatastore) GetGame(_ context.Context, gameID string) (*models.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	game, ok := f.games[gameID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return copyGame(game), nil
}

func (f *fakeDatastore) ListGames(_ context.Context) ([]*models.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var games []*models.Game
	for _, g := range f.games {
		games = append(games, copyGame(g))
	}
	return games, nil
}

func (f *fakeDatastore) UpdateGame(_ context.Context, game *models.Game) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.games[game.ID]; !ok {
		return store.ErrNotFound
	}
	f.games[game.ID] = copyGame(game)
	return nil
}

func (f *fakeDatastore) CreateTeam(_ context.Context, team *models.Team) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.teams[team.ID] = copyTeam(team)
	return nil
}

func (f *fakeDatastore) GetTeam(_ context.Context, teamID string) (*models.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	team, ok := f.teams[teamID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return copyTeam(team), nil
}

func (f *fakeDatastore) ListTeamsByGame(_ context.Context, gameID string) ([]*models.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var teams []*models.Team
	for _, t := range f.teams {
		if t.Game == gameID {
			teams = append(teams, copyTeam(t))
		}
	}
	return teams, nil
}

func (f *fakeDatastore) UpdateTeam(_ context.Context, team *models.Team) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.teams[team.ID]; !ok {
		return store.ErrNotFound
	}
	f.teams[team.ID] = copyTeam(team)
	return nil
}

func (f *fakeDatastore) CreatePub(_ context.Context, pub *models.Pub) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pubs[pub.ID] = copyPub(pub)
	return nil
}

func (f *fakeDatastore) GetPub(_ context.Context, pubID string) (*models.Pub, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pub, ok := f.pubs[pubID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return copyPub(pub), nil
}

func (f *fakeDatastore) ListPubsByGame(_ context.Context, gameID string) ([]*models.Pub, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var pubs []*models.Pub
	for _, p := range f.pubs {
		if p.Game == gameID {
			pubs = append(pubs, copyPub(p))
		}
	}
	return pubs, nil
}

func (f *fakeDatastore) AddPubNeighbor(_ context.Context, pubID, neighborID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	pub, ok := f.pubs[pubID]
	if !ok {
		return store.ErrNotFound
	}
	if !pub.HasNeighbor(neighborID) {
		pub.Neighbors = append(pub.Neighbors, neighborID)
	}
	return nil
}

func (f *fakeDatastore) CommitConquest(_ context.Context, game *models.Game, pub *models.Pub, conqueror *models.Team, previous *models.Team) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCommit {
		return fmt.Errorf("injected commit failure")
	}
	f.pubs[pub.ID] = copyPub(pub)
	f.teams[conqueror.ID] = copyTeam(conqueror)
	if previous != nil {
		f.teams[previous.ID] = copyTeam(previous)
	}
	f.games[game.ID] = copyGame(game)
	f.conquestCommits++
	return nil
}

// rosterMirrorConsistent checks the core invariant: every team's roster
// equals the set of pubs whose owner is that team.
func (f *fakeDatastore) rosterMirrorConsistent(gameID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	ownership := make(map[string][]string)
	for _, p := range f.pubs {
		if p.Game == gameID && p.Owner != "" {
			ownership[p.Owner] = append(ownership[p.Owner], p.ID)
		}
	}
	for _, t := range f.teams {
		if t.Game != gameID {
			continue
		}
		owned := ownership[t.ID]
		if len(owned) != len(t.Pubs) {
			return false
		}
		for _, id := range owned {
			if !t.OwnsPub(id) {
				return false
			}
		}
	}
	return true
}

type fakeStats struct {
	mu     sync.Mutex
	counts map[string]int
}

func newFakeStats() *fakeStats {
	return &fakeStats{counts: make(map[string]int)}
}

func (f *fakeStats) IncrementGamesWon(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[userID]++
	return nil
}

type fakePublisher struct {
	mu        sync.Mutex
	conquests []ConquestEvent
	gameOvers []GameOverEvent
}

func (f *fakePublisher) PublishConquest(ev ConquestEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.conquests = append(f.conquests, ev)
}

func (f *fakePublisher) PublishGameOver(ev GameOverEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gameOvers = append(f.gameOvers, ev)
}
