// game/conquest/rules_test.go
package conquest

import (
	"testing"

	"github.com/PubWars/GO-SERVICES/shared/models"
	"github.com/stretchr/testify/assert"
)

func pub(id, owner string, neighbors ...string) *models.Pub {
	return &models.Pub{ID: id, Name: id, Game: "g1", Owner: owner, Neighbors: neighbors}
}

func TestCanConquerAlreadyOwned(t *testing.T) {
	team := &models.Team{ID: "t1", Game: "g1", Pubs: []string{"a"}}
	a := pub("a", "t1")

	assert.Equal(t, DenialAlreadyOwned, CanConquer(team, a, []*models.Pub{a}))
}

func TestCanConquerFoothold(t *testing.T) {
	team := &models.Team{ID: "t1", Game: "g1"}

	// A team with no territory may claim any unowned pub, adjacent or not.
	assert.Equal(t, DenialNone, CanConquer(team, pub("a", ""), nil))

	// But it may not open by attacking an enemy pub.
	assert.Equal(t, DenialNoFoothold, CanConquer(team, pub("b", "t2"), nil))
}

func TestCanConquerAdjacency(t *testing.T) {
	team := &models.Team{ID: "t1", Game: "g1", Pubs: []string{"a"}}
	a := pub("a", "t1", "b")
	owned := []*models.Pub{a}

	// Unowned neighbor is conquerable.
	assert.Equal(t, DenialNone, CanConquer(team, pub("b", "", "a"), owned))

	// Enemy neighbor is conquerable once the team has a foothold.
	assert.Equal(t, DenialNone, CanConquer(team, pub("b", "t2", "a"), owned))

	// Non-adjacent pubs are not, owned or unowned.
	assert.Equal(t, DenialNotAdjacent, CanConquer(team, pub("c", ""), owned))
	assert.Equal(t, DenialNotAdjacent, CanConquer(team, pub("c", "t2"), owned))
}

func TestCanConquerAsymmetricAdjacency(t *testing.T) {
	team := &models.Team{ID: "t1", Game: "g1", Pubs: []string{"a"}}

	// Only a lists b as a neighbor.
	a := pub("a", "t1", "b")
	b := pub("b", "")
	assert.Equal(t, DenialNone, CanConquer(team, b, []*models.Pub{a}))

	// Only b lists a as a neighbor.
	a2 := pub("a", "t1")
	b2 := pub("b", "", "a")
	assert.Equal(t, DenialNone, CanConquer(team, b2, []*models.Pub{a2}))
}

func TestFootholdlessTeamLockedOutOfFullGraph(t *testing.T) {
	// All pubs owned by others: a team without territory has no legal move.
	team := &models.Team{ID: "t3", Game: "g1"}
	for _, target := range []*models.Pub{pub("a", "t1", "b"), pub("b", "t2", "a")} {
		assert.Equal(t, DenialNoFoothold, CanConquer(team, target, nil))
	}
}

func TestDenialMessages(t *testing.T) {
	assert.Empty(t, DenialNone.Message())
	for _, d := range []Denial{DenialAlreadyOwned, DenialNoFoothold, DenialNotAdjacent} {
		assert.NotEmpty(t, d.Message())
	}
}
