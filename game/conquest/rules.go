// game/conquest/rules.go

// Package conquest holds the rules deciding which pubs a team may capture and
// when a game is won. Everything here is a pure predicate over a state
// snapshot; the service layer owns locking and persistence.
package conquest

import "github.com/PubWars/GO-SERVICES/shared/models"

// Denial explains why a conquest attempt was refused. DenialNone means the
// attempt is legal. Denials are ordinary negative results, not errors.
type Denial int

const (
	DenialNone Denial = iota
	// DenialAlreadyOwned: the requesting team already owns the target.
	DenialAlreadyOwned
	// DenialNoFoothold: a team with no territory may only claim unowned pubs,
	// it cannot open by attacking another team.
	DenialNoFoothold
	// DenialNotAdjacent: none of the team's pubs borders the target.
	DenialNotAdjacent
)

// Message returns the client-facing text for a denial.
func (d Denial) Message() string {
	switch d {
	case DenialAlreadyOwned:
		return "This pub is already owned by your team"
	case DenialNoFoothold:
		return "Your team must claim an unowned pub before attacking other teams"
	case DenialNotAdjacent:
		return "You cannot conquer this pub yet"
	default:
		return ""
	}
}

// Adjacent reports whether two pubs border each other. The check runs in both
// directions so a one-sided adjacency list (possible if graph construction
// ever skipped the mirrored insert) still counts.
func Adjacent(a, b *models.Pub) bool {
	return a.HasNeighbor(b.ID) || b.HasNeighbor(a.ID)
}

// CanConquer decides whether team may capture target given the pubs it
// currently owns.
//
// A team holding no territory gets a free foothold: any unclaimed pub is
// fair game, enemy pubs are not. A team holding territory may take any pub,
// claimed or not, that borders one of its own. A footholdless team in a fully
// claimed graph is therefore locked out permanently; that is the intended
// rule, not a gap.
func CanConquer(team *models.Team, target *models.Pub, owned []*models.Pub) Denial {
	if target.Owner == team.ID {
		return DenialAlreadyOwned
	}

	if len(owned) == 0 {
		if target.Owner != "" {
			return DenialNoFoothold
		}
		return DenialNone
	}

	for _, pub := range owned {
		if Adjacent(pub, target) {
			return DenialNone
		}
	}
	return DenialNotAdjacent
}
