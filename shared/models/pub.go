// shared/models/pub.go
package models

import "time"

// Position is the map placement of a pub, used only for client rendering.
type Position struct {
	X float64 `bson:"x" json:"x"`
	Y float64 `bson:"y" json:"y"`
}

// ConquestRecord is one entry in a pub's append-only conquest history.
// Entries are never mutated or truncated, only appended.
type ConquestRecord struct {
	Team      string    `bson:"team" json:"team"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// Pub is a capturable node in a game's territory graph. Neighbors is kept
// symmetric at creation time by mirrored inserts; Owner is empty while the pub
// is unclaimed and only the conquest transaction changes it afterwards.
type Pub struct {
	ID              string           `bson:"_id" json:"id"`
	Name            string           `bson:"name" json:"name"`
	Game            string           `bson:"game" json:"game"`
	Owner           string           `bson:"owner,omitempty" json:"owner,omitempty"`
	Neighbors       []string         `bson:"neighbors" json:"neighbors"`
	Position        Position         `bson:"position" json:"position"`
	ConquestHistory []ConquestRecord `bson:"conquest_history" json:"conquestHistory"`
}

// HasNeighbor reports whether pubID is listed in this pub's adjacency set.
func (p *Pub) HasNeighbor(pubID string) bool {
	for _, id := range p.Neighbors {
		if id == pubID {
			return true
		}
	}
	return false
}
