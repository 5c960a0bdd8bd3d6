// shared/models/team.go
package models

import "time"

// Team represents a named side in one game. Pubs is a denormalized mirror of
// Pub.Owner and must always equal the set of pubs whose owner is this team;
// only the conquest transaction may change it once a game is active.
type Team struct {
	ID        string     `bson:"_id" json:"id"`
	Name      string     `bson:"name" json:"name"`
	Color     string     `bson:"color" json:"color"`
	Game      string     `bson:"game" json:"game"`
	Members   []string   `bson:"members" json:"members"` // user ids, at most one team per user per game
	Pubs      []string   `bson:"pubs" json:"pubs"`
	CreatedAt *time.Time `bson:"created_at,omitempty" json:"createdAt,omitempty"`
}

// OwnsPub reports whether pubID is currently on this team's roster.
func (t *Team) OwnsPub(pubID string) bool {
	for _, id := range t.Pubs {
		if id == pubID {
			return true
		}
	}
	return false
}

// HasMember reports whether userID belongs to this team.
func (t *Team) HasMember(userID string) bool {
	for _, id := range t.Members {
		if id == userID {
			return true
		}
	}
	return false
}
