// game/conquest/win.go
package conquest

import "github.com/PubWars/GO-SERVICES/shared/models"

// CheckWin reports whether one team owns every pub in the graph, returning
// the winning team id. An empty graph never produces a winner; vacuous
// ownership is not a win.
func CheckWin(pubs []*models.Pub) (string, bool) {
	if len(pubs) == 0 {
		return "", false
	}

	winner := pubs[0].Owner
	if winner == "" {
		return "", false
	}
	for _, pub := range pubs[1:] {
		if pub.Owner != winner {
			return "", false
		}
	}
	return winner, true
}
