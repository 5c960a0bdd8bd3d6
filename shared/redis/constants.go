// shared/redis/constants.go
package redis

import "fmt"

const (
	// OnlineKeyPrefix marks a user as present in a game room:
	// online:{gameID}:<userID>. The hash tag keeps all presence keys for one
	// game in a single cluster slot.
	OnlineKeyPrefix = "online:{%s}:%s"

	// GamesWonKeyPrefix is the persistent games-won counter for a user:
	// games_won:{userID}.
	GamesWonKeyPrefix = "games_won:{%s}"
)

// ErrRedisKeyNotFound is returned by stores when a looked-up key is absent.
var ErrRedisKeyNotFound = fmt.Errorf("redis key not found")
