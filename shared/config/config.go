// shared/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// CommonConfig holds configuration shared by every service instance.
type CommonConfig struct {
	RedisAddrs              []string      // Redis cluster addresses
	RedisPassword           string        // Redis password, empty when auth is disabled
	HeartbeatInterval       time.Duration // How often an instance heartbeats to the registry
	HeartbeatTTL            time.Duration // How long an instance counts as alive without a heartbeat
	RegistryCleanupInterval time.Duration // How often stale registry entries are swept
	ServiceIP               string        // Advertised IP for registration
	ServicePort             int           // Advertised port for registration
}

// GameServiceConfig holds configuration specific to the conquest game service.
type GameServiceConfig struct {
	CommonConfig
	ListenAddr             string        // HTTP listen address (e.g. ":8080")
	MongoDBConnStr         string        // MongoDB connection string
	MongoDBDatabase        string        // MongoDB database name
	MongoDBGamesCollection string        // Collection for games
	MongoDBTeamsCollection string        // Collection for teams
	MongoDBPubsCollection  string        // Collection for pubs
	PresenceTTL            time.Duration // TTL for online:{gameID}:<userID> presence keys
	ClusterMode            bool          // Enable consistent-hash game assignment across instances
}

// LoadCommonConfig loads the shared configuration from environment variables.
func LoadCommonConfig() (CommonConfig, error) {
	cfg := CommonConfig{}
	var err error

	redisAddrsStr := os.Getenv("REDIS_ADDRS")
	if redisAddrsStr == "" {
		cfg.RedisAddrs = []string{"localhost:6379"}
	} else {
		for _, addr := range strings.Split(redisAddrsStr, ",") {
			cfg.RedisAddrs = append(cfg.RedisAddrs, strings.TrimSpace(addr))
		}
	}
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")

	cfg.HeartbeatInterval, err = getDuration("SERVICE_HEARTBEAT_INTERVAL", 5*time.Second)
	if err != nil {
		return cfg, err
	}
	cfg.HeartbeatTTL, err = getDuration("SERVICE_HEARTBEAT_TTL", 15*time.Second)
	if err != nil {
		return cfg, err
	}
	cfg.RegistryCleanupInterval, err = getDuration("SERVICE_REGISTRY_CLEANUP_INTERVAL", 30*time.Second)
	if err != nil {
		return cfg, err
	}

	cfg.ServiceIP = os.Getenv("SERVICE_IP")
	if cfg.ServiceIP == "" {
		cfg.ServiceIP = "127.0.0.1"
	}
	cfg.ServicePort, err = getInt("SERVICE_PORT", 8080)
	if err != nil {
		return cfg, err
	}

	return cfg, nil
}

// LoadGameServiceConfig loads the game service configuration from environment
// variables, falling back to sensible local-development defaults.
func LoadGameServiceConfig() (*GameServiceConfig, error) {
	common, err := LoadCommonConfig()
	if err != nil {
		return nil, err
	}

	cfg := &GameServiceConfig{CommonConfig: common}

	cfg.ListenAddr = getString("LISTEN_ADDR", ":8080")
	cfg.MongoDBConnStr = getString("MONGODB_CONN_STR", "mongodb://localhost:27017/?replicaSet=rs0")
	cfg.MongoDBDatabase = getString("MONGODB_DATABASE", "pub_conquest")
	cfg.MongoDBGamesCollection = getString("MONGODB_GAMES_COLLECTION", "games")
	cfg.MongoDBTeamsCollection = getString("MONGODB_TEAMS_COLLECTION", "teams")
	cfg.MongoDBPubsCollection = getString("MONGODB_PUBS_COLLECTION", "pubs")

	cfg.PresenceTTL, err = getDuration("PRESENCE_TTL", 30*time.Second)
	if err != nil {
		return nil, err
	}

	clusterMode := getString("CLUSTER_MODE", "false")
	cfg.ClusterMode, err = strconv.ParseBool(clusterMode)
	if err != nil {
		return nil, fmt.Errorf("invalid CLUSTER_MODE value %q: %w", clusterMode, err)
	}

	return cfg, nil
}

func getString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value for %s: %q: %w", key, val, err)
	}
	return parsed, nil
}

func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("invalid duration value for %s: %q: %w", key, val, err)
	}
	return parsed, nil
}
