package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gameapi "github.com/PubWars/GO-SERVICES/game/api"
	"github.com/PubWars/GO-SERVICES/game/service"
	"github.com/PubWars/GO-SERVICES/game/socket"
	"github.com/PubWars/GO-SERVICES/game/store"
	"github.com/PubWars/GO-SERVICES/shared/api"
	"github.com/PubWars/GO-SERVICES/shared/cluster"
	"github.com/PubWars/GO-SERVICES/shared/config"
	"github.com/PubWars/GO-SERVICES/shared/mongodb"
	redisu "github.com/PubWars/GO-SERVICES/shared/redis"
	"github.com/PubWars/GO-SERVICES/shared/registry"
)

func main() {
	// --- 1. Load Configuration ---
	cfg, err := config.LoadGameServiceConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Printf("Configuration loaded for Game Service. Listening on: %s", cfg.ListenAddr)

	// --- 2. Connect to MongoDB ---
	mongoClient, err := mongodb.NewClient(cfg.MongoDBConnStr, cfg.MongoDBDatabase)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB client: %v", err)
		}
	}()

	// --- 3. Connect to Redis Cluster ---
	redisClient, err := redisu.NewRedisClusterClient(cfg.RedisAddrs, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("Failed to connect to Redis Cluster: %v", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Printf("ERROR: Failed to close Redis client: %v", err)
		}
	}()
	log.Println("Connected to Redis Cluster.")

	// --- 4. Initialize Data Stores ---
	datastore := store.NewDatastore(
		mongoClient.RawClient(),
		mongoClient.Collection(cfg.MongoDBGamesCollection),
		mongoClient.Collection(cfg.MongoDBTeamsCollection),
		mongoClient.Collection(cfg.MongoDBPubsCollection),
	)
	presenceStore := store.NewPresenceStore(redisClient, cfg.PresenceTTL)
	statsStore := store.NewStatsStore(redisClient)

	// --- 5. Initialize Business Logic Services ---
	gameService := service.NewGameService(datastore)
	conquestService := service.NewConquestService(datastore, statsStore)
	log.Println("Game Service business logic initialized.")

	// --- 6. Identity Verification ---
	// Tokens are opaque user ids until the auth collaborator is wired in.
	var verifier api.IdentityVerifier = api.OpaqueVerifier{}

	// --- 7. Websocket Hub (also the conquest event publisher) ---
	hub := socket.NewHub(verifier, conquestService, gameService, presenceStore)
	conquestService.SetPublisher(hub)

	// --- 8. Service Registrar and Cluster Assignment ---
	registrar := registry.NewServiceRegistrar(redisClient, "game-service", &cfg.CommonConfig)
	registrar.Start()
	defer registrar.Stop()
	log.Printf("Service registrar started for 'game-service' with instance ID: %s", registrar.ServiceID())

	if cfg.ClusterMode {
		registryClient := registry.NewRegistryClient(redisClient, cfg.HeartbeatTTL)
		assigner := cluster.NewGameAssigner(registryClient, registrar, cfg.HeartbeatTTL/2)
		assigner.Start()
		defer assigner.Stop()
		conquestService.SetAssigner(assigner)
		log.Println("Cluster mode enabled: conquest attempts are routed by game assignment.")
	}

	// --- 9. Setup HTTP Server and Register Routes ---
	baseServer := api.NewBaseServer(cfg.ListenAddr, log.Default())

	// The websocket endpoint authenticates during the upgrade handshake, so it
	// sits outside the identity middleware.
	baseServer.Router.HandleFunc("/ws", hub.HandleWS)

	gameAPIHandlers := gameapi.NewGameAPIHandlers(gameService, conquestService, statsStore, presenceStore)
	restRouter := baseServer.Router.PathPrefix("/").Subrouter()
	restRouter.Use(api.RequireIdentity(verifier))
	gameAPIHandlers.RegisterRoutes(restRouter)
	log.Println("HTTP routes registered.")

	// --- 10. Start HTTP Server ---
	go func() {
		if err := baseServer.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed to start: %v", err)
		}
	}()

	// --- 11. Graceful Shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down Game Service...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := baseServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: HTTP server graceful shutdown failed: %v", err)
	}
	log.Println("Game Service gracefully shut down.")
}
