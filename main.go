package main

import (
	"Recit/config"
	_ "Recit/config/swagger"
	"Recit/middleware"
	"Recit/routes"
	"Recit/services/feed"
	"Recit/services/filters"
	"Recit/services/games"
	"Recit/services/pubsub"
	"Recit/services/redis"
	"Recit/services/roster"
	"Recit/services/socket_io"
	"Recit/services/store"
	"Recit/services/subscriptions"
	"Recit/services/ws"
	"Recit/sync"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
)

// @title Recit API
// @version 1.0
// @description Gin-Gonic server for the Recit pickup games API
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	log.Println("Setting up server...")

	settings, err := config.LoadSettings()
	if err != nil {
		log.Fatalf("Error loading settings: %v", err)
	}

	if settings.Prod {
		gin.SetMode(gin.ReleaseMode)
	}

	gormDB, err := config.ConnectGORM()
	if err != nil {
		log.Fatalf("Error connecting to PostgreSQL: %v", err)
	}
	log.Println("GORM Connected")

	// Only migrate in development or during deployment
	if settings.MigratePostgres {
		log.Println("Migrating PostgreSQL database...")
		if err := config.MigrateDatabase(gormDB); err != nil {
			log.Printf("Warning: Database migration failed: %v", err)
			// Continue execution even if migration fails
		} else {
			log.Println("Database migrated successfully")
		}
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatalf("Error reading GORM PostgreSQL instance: %v", err)
	}
	defer sqlDB.Close()

	redisClient, err := config.Connect_redis()
	if err != nil {
		log.Fatalf("Error connecting to Redis: %v", err)
	}
	var activity sync.ActivityRecorder
	if redisClient != nil {
		activity = redisClient
		defer redis.CloseRedis(redisClient)
	}

	st := store.NewGormStore(gormDB)
	bus := pubsub.NewBus(settings.BusQueueSize)
	syncManager := sync.NewSyncManager(activity, st)
	ledger := roster.NewLedger(st, bus)
	engine := feed.NewEngine(st, feed.Config{
		GamesPageSize:     settings.GamesPageSize,
		UserGamesPageSize: settings.UserGamesPageSize,
		MessagesPageSize:  settings.MessagesPageSize,
		DefaultBounds:     settings.DefaultBounds,
		Location:          settings.Location(),
	})
	manager := subscriptions.NewManager(bus, filters.NewSet(st, settings.GamesPageSize, settings.DefaultBounds), st)
	tokens := middleware.NewTokens(settings.JWTSecret, settings.JWTTTL)
	hub := ws.NewHub(manager)

	r := gin.Default()

	middleware.SetUpMiddleware(r, settings.SessionKey, settings.UseHTTPS)

	routes.SetupRoutes(r, routes.Services{
		Store:  st,
		Games:  games.NewService(st, ledger, bus, syncManager),
		Feed:   engine,
		Sync:   syncManager,
		Tokens: tokens,
		Hub:    hub,
	})

	sio := &socket_io.MySocketServer{}
	sio.Start(r, manager, tokens, !settings.Prod)

	SignalC := make(chan os.Signal, 1)
	signal.Notify(SignalC, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		s := <-SignalC
		log.Printf("Received %v, shutting down", s)
		sio.Close()
		hub.Close()
		bus.Close()
		if redisClient != nil {
			redis.CloseRedis(redisClient)
		}
		sqlDB.Close()
		os.Exit(0)
	}()

	// Configure port
	port := settings.Port
	if port == "" {
		if settings.UseHTTPS {
			port = "443"
		} else {
			port = "8080"
		}
	}

	log.Printf("Server starting on port %s", port)
	if settings.UseHTTPS {
		//SSL certification configuration for HTTPS
		certFile := os.Getenv("TLS_CERT_FILE")
		keyFile := os.Getenv("TLS_KEY_FILE")

		// Start server
		if err := r.RunTLS(":"+port, certFile, keyFile); err != nil {
			log.Fatalf("Error starting server: %v", err)
		}
	} else {
		if err := r.Run(":" + port); err != nil {
			log.Fatalf("Error starting server: %v", err)
		}
	}
}
