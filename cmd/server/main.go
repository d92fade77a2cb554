package main

import (
	"context"
	"log"

	"github.com/labstack/echo/v4"
	"github.com/pulsegram/backend/internal/realtime"
	"github.com/pulsegram/backend/internal/router"
	"github.com/pulsegram/backend/pkg/config"
	"github.com/pulsegram/backend/pkg/firebase"
	"github.com/pulsegram/backend/validators"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connections
	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	// Initialize Firebase
	ctx := context.Background()
	firebaseApp, err := firebase.InitFirebase(ctx, "./firebase_credentials.json")
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	// Real-time relay: websocket hub plus the Redis pub/sub bridge.
	// Without Redis the hub still serves local sessions but events are
	// not shared across instances.
	hub := realtime.NewHub()
	go hub.Run()

	rdb := config.ConnectRedis()
	var bridge *realtime.Bridge
	if rdb != nil {
		defer rdb.Close()
		bridge = realtime.NewBridge(rdb, hub)
		go bridge.Run(ctx)
	}

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	router.SetupRoutes(e, &router.Dependencies{
		Postgres: db.Postgres,
		Mongo:    db.Mongo,
		Redis:    rdb,
		Firebase: firebaseApp,
		Config:   cfg,
		Hub:      hub,
		Bridge:   bridge,
	})

	// Validator
	e.Validator = validators.NewValidator()

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
