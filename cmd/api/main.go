package main

import (
	"context"
	"log"

	"github.com/bidboard/bidboard-backend/config"
	"github.com/bidboard/bidboard-backend/internal/auth"
	"github.com/bidboard/bidboard-backend/internal/bootstrap"
	"github.com/bidboard/bidboard-backend/internal/cleanup"
	"github.com/bidboard/bidboard-backend/internal/projects/repository"
)

const serviceName = "bidboard-backend"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx := context.Background()

	db, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{DSN: cfg.Database.DSN()})
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	deps := bootstrap.RouterDeps{
		ServiceName:    serviceName,
		Version:        cfg.App.Version,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		DB:             db,
	}

	if cfg.Firebase.CredentialsPath != "" {
		authClient, err := auth.InitializeFirebase(&cfg.Firebase)
		if err != nil {
			log.Fatalf("firebase: %v", err)
		}
		deps.AuthClient = authClient
	} else {
		log.Println("FIREBASE_CREDENTIALS_PATH not set, using dev identity fallback")
	}

	rdb, err := bootstrap.OpenRedis(ctx, cfg.Redis)
	if err != nil {
		log.Printf("redis unavailable, orphan cleanup disabled: %v", err)
	} else {
		defer rdb.Close()
		registry := cleanup.NewRegistry(rdb)
		deps.Orphans = registry

		sweeper := cleanup.NewSweeper(registry, repository.NewProjectRepository(db))
		sweeper.Start()
		defer sweeper.Stop()
	}

	r := bootstrap.BuildRouter(deps)

	log.Printf("listening on :%s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
