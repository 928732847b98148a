package app

import (
	"context"
	"fmt"

	"clawfans/internal/billing"
	"clawfans/internal/config"
	"clawfans/internal/database"
	"clawfans/internal/repository"
	"clawfans/internal/service"
	"clawfans/internal/storage"
)

func App(ctx context.Context, cfg *config.Config) (*database.DB, *repository.Repository, *service.Service, error) {
	// connection DB
	db, err := database.ConnectDB(ctx, cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// connection MinIO
	minioClient, err := storage.NewMinIOClient(ctx, cfg.MinIO)
	if err != nil {
		db.CloseDB()
		return nil, nil, nil, fmt.Errorf("failed to initialize MinIO: %w", err)
	}

	gateway := billing.NewStripeGateway(cfg.Stripe, cfg.AppURL)

	// enabling dependencies
	repo := repository.NewRepository(db.DB)

	services := service.NewService(repo, cfg, minioClient, gateway)

	return db, repo, services, nil
}
