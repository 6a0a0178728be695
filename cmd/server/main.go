package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"engagehub/internal/core"
	"engagehub/internal/events"
	grpcProtocol "engagehub/internal/protocols/grpc"
	httpProtocol "engagehub/internal/protocols/http"
	"engagehub/internal/repository"
	"engagehub/pkg/config"
	"engagehub/pkg/database"
	"engagehub/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Logging)
	logger.Info("Starting engagehub server...")

	store, err := openStore(cfg)
	if err != nil {
		logger.Fatalf("Failed to open %s store: %v", cfg.Store.Driver, err)
	}
	defer store.Close()

	publisher, err := openPublisher(cfg)
	if err != nil {
		logger.Fatalf("Failed to connect to redis: %v", err)
	}
	defer publisher.Close()

	opts := []core.Option{
		core.WithPublisher(publisher),
		core.WithPostDirectory(core.StaticPostDirectory(cfg.Posts)),
		core.WithMaxCommentLength(cfg.Engagement.MaxCommentLength),
	}
	services := httpProtocol.NewServices(store, opts...)
	logger.Info("Initialized engagement services")

	httpServer := httpProtocol.NewServer(cfg, store, services)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorf("HTTP server panic recovered: %v", r)
			}
		}()
		if err := httpServer.Start(cfg.HTTPAddr()); err != nil {
			logger.Fatalf("HTTP server error: %v", err)
		}
	}()

	var grpcServer *grpcProtocol.Server
	if cfg.GRPC.Enabled {
		grpcServer = grpcProtocol.NewServer(cfg.GRPCAddr(), store, grpcProtocol.DefaultCheckInterval)
		if err := grpcServer.Start(); err != nil {
			logger.Fatalf("gRPC server error: %v", err)
		}
	} else {
		logger.Info("gRPC health server disabled")
	}

	logger.Info("Press Ctrl+C to shutdown")

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if grpcServer != nil {
		grpcServer.WaitForShutdown(sigCtx)
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("HTTP shutdown error: %v", err)
	}

	logger.Info("Shutdown complete")
}

func openStore(cfg *config.Config) (repository.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		pool, err := database.NewPGXPool(cfg.Database.Connection())
		if err != nil {
			return nil, err
		}
		logger.Info("Connected to PostgreSQL database")
		return repository.NewPostgresStore(pool), nil
	default:
		logger.Warn("Using in-memory store; data is lost on restart")
		return repository.NewMemoryStore(), nil
	}
}

func openPublisher(cfg *config.Config) (events.Publisher, error) {
	if !cfg.Redis.Enabled {
		return events.NoopPublisher{}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	logger.Infof("Publishing engagement events to redis stream %s", cfg.Redis.Stream)
	return events.NewRedisPublisher(client, cfg.Redis.Stream, cfg.Redis.MaxLen), nil
}
