package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/handle-registry/backend/internal/auth"
	"github.com/handle-registry/backend/internal/config"
	"github.com/handle-registry/backend/internal/db"
	"github.com/handle-registry/backend/internal/events"
	apphttp "github.com/handle-registry/backend/internal/http"
	"github.com/handle-registry/backend/internal/http/handlers"
	"github.com/handle-registry/backend/internal/repositories"
	"github.com/handle-registry/backend/internal/services"
	"github.com/handle-registry/backend/internal/ton"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	// Run migrations
	if err := db.RunMigrations(ctx, pool, "migrations", log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Store
	store := repositories.NewPostgres(pool)
	if err := store.SeedFees(ctx, cfg.RegistrationFeeNano, cfg.VerificationFeeNano); err != nil {
		log.Fatal("failed to seed fee settings", zap.Error(err))
	}

	// Events
	publisher := events.NewRedisPublisher(rdb, log)
	subscriber := events.NewRedisSubscriber(rdb, log)

	// Treasury transferor: a configured wallet seed enables withdrawals.
	var transferor ton.Transferor = ton.DisabledTransferor{}
	if len(cfg.TreasuryWalletSeed) > 0 {
		api, err := ton.Connect(ctx, cfg, log)
		if err != nil {
			log.Fatal("failed to connect to TON network", zap.Error(err))
		}
		wallet, err := ton.NewTreasuryWallet(api, cfg.TreasuryWalletSeed)
		if err != nil {
			log.Fatal("failed to load treasury wallet", zap.Error(err))
		}
		transferor = wallet
		log.Info("treasury wallet loaded", zap.String("address", wallet.Address()))
	}

	// Services
	identityService := services.NewIdentityService(store, publisher, cfg, log)
	roleService := services.NewRoleService(store, publisher, cfg, log)
	verificationService := services.NewVerificationService(store, publisher, cfg, log)
	statsService := services.NewStatsService(store, cfg, log)
	treasuryService := services.NewTreasuryService(store, transferor, cfg, log)

	// Handlers
	nonces := auth.NewNonceStore(rdb, cfg.ProofNonceTTL)
	authHandler := handlers.NewAuthHandler(nonces, cfg, log)
	registryHandler := handlers.NewRegistryHandler(identityService, roleService, statsService, log)
	verificationHandler := handlers.NewVerificationHandler(verificationService, log)
	adminHandler := handlers.NewAdminHandler(roleService, statsService, log)
	ownerHandler := handlers.NewOwnerHandler(treasuryService, cfg, log)
	metaHandler := handlers.NewMetaHandler(treasuryService, cfg, log)
	wsHub := handlers.NewWSHub(cfg, subscriber, log)

	// Start WS hub
	wsHub.Start(ctx)

	// Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	apphttp.SetupRouter(app, cfg, log, rdb, authHandler, registryHandler, verificationHandler, adminHandler, ownerHandler, metaHandler, wsHub)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
