package http

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/handle-registry/backend/internal/config"
	"github.com/handle-registry/backend/internal/http/handlers"
	"github.com/handle-registry/backend/internal/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	authHandler *handlers.AuthHandler,
	registryHandler *handlers.RegistryHandler,
	verificationHandler *handlers.VerificationHandler,
	adminHandler *handlers.AdminHandler,
	ownerHandler *handlers.OwnerHandler,
	metaHandler *handlers.MetaHandler,
	wsHub *handlers.WSHub,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")

	// Auth (public)
	api.Post("/auth/proof-payload", authHandler.ProofPayload)
	api.Post("/auth/wallet", authHandler.WalletAuth)

	// Rate-limited public endpoints
	api.Use(middleware.RateLimitMiddleware(rdb, 100, time.Minute))

	// Meta (public, no auth required)
	api.Get("/meta/fees", metaHandler.Fees)
	api.Get("/meta/deposit-info", metaHandler.DepositInfo)

	// Registry reads (public)
	api.Get("/registry/profiles/:address", registryHandler.Profile)
	api.Get("/registry/usernames/:username", registryHandler.ResolveUsername)
	api.Get("/registry/count", registryHandler.Count)
	api.Get("/registry/permissions/:address/:name", registryHandler.Permission)
	api.Get("/registry/stats/:address", registryHandler.Stats)
	api.Get("/registry/roles/:address", registryHandler.Roles)

	// Protected endpoints. The second limiter sits behind auth, so it keys
	// on the caller address rather than the IP.
	protected := api.Group("", middleware.AuthMiddleware(cfg, log))
	protected.Use(middleware.RateLimitMiddleware(rdb, 60, time.Minute))

	// Self-service
	protected.Post("/registry/register", registryHandler.Register)
	protected.Get("/me", registryHandler.Me)
	protected.Put("/me/profile", registryHandler.UpdateProfile)

	// Verification
	protected.Post("/verification/requests", verificationHandler.Submit)
	protected.Get("/verification/requests/:id", verificationHandler.Get)
	protected.Get("/verification/me", verificationHandler.Mine)

	// Admin (tier checks live in the services)
	protected.Post("/admin/verification/:id/process", verificationHandler.Process)
	protected.Post("/admin/admins/:address", adminHandler.AddAdmin)
	protected.Delete("/admin/admins/:address", adminHandler.RemoveAdmin)
	protected.Post("/admin/moderators/:address", adminHandler.AddModerator)
	protected.Delete("/admin/moderators/:address", adminHandler.RemoveModerator)
	protected.Post("/admin/users/:address/ban", adminHandler.BanUser)
	protected.Post("/admin/users/:address/unban", adminHandler.UnbanUser)
	protected.Post("/admin/users/:address/permissions/:name", adminHandler.GrantPermission)
	protected.Delete("/admin/users/:address/permissions/:name", adminHandler.RevokePermission)
	protected.Post("/admin/users/:address/reputation", adminHandler.UpdateReputation)
	protected.Post("/admin/users/:address/stats", adminHandler.UpdateStats)

	// Owner
	protected.Post("/owner/withdraw", ownerHandler.Withdraw)
	protected.Get("/owner/treasury", ownerHandler.Treasury)
	protected.Post("/owner/fees", ownerHandler.SetFee)

	// WebSocket
	app.Use("/ws", handlers.WSUpgradeMiddleware())
	app.Get("/ws", websocket.New(wsHub.HandleWS))
}
