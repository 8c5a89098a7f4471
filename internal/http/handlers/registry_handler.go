package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/handle-registry/backend/internal/http/dto"
	"github.com/handle-registry/backend/internal/middleware"
	"github.com/handle-registry/backend/internal/models"
	"github.com/handle-registry/backend/internal/services"
	"go.uber.org/zap"
)

type RegistryHandler struct {
	identities *services.IdentityService
	roles      *services.RoleService
	stats      *services.StatsService
	log        *zap.Logger
}

func NewRegistryHandler(
	identities *services.IdentityService,
	roles *services.RoleService,
	stats *services.StatsService,
	log *zap.Logger,
) *RegistryHandler {
	return &RegistryHandler{identities: identities, roles: roles, stats: stats, log: log}
}

// Register claims a handle for the authenticated address.
// POST /registry/register
func (h *RegistryHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}
	caller := middleware.GetAddress(c)
	identity, err := h.identities.Register(c.Context(), caller, req.PaymentRef, req.Username, req.Bio, req.Avatar)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: identity})
}

// Me returns the caller's own profile.
// GET /me
func (h *RegistryHandler) Me(c *fiber.Ctx) error {
	profile, err := h.identities.Profile(c.Context(), middleware.GetAddress(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: profile})
}

// UpdateProfile rewrites the caller's profile, handle included.
// PUT /me/profile
func (h *RegistryHandler) UpdateProfile(c *fiber.Ctx) error {
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}
	caller := middleware.GetAddress(c)
	err := h.identities.UpdateProfile(c.Context(), caller, models.ProfileUpdate{
		Username: req.Username,
		Bio:      req.Bio,
		Avatar:   req.Avatar,
		Email:    req.Email,
		Twitter:  req.Twitter,
		Github:   req.Github,
		Website:  req.Website,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}

// Profile returns any address's profile; unknown addresses yield a
// zero-valued one.
// GET /registry/profiles/:address
func (h *RegistryHandler) Profile(c *fiber.Ctx) error {
	profile, err := h.identities.Profile(c.Context(), c.Params("address"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: profile})
}

// ResolveUsername maps a handle to its owning address, "" if unclaimed.
// GET /registry/usernames/:username
func (h *RegistryHandler) ResolveUsername(c *fiber.Ctx) error {
	username := c.Params("username")
	address, err := h.identities.AddressByUsername(c.Context(), username)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: dto.ResolveResponse{Username: username, Address: address}})
}

// Count returns the total number of registered identities.
// GET /registry/count
func (h *RegistryHandler) Count(c *fiber.Ctx) error {
	count, err := h.identities.Count(c.Context())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: dto.CountResponse{Count: count}})
}

// Permission reports one permission bit for an address.
// GET /registry/permissions/:address/:name
func (h *RegistryHandler) Permission(c *fiber.Ctx) error {
	address := c.Params("address")
	name := c.Params("name")
	granted, err := h.roles.HasPermission(c.Context(), address, name)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: dto.PermissionResponse{
		Address:    address,
		Permission: name,
		Granted:    granted,
	}})
}

// Stats returns the activity counters for an address, zero-valued when the
// address has none.
// GET /registry/stats/:address
func (h *RegistryHandler) Stats(c *fiber.Ctx) error {
	st, err := h.stats.Stats(c.Context(), c.Params("address"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: st})
}

// Roles reports the role membership of an address.
// GET /registry/roles/:address
func (h *RegistryHandler) Roles(c *fiber.Ctx) error {
	m, err := h.roles.Roles(c.Context(), c.Params("address"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: m})
}
