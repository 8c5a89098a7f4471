package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/handle-registry/backend/internal/http/dto"
	"github.com/handle-registry/backend/internal/middleware"
	"github.com/handle-registry/backend/internal/services"
	"go.uber.org/zap"
)

// AdminHandler exposes the moderation surface. Tier checks live in the
// services; the handler only shapes requests and responses.
type AdminHandler struct {
	roles *services.RoleService
	stats *services.StatsService
	log   *zap.Logger
}

func NewAdminHandler(roles *services.RoleService, stats *services.StatsService, log *zap.Logger) *AdminHandler {
	return &AdminHandler{roles: roles, stats: stats, log: log}
}

// POST /admin/admins/:address
func (h *AdminHandler) AddAdmin(c *fiber.Ctx) error {
	err := h.roles.AddAdmin(c.Context(), middleware.GetAddress(c), c.Params("address"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}

// DELETE /admin/admins/:address
func (h *AdminHandler) RemoveAdmin(c *fiber.Ctx) error {
	err := h.roles.RemoveAdmin(c.Context(), middleware.GetAddress(c), c.Params("address"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}

// POST /admin/moderators/:address
func (h *AdminHandler) AddModerator(c *fiber.Ctx) error {
	err := h.roles.AddModerator(c.Context(), middleware.GetAddress(c), c.Params("address"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}

// DELETE /admin/moderators/:address
func (h *AdminHandler) RemoveModerator(c *fiber.Ctx) error {
	err := h.roles.RemoveModerator(c.Context(), middleware.GetAddress(c), c.Params("address"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}

// POST /admin/users/:address/ban
func (h *AdminHandler) BanUser(c *fiber.Ctx) error {
	var req dto.BanRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}
	err := h.roles.BanUser(c.Context(), middleware.GetAddress(c), c.Params("address"), req.Reason)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}

// POST /admin/users/:address/unban
func (h *AdminHandler) UnbanUser(c *fiber.Ctx) error {
	err := h.roles.UnbanUser(c.Context(), middleware.GetAddress(c), c.Params("address"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}

// POST /admin/users/:address/permissions/:name
func (h *AdminHandler) GrantPermission(c *fiber.Ctx) error {
	err := h.roles.GrantPermission(c.Context(), middleware.GetAddress(c), c.Params("address"), c.Params("name"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}

// DELETE /admin/users/:address/permissions/:name
func (h *AdminHandler) RevokePermission(c *fiber.Ctx) error {
	err := h.roles.RevokePermission(c.Context(), middleware.GetAddress(c), c.Params("address"), c.Params("name"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}

// POST /admin/users/:address/reputation
func (h *AdminHandler) UpdateReputation(c *fiber.Ctx) error {
	var req dto.ReputationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}
	target := c.Params("address")
	rep, err := h.stats.UpdateReputation(c.Context(), middleware.GetAddress(c), target, req.Delta)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: dto.ReputationResponse{Address: target, Reputation: rep}})
}

// POST /admin/users/:address/stats
func (h *AdminHandler) UpdateStats(c *fiber.Ctx) error {
	var req dto.StatsUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}
	err := h.stats.UpdateStats(c.Context(), middleware.GetAddress(c), c.Params("address"), req.Kind, req.Increment)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}
