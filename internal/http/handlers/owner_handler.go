package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/handle-registry/backend/internal/config"
	"github.com/handle-registry/backend/internal/http/dto"
	"github.com/handle-registry/backend/internal/middleware"
	"github.com/handle-registry/backend/internal/services"
	"go.uber.org/zap"
)

type OwnerHandler struct {
	treasury *services.TreasuryService
	cfg      *config.Config
	log      *zap.Logger
}

func NewOwnerHandler(treasury *services.TreasuryService, cfg *config.Config, log *zap.Logger) *OwnerHandler {
	return &OwnerHandler{treasury: treasury, cfg: cfg, log: log}
}

// Withdraw sweeps the accumulated fees to the owner wallet.
// POST /owner/withdraw
func (h *OwnerHandler) Withdraw(c *fiber.Ctx) error {
	amount, err := h.treasury.Withdraw(c.Context(), middleware.GetAddress(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: dto.WithdrawResponse{
		AmountNano: amount,
		To:         h.cfg.OwnerAddress,
	}})
}

// Treasury reports the undisbursed fee balance.
// GET /owner/treasury
func (h *OwnerHandler) Treasury(c *fiber.Ctx) error {
	balance, err := h.treasury.Balance(c.Context(), middleware.GetAddress(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: dto.TreasuryResponse{BalanceNano: balance}})
}

// SetFee changes one of the mutable fee amounts.
// POST /owner/fees
func (h *OwnerHandler) SetFee(c *fiber.Ctx) error {
	var req dto.SetFeeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}
	if req.Kind == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "kind is required"})
	}
	if err := h.treasury.SetFee(c.Context(), middleware.GetAddress(c), req.Kind, req.AmountNano); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}
