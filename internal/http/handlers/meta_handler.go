package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/handle-registry/backend/internal/config"
	"github.com/handle-registry/backend/internal/http/dto"
	"github.com/handle-registry/backend/internal/repositories"
	"github.com/handle-registry/backend/internal/services"
	"go.uber.org/zap"
)

// MetaHandler serves the public facts a client needs before paying:
// the current fee schedule and where to send the deposit.
type MetaHandler struct {
	treasury *services.TreasuryService
	cfg      *config.Config
	log      *zap.Logger
}

func NewMetaHandler(treasury *services.TreasuryService, cfg *config.Config, log *zap.Logger) *MetaHandler {
	return &MetaHandler{treasury: treasury, cfg: cfg, log: log}
}

// GET /meta/fees
func (h *MetaHandler) Fees(c *fiber.Ctx) error {
	reg, ver, err := h.treasury.Fees(c.Context())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: dto.FeesResponse{
		RegistrationFeeNano: reg,
		VerificationFeeNano: ver,
	}})
}

// DepositInfo hands out a fresh memo and the treasury address for a
// fee payment. The watcher matches the incoming transfer by this memo.
// GET /meta/deposit-info?kind=registration_fee
func (h *MetaHandler) DepositInfo(c *fiber.Ctx) error {
	reg, ver, err := h.treasury.Fees(c.Context())
	if err != nil {
		return respondError(c, h.log, err)
	}
	min := reg
	if c.Query("kind") == repositories.FeeVerification {
		min = ver
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: dto.DepositInfoResponse{
		WalletAddress: h.cfg.TreasuryWalletAddress,
		Memo:          uuid.NewString(),
		MinAmountNano: min,
	}})
}
