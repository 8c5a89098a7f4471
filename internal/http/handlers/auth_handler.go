package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/handle-registry/backend/internal/auth"
	"github.com/handle-registry/backend/internal/config"
	"github.com/handle-registry/backend/internal/http/dto"
	"github.com/handle-registry/backend/internal/ton"
	"go.uber.org/zap"
)

type AuthHandler struct {
	nonces *auth.NonceStore
	cfg    *config.Config
	log    *zap.Logger
}

func NewAuthHandler(nonces *auth.NonceStore, cfg *config.Config, log *zap.Logger) *AuthHandler {
	return &AuthHandler{nonces: nonces, cfg: cfg, log: log}
}

// ProofPayload issues a single-use nonce the wallet must sign into its
// ton_proof.
// POST /auth/proof-payload
func (h *AuthHandler) ProofPayload(c *fiber.Ctx) error {
	payload, err := h.nonces.Issue(c.Context())
	if err != nil {
		h.log.Error("failed to issue proof payload", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal server error"})
	}
	return c.JSON(dto.ProofPayloadResponse{Payload: payload})
}

// WalletAuth verifies a TON Connect proof and issues a JWT bound to the
// proven address. Registration is a separate, fee-gated step.
// POST /auth/wallet
func (h *AuthHandler) WalletAuth(c *fiber.Ctx) error {
	var req dto.WalletAuthRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}
	if req.Address == "" || req.PublicKey == "" || req.Proof.Signature == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "address, public_key and proof.signature are required"})
	}
	if req.Network != "" && req.Network != h.cfg.TONNetwork {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "network mismatch"})
	}

	// Consume the nonce first so a failed proof still burns it.
	if err := h.nonces.Consume(c.Context(), req.Proof.Payload); err != nil {
		h.log.Debug("proof nonce rejected", zap.Error(err))
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "invalid or expired proof payload"})
	}

	workchain, addrHash, err := ton.ParseRawAddress(req.Address)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	if err := ton.VerifyProof(req.PublicKey, addrHash, workchain, req.Proof, h.cfg.ProofAllowedDomains, h.cfg.ProofMaxAge); err != nil {
		h.log.Debug("proof verification failed", zap.String("address", req.Address), zap.Error(err))
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "proof verification failed"})
	}

	token, err := auth.GenerateJWT(h.cfg.JWTSecret, req.Address, h.cfg.JWTExpiration)
	if err != nil {
		h.log.Error("failed to generate jwt", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal server error"})
	}

	return c.JSON(dto.AuthResponse{Token: token, Address: req.Address})
}
