package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/handle-registry/backend/internal/http/dto"
	"github.com/handle-registry/backend/internal/middleware"
	"github.com/handle-registry/backend/internal/services"
	"go.uber.org/zap"
)

type VerificationHandler struct {
	verification *services.VerificationService
	log          *zap.Logger
}

func NewVerificationHandler(verification *services.VerificationService, log *zap.Logger) *VerificationHandler {
	return &VerificationHandler{verification: verification, log: log}
}

// Submit files a verification request for the caller.
// POST /verification/requests
func (h *VerificationHandler) Submit(c *fiber.Ctx) error {
	var req dto.SubmitVerificationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}
	caller := middleware.GetAddress(c)
	id, err := h.verification.Submit(c.Context(), caller, req.PaymentRef, req.Payload, req.Type)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: fiber.Map{"request_id": id}})
}

// Get returns one verification request by id.
// GET /verification/requests/:id
func (h *VerificationHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request id"})
	}
	req, err := h.verification.Get(c.Context(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: req})
}

// Mine lists the caller's own verification requests.
// GET /verification/me
func (h *VerificationHandler) Mine(c *fiber.Ctx) error {
	list, err := h.verification.ListByAddress(c.Context(), middleware.GetAddress(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: list})
}

// Process approves or rejects a pending request.
// POST /admin/verification/:id/process
func (h *VerificationHandler) Process(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request id"})
	}
	var req dto.ProcessVerificationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}
	if err := h.verification.Process(c.Context(), middleware.GetAddress(c), id, req.Approve); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}
