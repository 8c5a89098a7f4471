package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/handle-registry/backend/internal/http/dto"
	"github.com/handle-registry/backend/internal/middleware"
	"github.com/handle-registry/backend/internal/models"
	"go.uber.org/zap"
)

// respondError translates a registry error kind into an HTTP status and a
// machine-matchable code. Untyped errors become opaque 500s.
func respondError(c *fiber.Ctx, log *zap.Logger, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		log.Error("request failed",
			zap.String("path", c.Path()),
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Error(err),
		)
		return c.Status(status).JSON(dto.ErrorResponse{
			Error:     "internal server error",
			RequestID: middleware.GetRequestID(c),
		})
	}
	return c.Status(status).JSON(dto.ErrorResponse{
		Error:     err.Error(),
		Code:      models.ErrorCode(err),
		RequestID: middleware.GetRequestID(c),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrUsernameTooShort),
		errors.Is(err, models.ErrUsernameTooLong),
		errors.Is(err, models.ErrBioTooLong),
		errors.Is(err, models.ErrEmptyPayload),
		errors.Is(err, models.ErrInvalidFeeKind):
		return fiber.StatusBadRequest

	case errors.Is(err, models.ErrInsufficientFee),
		errors.Is(err, models.ErrInvalidPayment):
		return fiber.StatusPaymentRequired

	case errors.Is(err, models.ErrNotOwner),
		errors.Is(err, models.ErrNotAdmin),
		errors.Is(err, models.ErrNotModerator),
		errors.Is(err, models.ErrUserBanned),
		errors.Is(err, models.ErrUserInactive),
		errors.Is(err, models.ErrCannotBanOwner),
		errors.Is(err, models.ErrCannotRemoveOwnerAdmin):
		return fiber.StatusForbidden

	case errors.Is(err, models.ErrUserNotRegistered),
		errors.Is(err, models.ErrInvalidVerificationID):
		return fiber.StatusNotFound

	case errors.Is(err, models.ErrUsernameTaken),
		errors.Is(err, models.ErrUserAlreadyRegistered),
		errors.Is(err, models.ErrRequestAlreadyProcessed),
		errors.Is(err, models.ErrUserAlreadyBanned),
		errors.Is(err, models.ErrUserNotBanned),
		errors.Is(err, models.ErrEmptyBalance),
		errors.Is(err, models.ErrWithdrawInFlight):
		return fiber.StatusConflict

	case errors.Is(err, models.ErrWithdrawFailed):
		return fiber.StatusBadGateway

	default:
		return fiber.StatusInternalServerError
	}
}
