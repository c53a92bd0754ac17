package httpapi

import (
	"errors"

	"github.com/dmitrijs2005/matchkeeper/internal/common"
	"github.com/gofiber/fiber/v2"
)

type errorResponse struct {
	Message string `json:"message"`
}

// statusFor maps a service error to an HTTP status.
func statusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, common.ErrorNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, common.ErrorForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, common.ErrorValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, common.ErrNoUpdateData):
		return fiber.StatusPreconditionFailed
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrInvalidToken):
		return fiber.StatusUnauthorized
	case errors.Is(err, common.ErrIdentityLookupFailed):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := statusFor(err)

	msg := err.Error()
	switch code {
	case fiber.StatusInternalServerError:
		s.logger.Error(c.UserContext(), "request failed", "method", c.Method(), "path", c.Path(), "error", err)
		msg = common.ErrorInternal.Error()
	case fiber.StatusUnauthorized:
		msg = common.ErrorUnauthorized.Error()
	case fiber.StatusBadGateway:
		msg = common.ErrIdentityLookupFailed.Error()
	}

	return c.Status(code).JSON(errorResponse{Message: msg})
}
