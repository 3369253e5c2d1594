package httpapi

import (
	"errors"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/gofiber/fiber/v2"
)

// statusFor maps an error kind to its HTTP status. Order matters: an
// inconsistency wraps a store failure, which may wrap anything.
func statusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, common.ErrInconsistent):
		return fiber.StatusInternalServerError
	case errors.Is(err, common.ErrStoreFailure):
		return fiber.StatusBadGateway
	case errors.Is(err, common.ErrDanglingReference):
		return fiber.StatusGone
	case errors.Is(err, common.ErrUnsupportedContent):
		return fiber.StatusUnsupportedMediaType
	case errors.Is(err, common.ErrorValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, common.ErrNoSession),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return fiber.StatusUnauthorized
	case errors.Is(err, common.ErrorUnauthorized):
		return fiber.StatusForbidden
	case errors.Is(err, common.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, common.ErrorNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		s.log.Error(c.UserContext(), "request failed", "method", c.Method(), "path", c.Path(), "error", err)
	}
	return c.Status(status).JSON(errorResponse{Error: err.Error()})
}
