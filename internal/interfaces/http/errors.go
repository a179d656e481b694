package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/guilhermesenci/stock-control/internal/application/dto"
	"github.com/guilhermesenci/stock-control/internal/domain"
	"github.com/guilhermesenci/stock-control/internal/infrastructure/lock"
)

// handleError traduce errores de dominio a status HTTP con cuerpo dto.ErrorResponse.
func handleError(c *fiber.Ctx, err error) error {
	var rule *domain.RuleError
	if errors.As(err, &rule) {
		code := "RULE_VIOLATION"
		if errors.Is(err, domain.ErrInsufficientStock) {
			code = "INSUFFICIENT_STOCK"
		} else if errors.Is(err, domain.ErrNegativeStock) {
			code = "NEGATIVE_STOCK"
		}
		return fail(c, fiber.StatusBadRequest, code, rule.Message)
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return fail(c, fiber.StatusBadRequest, "VALIDATION", err.Error())
	case errors.Is(err, domain.ErrPasswordMismatch):
		return fail(c, fiber.StatusBadRequest, "PASSWORD_MISMATCH", err.Error())
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrNotFound):
		return fail(c, fiber.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return fail(c, fiber.StatusConflict, "EMAIL_EXISTS", err.Error())
	case errors.Is(err, domain.ErrDuplicate):
		return fail(c, fiber.StatusConflict, "DUPLICATE", err.Error())
	case errors.Is(err, domain.ErrConflict):
		return fail(c, fiber.StatusConflict, "CONFLICT", err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		return fail(c, fiber.StatusUnauthorized, "UNAUTHORIZED", err.Error())
	case errors.Is(err, domain.ErrForbidden):
		return fail(c, fiber.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, lock.ErrNotObtained):
		return fail(c, fiber.StatusServiceUnavailable, "LOCKED", "el item está siendo modificado, intente de nuevo")
	}
	return fail(c, fiber.StatusInternalServerError, "INTERNAL", err.Error())
}

func fail(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: message})
}

// ErrorHandler manejador global de fiber para errores no atendidos por los handlers (404 de ruta, panics recuperados).
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fail(c, fe.Code, "HTTP_ERROR", fe.Message)
	}
	return handleError(c, err)
}
