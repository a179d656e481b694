package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/guilhermesenci/stock-control/internal/application/auth"
	"github.com/guilhermesenci/stock-control/internal/application/dto"
	"github.com/guilhermesenci/stock-control/internal/domain"
)

// AuthHandler maneja registro, login y datos de la sesión.
type AuthHandler struct {
	uc *auth.AuthUseCase
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(uc *auth.AuthUseCase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

// Register godoc
// @Summary      Registrar cuenta
// @Description  Crea la cuenta y su perfil de inventario.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterRequest  true  "username, email, password, password2"
// @Success      201   {object}  dto.MeResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Register(c.UserContext(), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Login godoc
// @Summary      Iniciar sesión
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "email o username, password"
// @Success      200   {object}  dto.LoginResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Login(c.UserContext(), in)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrUnauthorized) {
			return fail(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "credenciales inválidas")
		}
		if errors.Is(err, domain.ErrForbidden) {
			return fail(c, fiber.StatusForbidden, "FORBIDDEN", "cuenta inactiva")
		}
		return handleError(c, err)
	}
	return c.JSON(out)
}

// Me godoc
// @Summary      Cuenta autenticada
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.MeResponse
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	sub, _ := GetSubject(c)
	out, err := h.uc.Me(c.UserContext(), sub.AccountID)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// Inventory godoc
// @Summary      Perfil de inventario de la cuenta
// @Description  Lo crea si la cuenta aún no tiene uno.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.UserResponse
// @Router       /api/auth/me/inventory [get]
func (h *AuthHandler) Inventory(c *fiber.Ctx) error {
	sub, _ := GetSubject(c)
	out, err := h.uc.InventoryProfile(c.UserContext(), sub.AccountID)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}
