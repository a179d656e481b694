package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/guilhermesenci/stock-control/internal/application/dto"
	"github.com/guilhermesenci/stock-control/internal/application/inventory"
)

// profileResolver obtiene (o crea) el perfil de inventario de una cuenta. Lo implementa
// *auth.AuthUseCase; los tokens emitidos antes de existir el perfil traen user_id 0.
type profileResolver interface {
	InventoryProfile(ctx context.Context, accountID int64) (*dto.UserResponse, error)
}

// TransactionHandler movimientos del libro y operaciones de consistencia.
type TransactionHandler struct {
	uc       *inventory.TransactionUseCase
	profiles profileResolver
}

func NewTransactionHandler(uc *inventory.TransactionUseCase, profiles profileResolver) *TransactionHandler {
	return &TransactionHandler{uc: uc, profiles: profiles}
}

// Create godoc
// @Summary      Registrar entrada o salida
// @Description  Las salidas toman el costo promedio vigente y se rechazan sin stock suficiente.
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreateTransactionRequest  true  "movimiento"
// @Success      201   {object}  dto.MutationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/transactions [post]
func (h *TransactionHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTransactionRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	sub, _ := GetSubject(c)
	userID := sub.UserID
	if userID == 0 {
		profile, err := h.profiles.InventoryProfile(c.UserContext(), sub.AccountID)
		if err != nil {
			return handleError(c, err)
		}
		userID = profile.ID
	}
	out, err := h.uc.Create(c.UserContext(), userID, in)
	if err != nil {
		return handleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listado unificado de entradas y salidas
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        kind         query  string  false  "entry | exit"
// @Param        sku          query  string  false  "subcadena del SKU"
// @Param        description  query  string  false  "subcadena de la descripción del item"
// @Param        invoice_ref  query  string  false  "referencia de factura (solo entradas)"
// @Param        date_from    query  string  false  "desde (inclusive)"
// @Param        date_to      query  string  false  "hasta (inclusive)"
// @Param        ordering     query  string  false  "ej. -date,sku"
// @Success      200  {object}  dto.TransactionListResponse
// @Router       /api/transactions [get]
func (h *TransactionHandler) List(c *fiber.Ctx) error {
	var in dto.TransactionListRequest
	if ok, err := parseQuery(c, &in); !ok {
		return err
	}
	out, err := h.uc.List(c.UserContext(), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener movimiento
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "entry-<id> | exit-<id>"
// @Success      200  {object}  dto.TransactionResponse
// @Router       /api/transactions/{id} [get]
func (h *TransactionHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Editar movimiento
// @Description  Se valida la consistencia del libro y se recalculan las salidas posteriores.
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                        true  "entry-<id> | exit-<id>"
// @Param        body  body  dto.UpdateTransactionRequest  true  "campos a cambiar"
// @Success      200   {object}  dto.MutationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/transactions/{id} [put]
func (h *TransactionHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateTransactionRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Borrar movimiento
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "entry-<id> | exit-<id>"
// @Success      200  {object}  dto.MutationResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/transactions/{id} [delete]
func (h *TransactionHandler) Delete(c *fiber.Ctx) error {
	out, err := h.uc.Delete(c.UserContext(), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// Validate godoc
// @Summary      Simular borrado o edición
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.ValidateOperationRequest  true  "operación"
// @Success      200   {object}  dto.ValidationResponse
// @Router       /api/ledger/validate [post]
func (h *TransactionHandler) Validate(c *fiber.Ctx) error {
	var in dto.ValidateOperationRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Validate(c.UserContext(), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// Availability godoc
// @Summary      Stock disponible para una salida
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.AvailabilityRequest  true  "sku y cantidad"
// @Success      200   {object}  dto.AvailabilityResponse
// @Router       /api/ledger/availability [post]
func (h *TransactionHandler) Availability(c *fiber.Ctx) error {
	var in dto.AvailabilityRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.CheckAvailability(c.UserContext(), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// Recalculate godoc
// @Summary      Recalcular salidas posteriores
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.RecalculateRequest  true  "sku y transacción pivote"
// @Success      200   {object}  dto.RecalculateResponse
// @Router       /api/ledger/recalculate [post]
func (h *TransactionHandler) Recalculate(c *fiber.Ctx) error {
	var in dto.RecalculateRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Recalculate(c.UserContext(), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}
