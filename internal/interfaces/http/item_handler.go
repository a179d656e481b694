package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/guilhermesenci/stock-control/internal/application/dto"
	"github.com/guilhermesenci/stock-control/internal/application/inventory"
	"github.com/guilhermesenci/stock-control/internal/application/usecase"
)

// ItemHandler catálogo de items y su posición de stock.
type ItemHandler struct {
	uc    *usecase.ItemUseCase
	stock *inventory.StockUseCase
}

func NewItemHandler(uc *usecase.ItemUseCase, stock *inventory.StockUseCase) *ItemHandler {
	return &ItemHandler{uc: uc, stock: stock}
}

// Create godoc
// @Summary      Crear item
// @Tags         items
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreateItemRequest  true  "item"
// @Success      201   {object}  dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/items [post]
func (h *ItemHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateItemRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar items
// @Tags         items
// @Produce      json
// @Security     BearerAuth
// @Param        sku                     query  string  false  "subcadena del SKU"
// @Param        description             query  string  false  "subcadena de la descripción"
// @Param        show_only_active_items  query  bool    false  "solo activos"
// @Param        ordering                query  string  false  "ej. -description,sku"
// @Param        page                    query  int     false  "página"
// @Param        page_size               query  int     false  "tamaño de página"
// @Success      200  {object}  dto.ItemListResponse
// @Router       /api/items [get]
func (h *ItemHandler) List(c *fiber.Ctx) error {
	var in dto.ItemListRequest
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
// @Summary      Obtener item
// @Tags         items
// @Produce      json
// @Security     BearerAuth
// @Param        sku  path  string  true  "SKU"
// @Success      200  {object}  dto.ItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{sku} [get]
func (h *ItemHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("sku"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar item
// @Tags         items
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        sku   path  string                 true  "SKU"
// @Param        body  body  dto.UpdateItemRequest  true  "campos a cambiar"
// @Success      200   {object}  dto.ItemResponse
// @Router       /api/items/{sku} [put]
func (h *ItemHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateItemRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("sku"), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Borrar item
// @Description  Con transacciones registradas responde 409; desactivarlo en su lugar.
// @Tags         items
// @Security     BearerAuth
// @Param        sku  path  string  true  "SKU"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/items/{sku} [delete]
func (h *ItemHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("sku")); err != nil {
		return handleError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Stock godoc
// @Summary      Posición de stock del item
// @Tags         items
// @Produce      json
// @Security     BearerAuth
// @Param        sku         path   string  true   "SKU"
// @Param        stock_date  query  string  false  "YYYY-MM-DD o DD/MM/YYYY (hoy por defecto)"
// @Success      200  {object}  dto.StockItemResponse
// @Router       /api/items/{sku}/stock [get]
func (h *ItemHandler) Stock(c *fiber.Ctx) error {
	out, err := h.stock.Position(c.UserContext(), c.Params("sku"), c.Query("stock_date"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// Costs godoc
// @Summary      Costo promedio y último costo de entrada
// @Tags         items
// @Produce      json
// @Security     BearerAuth
// @Param        sku         path   string  true   "SKU"
// @Param        stock_date  query  string  false  "fecha de corte"
// @Success      200  {object}  dto.ItemCostResponse
// @Router       /api/items/{sku}/costs [get]
func (h *ItemHandler) Costs(c *fiber.Ctx) error {
	out, err := h.stock.Costs(c.UserContext(), c.Params("sku"), c.Query("stock_date"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}
