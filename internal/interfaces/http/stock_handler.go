package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/guilhermesenci/stock-control/internal/application/dto"
	"github.com/guilhermesenci/stock-control/internal/application/inventory"
)

// StockHandler valuación del catálogo y exportación del reporte de costos.
type StockHandler struct {
	uc *inventory.StockUseCase
}

func NewStockHandler(uc *inventory.StockUseCase) *StockHandler {
	return &StockHandler{uc: uc}
}

// List godoc
// @Summary      Stock y costos por item
// @Tags         stocks
// @Produce      json
// @Security     BearerAuth
// @Param        sku          query  string  false  "subcadena del SKU"
// @Param        description  query  string  false  "subcadena de la descripción"
// @Param        active_only  query  bool    false  "solo items activos"
// @Param        has_stock    query  bool    false  "solo items con stock"
// @Param        stock_date   query  string  false  "fecha de corte"
// @Param        ordering     query  string  false  "ej. -total_cost"
// @Success      200  {object}  dto.StockListResponse
// @Router       /api/stocks [get]
func (h *StockHandler) List(c *fiber.Ctx) error {
	var in dto.StockListRequest
	if ok, err := parseQuery(c, &in); !ok {
		return err
	}
	out, err := h.uc.List(c.UserContext(), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// Export godoc
// @Summary      Exportar reporte de costos
// @Tags         stocks
// @Produce      application/pdf
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Param        format      query  string  true   "xlsx | pdf"
// @Param        stock_date  query  string  false  "fecha de corte"
// @Success      200
// @Router       /api/stocks/export [get]
func (h *StockHandler) Export(c *fiber.Ctx) error {
	var in dto.StockListRequest
	if ok, err := parseQuery(c, &in); !ok {
		return err
	}
	data, contentType, filename, err := h.uc.Export(c.UserContext(), c.Query("format"), in)
	if err != nil {
		return handleError(c, err)
	}
	c.Set(fiber.HeaderContentType, contentType)
	c.Attachment(filename)
	return c.Send(data)
}
