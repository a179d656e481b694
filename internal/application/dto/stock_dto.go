package dto

import "github.com/shopspring/decimal"

// StockListRequest filtros de la valuación por item.
type StockListRequest struct {
	ListRequest
	SKU         string `query:"sku"`
	Description string `query:"description"`
	ActiveOnly  bool   `query:"active_only"`
	HasStock    bool   `query:"has_stock"`
	StockDate   string `query:"stock_date"`
}

// StockItemResponse métricas de un item a la fecha de corte.
type StockItemResponse struct {
	SKU                      string          `json:"sku"`
	Description              string          `json:"description"`
	UnitMeasure              string          `json:"unit_measure"`
	Active                   bool            `json:"active"`
	Quantity                 decimal.Decimal `json:"quantity"`
	UnitCost                 decimal.Decimal `json:"unit_cost"`
	TotalCost                decimal.Decimal `json:"total_cost"`
	LastEntryCost            decimal.Decimal `json:"last_entry_cost"`
	EstimatedConsumptionTime string          `json:"estimated_consumption_time"`
}

// StockListResponse lista paginada de valuaciones.
type StockListResponse struct {
	StockDate string              `json:"stock_date"`
	Items     []StockItemResponse `json:"items"`
	Page      PageResponse        `json:"page"`
}

// ItemCostResponse costo promedio y último costo de entrada de un item.
type ItemCostResponse struct {
	SKU           string          `json:"sku"`
	StockDate     string          `json:"stock_date"`
	AverageCost   decimal.Decimal `json:"average_cost"`
	LastEntryCost decimal.Decimal `json:"last_entry_cost"`
}
