package dto

import "github.com/shopspring/decimal"

// CreateTransactionRequest registra una entrada o una salida.
// En salidas el costo unitario se ignora: se calcula con el promedio ponderado vigente.
// Date acepta YYYY-MM-DD o DD/MM/YYYY; Time HH:MM o HH:MM:SS. Vacíos = ahora.
type CreateTransactionRequest struct {
	Kind       string           `json:"kind" validate:"required,oneof=entry exit"`
	SKU        string           `json:"sku" validate:"required,max=50"`
	Quantity   decimal.Decimal  `json:"quantity" validate:"gt=0"`
	UnitCost   *decimal.Decimal `json:"unit_cost" validate:"omitempty,gte=0"`
	InvoiceRef string           `json:"invoice_ref" validate:"max=50"`
	SupplierID *int64           `json:"supplier_id" validate:"omitempty,gt=0"`
	Date       string           `json:"date"`
	Time       string           `json:"time"`
}

// UpdateTransactionRequest campos editables. En salidas solo aplican quantity y unit_cost.
type UpdateTransactionRequest struct {
	Quantity   *decimal.Decimal `json:"quantity" validate:"omitempty,gt=0"`
	UnitCost   *decimal.Decimal `json:"unit_cost" validate:"omitempty,gte=0"`
	InvoiceRef *string          `json:"invoice_ref" validate:"omitempty,max=50"`
	SupplierID *int64           `json:"supplier_id" validate:"omitempty,gt=0"`
}

// TransactionResponse fila del listado unificado de entradas y salidas.
type TransactionResponse struct {
	ID            string          `json:"id"`
	TransactionID int64           `json:"transaction_id"`
	Kind          string          `json:"transaction_type"`
	Date          string          `json:"date"`
	Time          string          `json:"time"`
	SKU           string          `json:"sku"`
	Description   string          `json:"description"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitMeasure   string          `json:"unity_measure"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	TotalCost     decimal.Decimal `json:"total_cost"`
	InvoiceRef    string          `json:"invoice_ref"`
	SupplierID    *int64          `json:"supplier_id"`
	UserID        int64           `json:"user_id"`
	Username      string          `json:"username"`
}

// TransactionListRequest filtros del listado unificado. invoice_ref solo filtra entradas.
type TransactionListRequest struct {
	ListRequest
	Kind        string `query:"kind"`
	SKU         string `query:"sku"`
	Description string `query:"description"`
	InvoiceRef  string `query:"invoice_ref"`
	DateFrom    string `query:"date_from"`
	DateTo      string `query:"date_to"`
}

// TransactionListResponse lista paginada de movimientos.
type TransactionListResponse struct {
	Items []TransactionResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}

// MutationResponse resultado de crear, editar o borrar un movimiento.
type MutationResponse struct {
	Message           string               `json:"message"`
	Transaction       *TransactionResponse `json:"transaction,omitempty"`
	RecalculatedExits int                  `json:"recalculated_exits"`
}

// ValidateOperationRequest simula borrar o editar una transacción.
type ValidateOperationRequest struct {
	SKU           string           `json:"sku" validate:"required"`
	OperationType string           `json:"operation_type" validate:"required,oneof=delete edit"`
	TransactionID int64            `json:"transaction_id" validate:"required,gt=0"`
	NewQuantity   *decimal.Decimal `json:"new_quantity" validate:"omitempty,gt=0"`
}

// ValidationResponse resultado de la validación de consistencia.
type ValidationResponse struct {
	Valid               bool             `json:"valid"`
	Message             string           `json:"message"`
	FailedTransactionID *int64           `json:"failed_transaction_id,omitempty"`
	StockAtFailure      *decimal.Decimal `json:"stock_at_failure,omitempty"`
	FinalStock          *decimal.Decimal `json:"final_stock,omitempty"`
}

// AvailabilityRequest consulta de stock disponible para una salida.
type AvailabilityRequest struct {
	SKU      string          `json:"sku" validate:"required"`
	Quantity decimal.Decimal `json:"quantity" validate:"gt=0"`
}

// AvailabilityResponse resultado de la consulta de disponibilidad.
type AvailabilityResponse struct {
	Valid     bool            `json:"valid"`
	Message   string          `json:"message"`
	Available decimal.Decimal `json:"available"`
	Requested decimal.Decimal `json:"requested"`
}

// RecalculateRequest recálculo manual de salidas posteriores a una transacción.
type RecalculateRequest struct {
	TransactionID int64  `json:"transaction_id" validate:"gte=0"`
	SKU           string `json:"sku" validate:"required"`
}

// RecalculateResponse resultado del recálculo.
type RecalculateResponse struct {
	Message      string `json:"message"`
	UpdatedExits int    `json:"updated_exits"`
}
