package dto

// CreateSupplierRequest entrada para crear un proveedor.
type CreateSupplierRequest struct {
	Name   string `json:"name" validate:"required,min=1,max=255"`
	Active *bool  `json:"active"`
}

// UpdateSupplierRequest entrada para actualizar un proveedor.
type UpdateSupplierRequest struct {
	Name   *string `json:"name" validate:"omitempty,min=1,max=255"`
	Active *bool   `json:"active"`
}

// SupplierResponse salida de un proveedor.
type SupplierResponse struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// SupplierListRequest filtros del listado de proveedores.
type SupplierListRequest struct {
	ListRequest
	Name   string `query:"name"`
	Active *bool  `query:"active"`
}

// SupplierListResponse lista paginada de proveedores.
type SupplierListResponse struct {
	Items []SupplierResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
