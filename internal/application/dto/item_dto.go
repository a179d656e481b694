package dto

// CreateItemRequest entrada para crear un item.
type CreateItemRequest struct {
	SKU         string `json:"sku" validate:"required,min=1,max=50"`
	Description string `json:"description" validate:"required,min=1,max=255"`
	UnitMeasure string `json:"unit_measure" validate:"required,max=20"`
	Active      *bool  `json:"active"`
}

// UpdateItemRequest entrada para actualizar un item (el SKU no cambia).
type UpdateItemRequest struct {
	Description *string `json:"description" validate:"omitempty,min=1,max=255"`
	UnitMeasure *string `json:"unit_measure" validate:"omitempty,min=1,max=20"`
	Active      *bool   `json:"active"`
}

// ItemResponse salida de un item.
type ItemResponse struct {
	SKU         string `json:"sku"`
	Description string `json:"description"`
	UnitMeasure string `json:"unit_measure"`
	Active      bool   `json:"active"`
}

// ItemListRequest filtros del listado de items.
type ItemListRequest struct {
	ListRequest
	SKU         string `query:"sku"`
	Description string `query:"description"`
	ActiveOnly  bool   `query:"show_only_active_items"`
}

// ItemListResponse lista paginada de items.
type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
