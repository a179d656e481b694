package dto

import "github.com/guilhermesenci/stock-control/internal/application/listing"

// ListRequest orden y paginación comunes a los listados.
type ListRequest struct {
	Ordering string `query:"ordering"`
	Page     int    `query:"page"`
	PageSize int    `query:"page_size"`
}

// PageOf normaliza la página solicitada.
func (r ListRequest) PageOf() listing.Page {
	return listing.NewPage(r.Page, r.PageSize)
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	Next       *int `json:"next"`
	Previous   *int `json:"previous"`
}

// NewPageResponse construye los metadatos a partir de la página y el total.
func NewPageResponse(p listing.Page, total int) PageResponse {
	out := PageResponse{
		Page:       p.Number,
		PageSize:   p.Size,
		Total:      total,
		TotalPages: p.TotalPages(total),
	}
	if p.Number < out.TotalPages {
		n := p.Number + 1
		out.Next = &n
	}
	if p.Number > 1 {
		prev := min(p.Number-1, out.TotalPages)
		out.Previous = &prev
	}
	return out
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// MessageResponse respuesta simple con mensaje.
type MessageResponse struct {
	Message string `json:"message"`
}
