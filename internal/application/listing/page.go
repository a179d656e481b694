package listing

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page página solicitada (1-based).
type Page struct {
	Number int
	Size   int
}

// NewPage normaliza número y tamaño de página.
func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Number: number, Size: size}
}

// Offset desplazamiento de la página.
func (p Page) Offset() int { return (p.Number - 1) * p.Size }

// TotalPages páginas necesarias para total elementos (mínimo 1).
func (p Page) TotalPages(total int) int {
	if total <= 0 || p.Size <= 0 {
		return 1
	}
	return (total + p.Size - 1) / p.Size
}

// Slice recorta una lista en memoria a la página.
func Slice[T any](items []T, p Page) []T {
	start := p.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := min(start+p.Size, len(items))
	return items[start:end]
}
