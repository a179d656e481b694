package repository

// SortKey criterio de orden ya validado. Column es la expresión SQL de la columna y
// nunca proviene directamente del cliente.
type SortKey struct {
	Field  string
	Column string
	Desc   bool
}

// ListOptions orden y paginación por offset. Limit 0 significa sin límite.
type ListOptions struct {
	Sort   []SortKey
	Limit  int
	Offset int
}
