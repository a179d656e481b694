package entity

// Item artículo del catálogo identificado por su SKU.
// Nunca se borra mientras tenga transacciones; Active=false es el borrado lógico.
type Item struct {
	SKU         string `db:"sku"`
	Description string `db:"description"`
	UnitMeasure string `db:"unit_measure"`
	Active      bool   `db:"active"`
}
