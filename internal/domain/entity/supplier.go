package entity

// Supplier proveedor referenciado opcionalmente por una transacción.
type Supplier struct {
	ID     int64  `db:"id"`
	Name   string `db:"name"`
	Active bool   `db:"active"`
}
