package entity

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind tipo de movimiento del libro: entrada (aumenta stock) o salida (lo reduce).
type Kind string

const (
	KindEntry Kind = "entry"
	KindExit  Kind = "exit"
)

// Valid indica si el tipo es uno de los conocidos.
func (k Kind) Valid() bool {
	return k == KindEntry || k == KindExit
}

// Transaction datos compartidos por entradas y salidas.
// El ID es monótono creciente y define el orden cronológico para costos y validaciones.
type Transaction struct {
	ID         int64           `db:"id"`
	InvoiceRef string          `db:"invoice_ref"`
	SKU        string          `db:"sku"`
	Quantity   decimal.Decimal `db:"quantity"`
	UnitCost   decimal.Decimal `db:"unit_cost"`
	SupplierID *int64          `db:"supplier_id"`
}

// Movement unión etiquetada {Entry, Exit} sobre una Transaction.
// RowID es el identificador de la fila de entrada o salida (no el de la transacción).
type Movement struct {
	Kind        Kind
	RowID       int64
	Transaction Transaction
	UserID      int64
	OccurredAt  time.Time
}

// IsEntry indica si el movimiento es una entrada.
func (m *Movement) IsEntry() bool { return m.Kind == KindEntry }

// CompositeID identificador externo del movimiento.
func (m *Movement) CompositeID() CompositeID {
	return CompositeID{Kind: m.Kind, RowID: m.RowID}
}

// MovementDetail movimiento con los datos de item y usuario para listados.
type MovementDetail struct {
	Movement
	ItemDescription string
	UnitMeasure     string
	UserName        string
}

// CompositeID codifica tipo + id de fila: "entry-12", "exit-7".
type CompositeID struct {
	Kind  Kind
	RowID int64
}

func (c CompositeID) String() string {
	return fmt.Sprintf("%s-%d", c.Kind, c.RowID)
}

// ParseCompositeID interpreta "entry-<id>" o "exit-<id>".
func ParseCompositeID(s string) (CompositeID, error) {
	kind, raw, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return CompositeID{}, fmt.Errorf("composite id %q: formato esperado <tipo>-<id>", s)
	}
	k := Kind(kind)
	if !k.Valid() {
		return CompositeID{}, fmt.Errorf("composite id %q: tipo desconocido %q", s, kind)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return CompositeID{}, fmt.Errorf("composite id %q: id inválido", s)
	}
	return CompositeID{Kind: k, RowID: id}, nil
}
