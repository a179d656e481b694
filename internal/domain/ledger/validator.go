package ledger

import (
	"fmt"

	"github.com/guilhermesenci/stock-control/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Operation operación a simular sobre el libro.
type Operation string

const (
	OpDelete Operation = "delete"
	OpEdit   Operation = "edit"
)

// Valid indica si la operación es conocida.
func (o Operation) Valid() bool { return o == OpDelete || o == OpEdit }

// Check resultado de ValidateOperation.
// Si Valid es false, FailedTransactionID y StockAtFailure describen el primer saldo negativo.
type Check struct {
	Valid               bool
	Message             string
	FailedTransactionID int64
	StockAtFailure      decimal.Decimal
	FinalStock          decimal.Decimal
}

// ValidateOperation reproduce el saldo del item en orden de ID aplicando la operación
// propuesta y falla en el primer saldo negativo. No muta nada.
//
// delete omite la transacción; edit sustituye su cantidad por newQuantity (nil mantiene la actual).
func ValidateOperation(lines []Line, op Operation, transactionID int64, newQuantity *decimal.Decimal) Check {
	balance := decimal.Zero
	for _, l := range sortedByID(lines) {
		qty := l.Quantity
		if l.TransactionID == transactionID {
			if op == OpDelete {
				continue
			}
			if newQuantity != nil {
				qty = *newQuantity
			}
		}
		switch l.Kind {
		case entity.KindEntry:
			balance = balance.Add(qty)
		case entity.KindExit:
			balance = balance.Sub(qty)
		}
		if balance.IsNegative() {
			return Check{
				Valid:               false,
				Message:             fmt.Sprintf("operation would result in negative stock (%s) after transaction %d", balance.String(), l.TransactionID),
				FailedTransactionID: l.TransactionID,
				StockAtFailure:      balance,
			}
		}
	}
	return Check{
		Valid:      true,
		Message:    fmt.Sprintf("operation is valid, final stock %s", balance.String()),
		FinalStock: balance,
	}
}

// Availability resultado de ValidateStockAvailability.
type Availability struct {
	Valid     bool
	Message   string
	Available decimal.Decimal
	Requested decimal.Decimal
}

// ValidateStockAvailability comprueba que haya stock total (sin corte de fecha) para una salida.
func ValidateStockAvailability(lines []Line, requested decimal.Decimal) Availability {
	var t totals
	for _, l := range lines {
		t.add(l)
	}
	available := t.stock()
	if requested.GreaterThan(available) {
		return Availability{
			Valid:     false,
			Message:   fmt.Sprintf("insufficient stock: available %s, requested %s", available.String(), requested.String()),
			Available: available,
			Requested: requested,
		}
	}
	return Availability{
		Valid:     true,
		Message:   fmt.Sprintf("stock available: %s", available.String()),
		Available: available,
		Requested: requested,
	}
}
