package ledger

import (
	"time"

	"github.com/guilhermesenci/stock-control/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Valuation métricas de un item a una fecha de corte.
type Valuation struct {
	Quantity      decimal.Decimal
	AverageCost   decimal.Decimal
	LastEntryCost decimal.Decimal
	Consumption   string
}

// totalsAsOf acumula las líneas con fecha ≤ asOf.
func totalsAsOf(lines []Line, asOf time.Time) totals {
	var t totals
	for _, l := range lines {
		if onOrBefore(l.Date, asOf) {
			t.add(l)
		}
	}
	return t
}

// StockQuantity entradas menos salidas con fecha ≤ asOf. Puede ser negativo si los
// datos son inconsistentes; no se recorta.
func StockQuantity(lines []Line, asOf time.Time) decimal.Decimal {
	t := totalsAsOf(lines, asOf)
	return t.stock()
}

// AverageCost (valor entradas − valor salidas) / cantidad, o 0 si la cantidad no es positiva.
func AverageCost(lines []Line, asOf time.Time) decimal.Decimal {
	t := totalsAsOf(lines, asOf)
	return t.average()
}

// LastEntryCost costo unitario de la entrada con mayor ID de transacción con fecha ≤ asOf.
func LastEntryCost(lines []Line, asOf time.Time) decimal.Decimal {
	var (
		found bool
		best  Line
	)
	for _, l := range lines {
		if l.Kind != entity.KindEntry || !onOrBefore(l.Date, asOf) {
			continue
		}
		if !found || l.TransactionID > best.TransactionID {
			best, found = l, true
		}
	}
	if !found {
		return decimal.Zero
	}
	return best.UnitCost
}

// Evaluate calcula todas las métricas del item a la fecha de corte.
func Evaluate(lines []Line, asOf time.Time) Valuation {
	t := totalsAsOf(lines, asOf)
	qty := t.stock()
	return Valuation{
		Quantity:      qty,
		AverageCost:   t.average(),
		LastEntryCost: LastEntryCost(lines, asOf),
		Consumption:   estimate(qty, recentConsumption(lines, asOf)),
	}
}
