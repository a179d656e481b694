package ledger

import (
	"github.com/guilhermesenci/stock-control/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// CostPlaces decimales del costo unitario recalculado de una salida.
const CostPlaces = 2

// Repricing nuevo costo unitario de una salida.
type Repricing struct {
	TransactionID int64
	UnitCost      decimal.Decimal
}

// Recalculate recalcula el costo de todas las salidas con ID > pivot.
//
// El prefijo con ID ≤ pivot queda congelado con sus costos registrados. En el sufijo las
// entradas suman con su propio costo y cada salida toma el promedio ponderado del stock
// acumulado antes de ella (0 si no hay stock), redondeado a 2 decimales. El costo
// redondeado es el que se acumula, así que recalcular desde cualquier pivot anterior
// reproduce los mismos valores. A diferencia del pliegue que acumula el promedio sin
// redondear, aquí se acumula el costo persistido; sin eso no habría punto fijo.
func Recalculate(lines []Line, pivot int64) []Repricing {
	var (
		t   totals
		out []Repricing
	)
	for _, l := range sortedByID(lines) {
		if l.TransactionID <= pivot || l.Kind == entity.KindEntry {
			t.add(l)
			continue
		}
		cost := t.average().RoundBank(CostPlaces)
		out = append(out, Repricing{TransactionID: l.TransactionID, UnitCost: cost})
		l.UnitCost = cost
		t.add(l)
	}
	return out
}

// Apply devuelve una copia de lines con los costos recalculados aplicados.
func Apply(lines []Line, repricings []Repricing) []Line {
	costs := make(map[int64]decimal.Decimal, len(repricings))
	for _, r := range repricings {
		costs[r.TransactionID] = r.UnitCost
	}
	out := make([]Line, len(lines))
	for i, l := range lines {
		if c, ok := costs[l.TransactionID]; ok {
			l.UnitCost = c
		}
		out[i] = l
	}
	return out
}
