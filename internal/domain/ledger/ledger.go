// Package ledger contiene el motor del libro de stock: valuación (cantidad, costo
// promedio ponderado, último costo de entrada, estimación de consumo), validación de
// consistencia y recálculo de costos de salidas posteriores.
//
// Todas las funciones son puras: reciben las líneas del libro de un item y no tocan
// el almacenamiento. El orden cronológico canónico es el ID de transacción.
package ledger

import (
	"slices"
	"time"

	"github.com/guilhermesenci/stock-control/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Line movimiento de un item visto por el motor.
type Line struct {
	TransactionID int64
	Kind          entity.Kind
	Quantity      decimal.Decimal
	UnitCost      decimal.Decimal
	Date          time.Time
}

// LineFromMovement adapta un movimiento persistido a línea del libro.
func LineFromMovement(m *entity.Movement) Line {
	return Line{
		TransactionID: m.Transaction.ID,
		Kind:          m.Kind,
		Quantity:      m.Transaction.Quantity,
		UnitCost:      m.Transaction.UnitCost,
		Date:          m.OccurredAt,
	}
}

// value cantidad × costo unitario.
func (l Line) value() decimal.Decimal {
	return l.Quantity.Mul(l.UnitCost)
}

// sortedByID devuelve una copia ordenada por ID de transacción ascendente.
func sortedByID(lines []Line) []Line {
	out := slices.Clone(lines)
	slices.SortStableFunc(out, func(a, b Line) int {
		switch {
		case a.TransactionID < b.TransactionID:
			return -1
		case a.TransactionID > b.TransactionID:
			return 1
		}
		return 0
	})
	return out
}

// day normaliza a fecha calendario (sin hora) en la zona del propio valor.
func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// onOrBefore compara por día calendario: t ≤ limit.
func onOrBefore(t, limit time.Time) bool {
	return !day(t).After(day(limit))
}

// totals acumulados de entradas y salidas.
type totals struct {
	entryQty, entryValue decimal.Decimal
	exitQty, exitValue   decimal.Decimal
}

func (t *totals) add(l Line) {
	switch l.Kind {
	case entity.KindEntry:
		t.entryQty = t.entryQty.Add(l.Quantity)
		t.entryValue = t.entryValue.Add(l.value())
	case entity.KindExit:
		t.exitQty = t.exitQty.Add(l.Quantity)
		t.exitValue = t.exitValue.Add(l.value())
	}
}

func (t *totals) stock() decimal.Decimal { return t.entryQty.Sub(t.exitQty) }

func (t *totals) stockValue() decimal.Decimal { return t.entryValue.Sub(t.exitValue) }

// average costo promedio ponderado actual; 0 si no hay stock positivo.
func (t *totals) average() decimal.Decimal {
	qty := t.stock()
	if !qty.IsPositive() {
		return decimal.Zero
	}
	return t.stockValue().Div(qty)
}
