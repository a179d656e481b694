package ledger

import (
	"fmt"
	"time"

	"github.com/guilhermesenci/stock-control/internal/domain/entity"
	"github.com/shopspring/decimal"
)

const (
	// ConsumptionWindowMonths meses calendario hacia atrás desde la fecha de corte.
	ConsumptionWindowMonths = 3
	// ConsumptionWindowDays divisor para la tasa diaria.
	ConsumptionWindowDays = 90
)

// Textos de la estimación de consumo.
const (
	EstimateNoStock     = "no stock"
	EstimateNoRecent    = "no recent consumption"
	EstimateUnderOneDay = "less than 1 day"
)

var (
	windowDays = decimal.NewFromInt(ConsumptionWindowDays)
	sevenDays  = decimal.NewFromInt(7)
	monthDays  = decimal.NewFromInt(30)
	yearDays   = decimal.NewFromInt(365)
)

// ConsumptionEstimate tiempo estimado hasta agotar el stock según las salidas de los
// últimos 3 meses calendario (tasa diaria = salidas / 90).
func ConsumptionEstimate(lines []Line, asOf time.Time) string {
	return estimate(StockQuantity(lines, asOf), recentConsumption(lines, asOf))
}

// WindowStart inicio de la ventana de consumo: asOf menos 3 meses calendario. Si el día
// no existe en el mes destino se usa el último día de ese mes (31/05 → 28/02 o 29/02).
func WindowStart(asOf time.Time) time.Time {
	return subMonths(day(asOf), ConsumptionWindowMonths)
}

func subMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m-time.Month(months), 1, 0, 0, 0, 0, t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, t.Location())
}

// recentConsumption suma de cantidades de salidas con fecha en [WindowStart(asOf), asOf].
func recentConsumption(lines []Line, asOf time.Time) decimal.Decimal {
	start := WindowStart(asOf)
	sum := decimal.Zero
	for _, l := range lines {
		if l.Kind != entity.KindExit {
			continue
		}
		d := day(l.Date)
		if d.Before(start) || d.After(day(asOf)) {
			continue
		}
		sum = sum.Add(l.Quantity)
	}
	return sum
}

// estimate formatea qty / (consumed/90) en días, semanas, meses o años (truncado).
func estimate(qty, consumed decimal.Decimal) string {
	if !qty.IsPositive() {
		return EstimateNoStock
	}
	if !consumed.IsPositive() {
		return EstimateNoRecent
	}
	// qty / (consumed/90) == qty*90 / consumed; se divide una sola vez por unidad.
	scaled := qty.Mul(windowDays)
	days := scaled.Div(consumed)
	switch {
	case days.LessThan(decimal.NewFromInt(1)):
		return EstimateUnderOneDay
	case days.LessThan(sevenDays):
		return plural(days.IntPart(), "day")
	case days.LessThan(monthDays):
		return plural(scaled.Div(consumed.Mul(sevenDays)).IntPart(), "week")
	case days.LessThan(yearDays):
		return plural(scaled.Div(consumed.Mul(monthDays)).IntPart(), "month")
	default:
		return plural(scaled.Div(consumed.Mul(yearDays)).IntPart(), "year")
	}
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
