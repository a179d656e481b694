package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConsumptionEstimate_DiezMeses(t *testing.T) {
	asOf := date(2024, time.June, 30)
	lines := []Line{
		entry(1, "39", "2.00", date(2024, time.January, 2)),
		exit(2, "4", "2.00", date(2024, time.April, 15)),
		exit(3, "5", "2.00", date(2024, time.June, 1)),
	}

	assertDecimal(t, "30", StockQuantity(lines, asOf))
	assert.Equal(t, "10 months", ConsumptionEstimate(lines, asOf))
}

func TestEstimate_Formatos(t *testing.T) {
	cases := []struct {
		qty, consumed string
		want          string
	}{
		{"0", "90", "no stock"},
		{"-2", "90", "no stock"},
		{"5", "0", "no recent consumption"},
		{"1", "180", "less than 1 day"},
		{"1", "90", "1 day"},
		{"6", "90", "6 days"},
		{"6.99", "90", "6 days"},
		{"7", "90", "1 week"},
		{"14", "90", "2 weeks"},
		{"29", "90", "4 weeks"},
		{"30", "90", "1 month"},
		{"59", "90", "1 month"},
		{"364", "90", "12 months"},
		{"365", "90", "1 year"},
		{"800", "90", "2 years"},
	}
	for _, tc := range cases {
		t.Run(tc.qty+"/"+tc.consumed, func(t *testing.T) {
			assert.Equal(t, tc.want, estimate(dec(tc.qty), dec(tc.consumed)))
		})
	}
}

func TestWindowStart_MesesCalendario(t *testing.T) {
	assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), WindowStart(date(2024, time.May, 31)))
	assert.Equal(t, time.Date(2023, time.February, 28, 0, 0, 0, 0, time.UTC), WindowStart(date(2023, time.May, 31)))
	assert.Equal(t, time.Date(2023, time.December, 15, 0, 0, 0, 0, time.UTC), WindowStart(date(2024, time.March, 15)))
}

func TestConsumptionEstimate_IgnoraSalidasFueraDeVentana(t *testing.T) {
	asOf := date(2024, time.June, 30)
	lines := []Line{
		entry(1, "100", "1.00", date(2024, time.January, 2)),
		// Antes del inicio de la ventana (30/03).
		exit(2, "50", "1.00", date(2024, time.March, 29)),
		// Después de la fecha de corte: no cuenta ni en stock ni en consumo.
		exit(3, "10", "1.00", date(2024, time.July, 2)),
	}

	assertDecimal(t, "50", StockQuantity(lines, asOf))
	assert.Equal(t, EstimateNoRecent, ConsumptionEstimate(lines, asOf))

	lines = append(lines, exit(4, "5", "1.00", date(2024, time.March, 30)))
	// 45 / (5/90) = 810 días → 2 años.
	assert.Equal(t, "2 years", ConsumptionEstimate(lines, asOf))
}
