package xlsx

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/guilhermesenci/stock-control/internal/application/dto"
	"github.com/guilhermesenci/stock-control/internal/application/inventory"
)

func TestWrite_Planilla(t *testing.T) {
	w := NewStockReportWriter()
	data, err := w.Write(context.Background(), inventory.StockReport{
		Title:     "Stock costs",
		StockDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Items: []dto.StockItemResponse{
			{SKU: "A", Description: "Parafuso", UnitMeasure: "un", Active: true,
				Quantity: decimal.NewFromInt(70), UnitCost: decimal.NewFromInt(2),
				TotalCost: decimal.NewFromInt(140), LastEntryCost: decimal.NewFromInt(2),
				EstimatedConsumptionTime: "7 months"},
			{SKU: "B", Description: "Arruela", UnitMeasure: "un",
				EstimatedConsumptionTime: "no stock"},
		},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, "Stock costs", rows[0][0])
	assert.Equal(t, "Stock date: 2024-03-01", rows[1][0])
	assert.Equal(t, headings, rows[3])
	assert.Equal(t, []string{"A", "Parafuso", "un", "TRUE", "70", "2", "140", "2", "7 months"}, rows[4])
	assert.Equal(t, "no stock", rows[5][8])
}
