// Package xlsx genera el reporte de costos de stock como planilla Excel con excelize.
package xlsx

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/guilhermesenci/stock-control/internal/application/inventory"
)

const sheet = "Stock"

var headings = []string{
	"SKU", "Description", "Unit", "Active", "Quantity",
	"Unit cost", "Total cost", "Last entry cost", "Estimated consumption",
}

var _ inventory.StockReportWriter = (*StockReportWriter)(nil)

// StockReportWriter implementa inventory.StockReportWriter.
type StockReportWriter struct{}

func NewStockReportWriter() *StockReportWriter { return &StockReportWriter{} }

func (w *StockReportWriter) Format() string { return "xlsx" }

func (w *StockReportWriter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Write arma una hoja con título, fecha de corte, encabezados y una fila por item.
// Los montos se escriben como números para que la planilla pueda sumarlos.
func (w *StockReportWriter) Write(_ context.Context, report inventory.StockReport) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("xlsx: renombrar hoja: %w", err)
	}

	set := func(cell string, v any) error {
		return f.SetCellValue(sheet, cell, v)
	}
	if err := set("A1", report.Title); err != nil {
		return nil, err
	}
	if err := set("A2", "Stock date: "+report.StockDate.Format("2006-01-02")); err != nil {
		return nil, err
	}

	const headerRow = 4
	for i, h := range headings {
		cell, err := excelize.CoordinatesToCellName(i+1, headerRow)
		if err != nil {
			return nil, err
		}
		if err := set(cell, h); err != nil {
			return nil, err
		}
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("xlsx: estilo: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(headings), headerRow)
	if err := f.SetCellStyle(sheet, "A1", "A1", bold); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A4", last, bold); err != nil {
		return nil, err
	}

	for i, it := range report.Items {
		values := []any{
			it.SKU,
			it.Description,
			it.UnitMeasure,
			it.Active,
			it.Quantity.InexactFloat64(),
			it.UnitCost.InexactFloat64(),
			it.TotalCost.InexactFloat64(),
			it.LastEntryCost.InexactFloat64(),
			it.EstimatedConsumptionTime,
		}
		start, err := excelize.CoordinatesToCellName(1, headerRow+1+i)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, start, &values); err != nil {
			return nil, fmt.Errorf("xlsx: fila %s: %w", it.SKU, err)
		}
	}
	if err := f.SetColWidth(sheet, "B", "B", 40); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: escribir: %w", err)
	}
	return buf.Bytes(), nil
}
