// Package pdf genera el reporte de costos de stock en PDF con Maroto v2.
//
// Layout de la página A4 apaisada:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título                │  Fecha de corte + emisión  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: SKU | Descripción | Un. | Cant. | Costo | Total ... │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: cantidad de items / valor total del stock         │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/guilhermesenci/stock-control/internal/application/dto"
	"github.com/guilhermesenci/stock-control/internal/application/inventory"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var _ inventory.StockReportWriter = (*StockReportWriter)(nil)

// StockReportWriter implementa inventory.StockReportWriter usando Maroto v2.
type StockReportWriter struct{}

// NewStockReportWriter construye el generador.
func NewStockReportWriter() *StockReportWriter { return &StockReportWriter{} }

func (w *StockReportWriter) Format() string      { return "pdf" }
func (w *StockReportWriter) ContentType() string { return "application/pdf" }

// Write genera el PDF y devuelve sus bytes.
func (w *StockReportWriter) Write(_ context.Context, report inventory.StockReport) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithOrientation(orientation.Horizontal).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(report.Title, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(tableHeaderRow())
	m.AddRows(tableRows(report.Items)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(report.Items))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(r inventory.StockReport) core.Row {
	return row.New(16).Add(
		col.New(7).Add(
			text.New(r.Title, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
		),
		col.New(5).Add(
			text.New("Fecha de corte: "+r.StockDate.Format("02/01/2006"), props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 1,
			}),
			text.New("Emitido: "+r.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("SKU", 1, align.Left),
		h("Descripción", 3, align.Left),
		h("Un.", 1, align.Center),
		h("Cantidad", 1, align.Right),
		h("Costo unit.", 1, align.Right),
		h("Total", 1, align.Right),
		h("Última entrada", 1, align.Right),
		h("Consumo estimado", 3, align.Left),
	)
}

func tableRows(items []dto.StockItemResponse) []core.Row {
	cell := func(s string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}))
	}
	out := make([]core.Row, 0, len(items))
	for _, it := range items {
		out = append(out, row.New(6).Add(
			cell(it.SKU, 1, align.Left),
			cell(it.Description, 3, align.Left),
			cell(it.UnitMeasure, 1, align.Center),
			cell(formatNumber(it.Quantity), 1, align.Right),
			cell(formatNumber(it.UnitCost), 1, align.Right),
			cell(formatNumber(it.TotalCost), 1, align.Right),
			cell(formatNumber(it.LastEntryCost), 1, align.Right),
			cell(it.EstimatedConsumptionTime, 3, align.Left),
		))
	}
	return out
}

func totalsRow(items []dto.StockItemResponse) core.Row {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.TotalCost)
	}
	return row.New(10).Add(
		col.New(6).Add(text.New(fmt.Sprintf("Items: %d", len(items)), props.Text{
			Size: 9, Top: 2, Color: colorGray,
		})),
		col.New(6).Add(text.New("Valor total del stock: "+formatNumber(total), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 2,
		})),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// formatNumber dos decimales con puntos de miles y coma decimal.
// Ej: 1234567.5 → "1.234.567,50"
func formatNumber(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	return sign + groupThousands(intPart) + "," + frac
}

// groupThousands inserta puntos de miles en un string numérico sin decimales.
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
