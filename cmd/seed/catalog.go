package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// seedItem fila del catálogo ya normalizada.
type seedItem struct {
	SKU         string
	Description string
	UnitMeasure string
	Active      bool
}

func decoderFor(charset string) (*encoding.Decoder, error) {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "iso-8859-1", "iso8859-1", "latin1":
		return charmap.ISO8859_1.NewDecoder(), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder(), nil
	}
	return nil, fmt.Errorf("charset no soportado: %s", charset)
}

func readCSV(path, charset string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseCSV(f, charset)
}

// parseCSV acepta ',' o ';' como separador, según la cabecera.
func parseCSV(r io.Reader, charset string) ([][]string, error) {
	dec, err := decoderFor(charset)
	if err != nil {
		return nil, err
	}
	if dec != nil {
		r = transform.NewReader(r, dec)
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text := strings.TrimPrefix(string(raw), "\ufeff")
	header, _, _ := strings.Cut(text, "\n")

	cr := csv.NewReader(strings.NewReader(text))
	if strings.Count(header, ";") > strings.Count(header, ",") {
		cr.Comma = ';'
	}
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true
	return cr.ReadAll()
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s: sin hojas", path)
	}
	return f.GetRows(sheets[0])
}

// parseItems descarta la cabecera y las filas sin SKU. Un SKU repetido conserva la última fila.
func parseItems(rows [][]string) ([]seedItem, int, error) {
	if len(rows) == 0 {
		return nil, 0, fmt.Errorf("planilla vacía")
	}
	bySKU := make(map[string]seedItem)
	skipped := 0
	for i, row := range rows[1:] {
		cell := func(n int) string {
			if n < len(row) {
				return strings.TrimSpace(row[n])
			}
			return ""
		}
		it := seedItem{
			SKU:         cell(0),
			Description: cell(1),
			UnitMeasure: cell(2),
			Active:      true,
		}
		if it.SKU == "" || it.Description == "" {
			skipped++
			continue
		}
		if len(it.SKU) > 50 {
			return nil, 0, fmt.Errorf("fila %d: sku de más de 50 caracteres", i+2)
		}
		if it.UnitMeasure == "" {
			it.UnitMeasure = "un"
		}
		if v := strings.ToLower(cell(3)); v != "" {
			it.Active = v == "s" || v == "si" || v == "sí" || v == "y" || v == "1" || v == "true"
		}
		bySKU[it.SKU] = it
	}

	items := make([]seedItem, 0, len(bySKU))
	for _, it := range bySKU {
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].SKU < items[j].SKU })
	return items, skipped, nil
}

func writeSQL(w io.Writer, source string, items []seedItem) error {
	var b strings.Builder
	b.WriteString("-- Catálogo de items\n")
	fmt.Fprintf(&b, "-- Generado desde %s\n\n", source)
	if len(items) == 0 {
		_, err := io.WriteString(w, b.String())
		return err
	}
	b.WriteString("INSERT INTO items (sku, description, unit_measure, active) VALUES\n")
	for i, it := range items {
		sep := ","
		if i == len(items)-1 {
			sep = ""
		}
		fmt.Fprintf(&b, "  ('%s', '%s', '%s', %t)%s\n",
			escapeSQL(it.SKU), escapeSQL(it.Description), escapeSQL(it.UnitMeasure), it.Active, sep)
	}
	b.WriteString("ON CONFLICT (sku) DO UPDATE SET\n")
	b.WriteString("  description = EXCLUDED.description,\n")
	b.WriteString("  unit_measure = EXCLUDED.unit_measure,\n")
	b.WriteString("  active = EXCLUDED.active;\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
