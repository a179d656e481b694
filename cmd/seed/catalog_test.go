package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestParseCSV_Windows1252YPuntoYComa(t *testing.T) {
	src := "sku;descripción;unidad;activo\nA-1;Tornillo cabeza plana;un;s\nB-2;Arandela 1/2\";cx;n\n"
	encoded, err := charmap.Windows1252.NewEncoder().String(src)
	require.NoError(t, err)

	rows, err := parseCSV(strings.NewReader(encoded), "windows-1252")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "descripción", rows[0][1])
	assert.Equal(t, "Arandela 1/2\"", rows[2][1])
}

func TestParseItems(t *testing.T) {
	items, skipped, err := parseItems([][]string{
		{"sku", "description", "unit", "active"},
		{" B ", "Arandela", "", "0"},
		{"A", "Tornillo", "un"},
		{"", "sin sku", "un"},
		{"A", "Tornillo 2", "cx", "sí"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, []seedItem{
		{SKU: "A", Description: "Tornillo 2", UnitMeasure: "cx", Active: true},
		{SKU: "B", Description: "Arandela", UnitMeasure: "un", Active: false},
	}, items)

	_, _, err = parseItems(nil)
	assert.Error(t, err)
}

func TestWriteSQL_EscapaComillas(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeSQL(&buf, "catalogo.csv", []seedItem{
		{SKU: "A", Description: "Llave d'agua", UnitMeasure: "un", Active: true},
	}))
	out := buf.String()
	assert.Contains(t, out, "('A', 'Llave d''agua', 'un', true)\n")
	assert.Contains(t, out, "ON CONFLICT (sku) DO UPDATE SET")
}
