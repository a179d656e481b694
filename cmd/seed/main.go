// seed genera un script SQL para poblar el catálogo de items a partir de una planilla
// (CSV o XLSX) exportada de un sistema anterior.
//
// Uso: go run ./cmd/seed [-charset windows-1252] [-out archivo.sql] catalogo.csv|catalogo.xlsx
// Columnas esperadas: sku, descripción, unidad de medida y, opcionalmente, activo (s/n, 1/0, true/false).
// La primera fila es la cabecera. Sin -out escribe en la salida estándar.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func main() {
	charset := flag.String("charset", "utf-8", "codificación del CSV: utf-8, iso-8859-1 o windows-1252")
	outPath := flag.String("out", "", "archivo SQL de salida (por defecto stdout)")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "uso: seed [-charset windows-1252] [-out archivo.sql] catalogo.csv|catalogo.xlsx")
		os.Exit(2)
	}
	src := flag.Arg(0)

	var (
		rows [][]string
		err  error
	)
	if strings.EqualFold(filepath.Ext(src), ".xlsx") {
		rows, err = readXLSX(src)
	} else {
		rows, err = readCSV(src, *charset)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer planilla: %v\n", err)
		os.Exit(1)
	}

	items, skipped, err := parseItems(rows)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Interpretar filas: %v\n", err)
		os.Exit(1)
	}

	out := os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	if err := writeSQL(out, filepath.Base(src), items); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "%d items, %d filas omitidas\n", len(items), skipped)
}
