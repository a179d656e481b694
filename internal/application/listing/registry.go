// Package listing resuelve ordenamiento multi-campo y paginación por página para los
// listados de la API. Cada recurso declara sus campos ordenables una vez, al arrancar.
package listing

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/guilhermesenci/stock-control/internal/domain"
	"github.com/guilhermesenci/stock-control/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// Field campo ordenable. Column se usa en listados SQL; Compare en listados en memoria.
type Field[T any] struct {
	Name    string
	Column  string
	Compare func(a, b T) int
}

// Registry campos ordenables de un recurso.
type Registry[T any] struct {
	fields map[string]Field[T]
	order  []string
}

// NewRegistry construye el registro. Entra en pánico ante definiciones inválidas:
// se construye en variables de paquete y un error aquí es un error de programación.
func NewRegistry[T any](fields ...Field[T]) *Registry[T] {
	r := &Registry[T]{fields: make(map[string]Field[T], len(fields))}
	for _, f := range fields {
		switch {
		case f.Name == "" || strings.HasPrefix(f.Name, "-") || strings.Contains(f.Name, ","):
			panic(fmt.Sprintf("listing: nombre de campo inválido %q", f.Name))
		case f.Column == "" && f.Compare == nil:
			panic(fmt.Sprintf("listing: campo %q sin columna ni comparador", f.Name))
		}
		if _, dup := r.fields[f.Name]; dup {
			panic(fmt.Sprintf("listing: campo duplicado %q", f.Name))
		}
		r.fields[f.Name] = f
		r.order = append(r.order, f.Name)
	}
	return r
}

// Names campos ordenables en el orden declarado.
func (r *Registry[T]) Names() []string {
	return slices.Clone(r.order)
}

// Parse interpreta "campo,-otro": cada campo con su propia dirección (prefijo "-" = descendente).
// Vacío devuelve nil. Campos desconocidos o repetidos son domain.ErrInvalidInput.
func (r *Registry[T]) Parse(raw string) ([]repository.SortKey, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var (
		keys []repository.SortKey
		seen = make(map[string]bool)
	)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		desc := false
		if strings.HasPrefix(part, "-") {
			desc, part = true, part[1:]
		} else if strings.HasPrefix(part, "+") {
			part = part[1:]
		}
		f, ok := r.fields[part]
		if !ok {
			return nil, fmt.Errorf("%w: campo de orden desconocido %q (permitidos: %s)",
				domain.ErrInvalidInput, part, strings.Join(r.order, ", "))
		}
		if seen[part] {
			return nil, fmt.Errorf("%w: campo de orden repetido %q", domain.ErrInvalidInput, part)
		}
		seen[part] = true
		keys = append(keys, repository.SortKey{Field: f.Name, Column: f.Column, Desc: desc})
	}
	return keys, nil
}

// Sort ordena en memoria de forma estable. Los campos sin comparador se ignoran.
func (r *Registry[T]) Sort(items []T, keys []repository.SortKey) {
	if len(keys) == 0 {
		return
	}
	slices.SortStableFunc(items, func(a, b T) int {
		for _, k := range keys {
			f, ok := r.fields[k.Field]
			if !ok || f.Compare == nil {
				continue
			}
			c := f.Compare(a, b)
			if k.Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})
}

// ByString comparador por string.
func ByString[T any](get func(T) string) func(a, b T) int {
	return func(a, b T) int { return strings.Compare(get(a), get(b)) }
}

// ByFold comparador por string sin distinguir mayúsculas.
func ByFold[T any](get func(T) string) func(a, b T) int {
	return func(a, b T) int { return strings.Compare(strings.ToLower(get(a)), strings.ToLower(get(b))) }
}

// ByInt comparador por entero.
func ByInt[T any](get func(T) int64) func(a, b T) int {
	return func(a, b T) int { return cmp.Compare(get(a), get(b)) }
}

// ByDecimal comparador por decimal.
func ByDecimal[T any](get func(T) decimal.Decimal) func(a, b T) int {
	return func(a, b T) int { return get(a).Cmp(get(b)) }
}

// ByBool comparador por bool (false < true).
func ByBool[T any](get func(T) bool) func(a, b T) int {
	return func(a, b T) int {
		x, y := get(a), get(b)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		}
		return 1
	}
}

// ByTime comparador por fecha.
func ByTime[T any](get func(T) time.Time) func(a, b T) int {
	return func(a, b T) int { return get(a).Compare(get(b)) }
}
