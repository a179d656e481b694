package inventory

import (
	"fmt"
	"strings"
	"time"

	"github.com/guilhermesenci/stock-control/internal/domain"
)

// Formatos de fecha aceptados en la API.
var dateLayouts = []string{"2006-01-02", "02/01/2006"}

var clockLayouts = []string{"15:04:05", "15:04"}

// ParseDate interpreta YYYY-MM-DD o DD/MM/YYYY. Vacío devuelve fallback.
func ParseDate(s string, fallback time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, fallback.Location()); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: fecha %q (use YYYY-MM-DD o DD/MM/YYYY)", domain.ErrInvalidInput, s)
}

// parseOptionalDate como ParseDate pero devuelve nil si está vacío.
func parseOptionalDate(s string, loc *time.Location) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := ParseDate(s, time.Time{}.In(loc))
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// parseOccurredAt combina fecha y hora del movimiento. Vacíos toman los de now.
func parseOccurredAt(date, clock string, now time.Time) (time.Time, error) {
	d, err := ParseDate(date, now)
	if err != nil {
		return time.Time{}, err
	}
	clock = strings.TrimSpace(clock)
	if clock == "" {
		if strings.TrimSpace(date) == "" {
			return now, nil
		}
		return time.Date(d.Year(), d.Month(), d.Day(), now.Hour(), now.Minute(), now.Second(), 0, now.Location()), nil
	}
	for _, layout := range clockLayouts {
		if c, err := time.Parse(layout, clock); err == nil {
			return time.Date(d.Year(), d.Month(), d.Day(), c.Hour(), c.Minute(), c.Second(), 0, now.Location()), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: hora %q (use HH:MM o HH:MM:SS)", domain.ErrInvalidInput, clock)
}
