package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/guilhermesenci/stock-control/internal/domain/repository"
)

// psql builder con placeholders $n.
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return hasCode(err, "23505")
}

// isForeignKeyViolation verifica si un error es una violación de FK (23503): borrar algo
// referenciado o referenciar algo que no existe.
func isForeignKeyViolation(err error) bool {
	return hasCode(err, "23503")
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == code
	}
	return false
}

// constraintOf nombre del constraint violado, si lo hay.
func constraintOf(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

// orderBy traduce las claves ya validadas a cláusulas ORDER BY y agrega los desempates.
func orderBy(keys []repository.SortKey, tiebreak ...string) []string {
	out := make([]string, 0, len(keys)+len(tiebreak))
	for _, k := range keys {
		dir := "ASC"
		if k.Desc {
			dir = "DESC"
		}
		out = append(out, k.Column+" "+dir)
	}
	return append(out, tiebreak...)
}

// page aplica limit/offset; Limit 0 es sin límite.
func page(q squirrel.SelectBuilder, opts repository.ListOptions) squirrel.SelectBuilder {
	if opts.Limit > 0 {
		q = q.Limit(uint64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Offset(uint64(opts.Offset))
	}
	return q
}

// count total de filas de la consulta filtrada, antes de ordenar y paginar.
func count(ctx context.Context, q Querier, base squirrel.SelectBuilder) (int, error) {
	sql, args, err := psql.Select("COUNT(*)").FromSelect(base, "sub").ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}
	var total int
	if err := q.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return total, nil
}

// contains patrón ILIKE de subcadena con los comodines del usuario escapados.
func contains(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
