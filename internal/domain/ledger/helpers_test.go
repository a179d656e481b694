package ledger

import (
	"fmt"
	"testing"
	"time"

	"github.com/guilhermesenci/stock-control/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 30, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func entry(id int64, qty, cost string, at time.Time) Line {
	return Line{TransactionID: id, Kind: entity.KindEntry, Quantity: dec(qty), UnitCost: dec(cost), Date: at}
}

func exit(id int64, qty, cost string, at time.Time) Line {
	return Line{TransactionID: id, Kind: entity.KindExit, Quantity: dec(qty), UnitCost: dec(cost), Date: at}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	if !dec(want).Equal(got) {
		assert.Fail(t, fmt.Sprintf("esperado %s, obtenido %s", want, got.String()), msgAndArgs...)
	}
}
