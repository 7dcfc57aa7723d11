package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var sgt = time.FixedZone("SGT", 8*60*60)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, sgt)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// sequentialIDs returns an IDFunc yielding prefix-1, prefix-2, ...
func sequentialIDs(prefix string) IDFunc {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}
