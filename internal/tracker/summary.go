package tracker

import (
	"context"
	"fmt"
	"time"

	"gitlab.com/yelinaung/finance-tracker/internal/ledger"
)

// Summary aggregates the user's transactions between from and to, both
// inclusive calendar days.
func (s *Service) Summary(ctx context.Context, userID string, from, to time.Time) (sum ledger.Summary, err error) {
	_, span, began := s.start(ctx, "Summary", userID)
	defer func() { s.finish(span, "summary", userID, began, err) }()

	if ledger.Day(to, s.loc).Before(ledger.Day(from, s.loc)) {
		return ledger.Summary{}, fmt.Errorf("%w: end of range is before start", ErrInvalidInput)
	}
	d := s.store.Snapshot(userID)
	accounts := ledger.ComputeBalances(d.Accounts, d.Transactions)
	return ledger.Summarize(accounts, d.Transactions, from, to, s.Now(), s.loc), nil
}
