package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"

	"royalgate-platform/services/testutil"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	db := testutil.NewTestDB(t, &Transaction{}, &Balance{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return NewService(ServiceParams{DB: db, Node: node})
}

func TestCreditAndBalance(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	entry, err := svc.Credit(ctx, "m-1", 500, "Welcome Bonus")
	require.NoError(t, err)
	require.Equal(t, TypeCredit, entry.Type)
	require.Equal(t, StatusSuccess, entry.Status)

	balance, err := svc.Balance(ctx, "m-1")
	require.NoError(t, err)
	require.Equal(t, int64(500), balance)
}

func TestDebitClampsAtZero(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Credit(ctx, "m-1", 300, "seed")
	require.NoError(t, err)

	_, err = svc.Debit(ctx, "m-1", 450, "Quiz Penalty", StatusSuccess)
	require.NoError(t, err)

	balance, err := svc.Balance(ctx, "m-1")
	require.NoError(t, err)
	require.Equal(t, int64(0), balance)
}

func TestDebitWithNoPriorBalance(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Debit(ctx, "m-1", 100, "Quiz Penalty", StatusSuccess)
	require.NoError(t, err)

	balance, err := svc.Balance(ctx, "m-1")
	require.NoError(t, err)
	require.Equal(t, int64(0), balance)
}

func TestNonPositiveAmountsRejected(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Credit(ctx, "m-1", 0, "nope")
	require.Error(t, err)

	_, err = svc.Debit(ctx, "m-1", -5, "nope", StatusSuccess)
	require.Error(t, err)

	_, err = svc.Record(ctx, "m-1", 0, TypeDebit, "nope", StatusSuccess)
	require.Error(t, err)

	balance, err := svc.Balance(ctx, "m-1")
	require.NoError(t, err)
	require.Equal(t, int64(0), balance)
}

func TestPendingDebitHoldsBalance(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Credit(ctx, "m-1", 5000, "seed")
	require.NoError(t, err)

	entry, err := svc.Debit(ctx, "m-1", 2000, "Withdrawal to Bank (0123456789)", StatusPending)
	require.NoError(t, err)
	require.Equal(t, StatusPending, entry.Status)

	balance, err := svc.Balance(ctx, "m-1")
	require.NoError(t, err)
	require.Equal(t, int64(3000), balance)
}

func TestRecordDoesNotMoveBalance(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Credit(ctx, "m-1", 1000, "seed")
	require.NoError(t, err)

	_, err = svc.Record(ctx, "m-1", 5000, TypeDebit, "Account Activation (Legacy)", StatusSuccess)
	require.NoError(t, err)

	balance, err := svc.Balance(ctx, "m-1")
	require.NoError(t, err)
	require.Equal(t, int64(1000), balance)

	history, err := svc.History(ctx, "m-1", 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
}

func TestHistoryNewestFirst(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Credit(ctx, "m-1", 100, "first")
	require.NoError(t, err)
	_, err = svc.Credit(ctx, "m-1", 200, "second")
	require.NoError(t, err)
	_, err = svc.Credit(ctx, "m-2", 300, "other member")
	require.NoError(t, err)

	history, err := svc.History(ctx, "m-1", 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, "second", history[0].Description)
	require.Equal(t, "first", history[1].Description)

	limited, err := svc.History(ctx, "m-1", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	require.Equal(t, "second", limited[0].Description)
}

func TestCreditsSinceCountsOnlySuccessfulCredits(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	since := time.Now().Add(-time.Minute)

	_, err := svc.Credit(ctx, "m-1", 200, "Daily Node Mining")
	require.NoError(t, err)
	_, err = svc.Credit(ctx, "m-1", 50, "Daily Spin Reward")
	require.NoError(t, err)
	_, err = svc.Debit(ctx, "m-1", 100, "Quiz Penalty", StatusSuccess)
	require.NoError(t, err)
	_, err = svc.Debit(ctx, "m-1", 150, "Withdrawal hold", StatusPending)
	require.NoError(t, err)

	total, err := svc.CreditsSince(ctx, "m-1", since)
	require.NoError(t, err)
	require.Equal(t, int64(250), total)

	total, err = svc.CreditsSince(ctx, "m-1", time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Zero(t, total)
}
