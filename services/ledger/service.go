package ledger

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"royalgate-platform/pkg/db/option"
	"royalgate-platform/pkg/errutil"
	"royalgate-platform/pkg/repository"
)

// Service is the arithmetic core: it applies credits and debits to a
// member's balance and appends the immutable transaction log.
type Service struct {
	db   *gorm.DB
	node *snowflake.Node

	transactions repository.Repository[Transaction]
	balances     repository.Repository[Balance]
}

type ServiceParams struct {
	fx.In
	DB   *gorm.DB
	Node *snowflake.Node
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:   p.DB,
		node: p.Node,

		transactions: repository.ProvideStore[Transaction](p.DB),
		balances:     repository.ProvideStore[Balance](p.DB),
	}
}

// WithTrx returns a copy of the service bound to an open transaction so
// callers can compose ledger writes with their own.
func (s *Service) WithTrx(tx *gorm.DB) *Service {
	return &Service{
		db:           tx,
		node:         s.node,
		transactions: s.transactions.WithTrx(tx),
		balances:     s.balances.WithTrx(tx),
	}
}

// Credit adds amount to the member's balance and appends a SUCCESS CREDIT
// record. A non-positive amount is a caller bug and is rejected.
func (s *Service) Credit(ctx context.Context, memberID string, amount int64, description string) (*Transaction, error) {
	if amount <= 0 {
		return nil, errutil.BadRequest("amount must be > 0 for CREDIT")
	}

	var entry *Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		entry, err = s.apply(ctx, tx, memberID, amount, TypeCredit, description, StatusSuccess)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Debit subtracts amount from the member's balance, clamping at zero, and
// appends a DEBIT record with the given status (SUCCESS for penalties,
// PENDING for withdrawal holds).
func (s *Service) Debit(ctx context.Context, memberID string, amount int64, description, status string) (*Transaction, error) {
	if amount <= 0 {
		return nil, errutil.BadRequest("amount must be > 0 for DEBIT")
	}

	var entry *Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		entry, err = s.apply(ctx, tx, memberID, amount, TypeDebit, description, status)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Record appends a transaction without moving the balance. Used for
// externally settled amounts, such as the activation price paid out of band.
func (s *Service) Record(ctx context.Context, memberID string, amount int64, typ, description, status string) (*Transaction, error) {
	if amount <= 0 {
		return nil, errutil.BadRequest("amount must be > 0")
	}

	entry := &Transaction{
		ID:          s.node.Generate().String(),
		MemberID:    memberID,
		Amount:      amount,
		Type:        typ,
		Description: description,
		Status:      status,
	}
	if err := s.transactions.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *Service) apply(ctx context.Context, tx *gorm.DB, memberID string, amount int64, typ, description, status string) (*Transaction, error) {
	balances := s.balances.WithTrx(tx)
	transactions := s.transactions.WithTrx(tx)

	bal, err := balances.FindOne(ctx, &Balance{MemberID: memberID})
	if err != nil {
		return nil, err
	}

	var previous int64
	if bal != nil {
		previous = bal.Balance
	}

	next := previous
	switch typ {
	case TypeCredit:
		next = previous + amount
	case TypeDebit:
		next = previous - amount
		if next < 0 {
			// Penalties may exceed the balance; the floor is zero.
			next = 0
		}
	}

	entry := &Transaction{
		ID:          s.node.Generate().String(),
		MemberID:    memberID,
		Amount:      amount,
		Type:        typ,
		Description: description,
		Status:      status,
	}
	if err := transactions.Create(ctx, entry); err != nil {
		return nil, err
	}

	if bal == nil {
		if err := balances.Create(ctx, &Balance{
			ID:       s.node.Generate().String(),
			MemberID: memberID,
			Balance:  next,
		}); err != nil {
			return nil, err
		}
	} else if err := balances.Update(ctx, bal.ID, map[string]any{"balance": next}); err != nil {
		return nil, err
	}

	zap.L().Debug("ledger entry applied",
		zap.String("member_id", memberID),
		zap.String("type", typ),
		zap.Int64("amount", amount),
		zap.Int64("balance", next),
	)

	return entry, nil
}

// Balance returns the member's current balance; members with no ledger
// activity have a zero balance.
func (s *Service) Balance(ctx context.Context, memberID string) (int64, error) {
	bal, err := s.balances.FindOne(ctx, &Balance{MemberID: memberID})
	if err != nil {
		return 0, err
	}
	if bal == nil {
		return 0, nil
	}
	return bal.Balance, nil
}

// History returns the member's transactions newest-first, capped at limit
// when limit is positive.
func (s *Service) History(ctx context.Context, memberID string, limit int) ([]*Transaction, error) {
	return s.transactions.Find(ctx, &Transaction{MemberID: memberID},
		option.WithSortBy(option.QuerySortBy{SortBy: "id", OrderBy: "desc"}),
		option.WithLimit(limit),
	)
}

// CreditsSince sums successful credits recorded at or after the given time.
// Used for the daily earnings figure on the dashboard.
func (s *Service) CreditsSince(ctx context.Context, memberID string, since time.Time) (int64, error) {
	entries, err := s.transactions.Find(ctx,
		&Transaction{MemberID: memberID, Type: TypeCredit, Status: StatusSuccess},
		option.ApplyOperator(option.Condition{Field: "created_at", Operator: option.GTE, Value: since}),
	)
	if err != nil {
		return 0, err
	}

	var total int64
	for _, entry := range entries {
		total += entry.Amount
	}
	return total, nil
}
