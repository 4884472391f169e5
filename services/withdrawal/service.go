package withdrawal

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"royalgate-platform/pkg/db/option"
	"royalgate-platform/pkg/errutil"
	"royalgate-platform/pkg/repository"
	"royalgate-platform/services/catalog"
	"royalgate-platform/services/ledger"
	"royalgate-platform/services/member"
	"royalgate-platform/services/settings"
)

var (
	ErrBelowMinimum      = errutil.New(errutil.StatusUnprocessableEntity, "amount is below the minimum withdrawal")
	ErrInsufficientFunds = errutil.New(errutil.StatusUnprocessableEntity, "insufficient balance")
	ErrNotPending        = errutil.New(errutil.StatusConflict, "request has already been reviewed")
	ErrRequestNotFound   = errutil.New(errutil.StatusNotFound, "withdrawal request not found")
)

// ErrPortalClosed carries the admin-set closure message when one exists.
func ErrPortalClosed(message string) error {
	if message == "" {
		message = "withdrawals are currently closed"
	}
	return errutil.New(errutil.StatusForbidden, message)
}

// Service runs the withdrawal lifecycle. Submitting debits the balance as a
// pending hold; approval and rejection are one-way status flips and neither
// moves the balance again.
type Service struct {
	db       *gorm.DB
	node     *snowflake.Node
	requests repository.Repository[Request]
	ledger   *ledger.Service
	members  *member.Service
	settings *settings.Service
}

type ServiceParams struct {
	fx.In
	DB       *gorm.DB
	Node     *snowflake.Node
	Ledger   *ledger.Service
	Members  *member.Service
	Settings *settings.Service
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:       p.DB,
		node:     p.Node,
		requests: repository.ProvideStore[Request](p.DB),
		ledger:   p.Ledger,
		members:  p.Members,
		settings: p.Settings,
	}
}

type SubmitParams struct {
	Amount        int64  `json:"amount" binding:"required,gt=0"`
	BankName      string `json:"bank_name" binding:"required"`
	AccountNumber string `json:"account_number" binding:"required"`
	AccountName   string `json:"account_name" binding:"required"`
}

// Submit validates against policy, minimum and balance, then holds the
// amount and files the request.
func (s *Service) Submit(ctx context.Context, memberID string, p SubmitParams) (*Request, error) {
	policy, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !policy.WithdrawalOpen {
		return nil, ErrPortalClosed(policy.WithdrawalMessage)
	}
	if p.Amount < catalog.MinWithdrawal {
		return nil, ErrBelowMinimum
	}

	m, err := s.members.Get(ctx, memberID)
	if err != nil {
		return nil, err
	}

	balance, err := s.ledger.Balance(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if p.Amount > balance {
		return nil, ErrInsufficientFunds
	}

	req := &Request{
		ID:            s.node.Generate().String(),
		MemberID:      memberID,
		Username:      m.Username,
		Amount:        p.Amount,
		BankName:      p.BankName,
		AccountNumber: p.AccountNumber,
		AccountName:   p.AccountName,
		Status:        StatusPending,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.ledger.WithTrx(tx).Debit(ctx, memberID, p.Amount,
			fmt.Sprintf("Withdrawal to %s (%s)", p.BankName, p.AccountNumber), ledger.StatusPending); err != nil {
			return err
		}
		return s.requests.WithTrx(tx).Create(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("withdrawal submitted",
		zap.String("member_id", memberID),
		zap.String("request_id", req.ID),
		zap.Int64("amount", p.Amount),
	)
	return req, nil
}

// Approve marks a pending request paid out. The hold already left the
// balance, so no further ledger movement happens.
func (s *Service) Approve(ctx context.Context, requestID string) (*Request, error) {
	return s.review(ctx, requestID, StatusApproved)
}

// Reject marks a pending request rejected. The held amount is not returned.
func (s *Service) Reject(ctx context.Context, requestID string) (*Request, error) {
	return s.review(ctx, requestID, StatusRejected)
}

func (s *Service) review(ctx context.Context, requestID, status string) (*Request, error) {
	req, err := s.requests.FindOne(ctx, &Request{ID: requestID})
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}
	if req.Status != StatusPending {
		return nil, ErrNotPending
	}

	if err := s.requests.Update(ctx, req.ID, map[string]any{"status": status}); err != nil {
		return nil, err
	}
	req.Status = status

	zap.L().Info("withdrawal reviewed", zap.String("request_id", req.ID), zap.String("status", status))
	return req, nil
}

// Delete removes a request record. Admin housekeeping only; the ledger
// entries stay.
func (s *Service) Delete(ctx context.Context, requestID string) error {
	err := s.requests.Delete(ctx, requestID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrRequestNotFound
	}
	return err
}

// List returns requests, newest first, optionally filtered by status.
func (s *Service) List(ctx context.Context, status string) ([]*Request, error) {
	return s.requests.Find(ctx, &Request{Status: status}, option.WithSortBy(option.QuerySortBy{
		SortBy:  "id",
		OrderBy: "desc",
	}))
}

// ListByMember returns the member's own requests, newest first.
func (s *Service) ListByMember(ctx context.Context, memberID string) ([]*Request, error) {
	return s.requests.Find(ctx, &Request{MemberID: memberID}, option.WithSortBy(option.QuerySortBy{
		SortBy:  "id",
		OrderBy: "desc",
	}))
}
