package mining

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"royalgate-platform/pkg/errutil"
	"royalgate-platform/pkg/repository"
	"royalgate-platform/services/catalog"
	"royalgate-platform/services/ledger"
	"royalgate-platform/services/member"
	"royalgate-platform/services/quota"
)

// Duration is how long a mining session runs before the payout unlocks.
const Duration = 24 * time.Hour

const (
	StateIdle      = "IDLE"
	StateRunning   = "RUNNING"
	StateClaimable = "CLAIMABLE"
)

var (
	ErrMiningAlreadyRunning = errutil.New(errutil.StatusConflict, "a mining session is already running")
	ErrMiningNotStarted     = errutil.New(errutil.StatusUnprocessableEntity, "no mining session to claim")
	ErrMiningNotReady       = errutil.New(errutil.StatusUnprocessableEntity, "mining session has not matured yet")
	ErrSpinAlreadyClaimed   = errutil.New(errutil.StatusConflict, "daily spin already claimed")
)

// Service runs the single-slot mining timer and the daily spin. Both are
// lazy: state is a stored timestamp or flag evaluated against the clock on
// each request, nothing runs in the background.
type Service struct {
	db      *gorm.DB
	members repository.Repository[member.Member]
	ledger  *ledger.Service
	quota   *quota.Service

	now func() time.Time
}

type ServiceParams struct {
	fx.In
	DB     *gorm.DB
	Ledger *ledger.Service
	Quota  *quota.Service
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:      p.DB,
		members: repository.ProvideStore[member.Member](p.DB),
		ledger:  p.Ledger,
		quota:   p.Quota,
		now:     time.Now,
	}
}

func (s *Service) activeMember(ctx context.Context, memberID string) (*member.Member, error) {
	m, err := s.members.FindOne(ctx, &member.Member{ID: memberID})
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, member.ErrNotFound
	}
	if !m.Tier.Earning() {
		return nil, quota.ErrActivationRequired
	}
	return m, nil
}

// Start opens a mining session. Only one can run at a time; starting again
// leaves the running session's timestamp untouched.
func (s *Service) Start(ctx context.Context, memberID string) (*Status, error) {
	m, err := s.activeMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if m.MiningStartedAt != nil {
		return nil, ErrMiningAlreadyRunning
	}

	startedAt := s.now()
	if err := s.members.Update(ctx, m.ID, map[string]any{"mining_started_at": startedAt}); err != nil {
		return nil, err
	}
	m.MiningStartedAt = &startedAt

	zap.L().Info("mining started", zap.String("member_id", m.ID))
	return s.status(m), nil
}

// Status is the mining slot as of a given request.
type Status struct {
	State     string     `json:"state"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	Remaining int64      `json:"remaining_seconds"`
	Rate      int64      `json:"rate"`
}

func (s *Service) status(m *member.Member) *Status {
	st := &Status{
		State: StateIdle,
		Rate:  catalog.Get(m.Tier).DailyMiningRate,
	}
	if m.MiningStartedAt == nil {
		return st
	}
	st.StartedAt = m.MiningStartedAt
	elapsed := s.now().Sub(*m.MiningStartedAt)
	if elapsed >= Duration {
		st.State = StateClaimable
		return st
	}
	st.State = StateRunning
	st.Remaining = int64((Duration - elapsed).Seconds())
	return st
}

// Status reports the member's mining slot without changing it.
func (s *Service) Status(ctx context.Context, memberID string) (*Status, error) {
	m, err := s.activeMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	return s.status(m), nil
}

// Claim pays out a matured session at the tier's daily rate and frees the
// slot. Claiming at 23h59m fails; at 24h it succeeds.
func (s *Service) Claim(ctx context.Context, memberID string) (*ledger.Transaction, error) {
	m, err := s.activeMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if m.MiningStartedAt == nil {
		return nil, ErrMiningNotStarted
	}
	if s.now().Sub(*m.MiningStartedAt) < Duration {
		return nil, ErrMiningNotReady
	}

	rate := catalog.Get(m.Tier).DailyMiningRate

	var entry *ledger.Transaction
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.members.WithTrx(tx).Update(ctx, m.ID, map[string]any{"mining_started_at": nil}); err != nil {
			return err
		}
		var err error
		entry, err = s.ledger.WithTrx(tx).Credit(ctx, m.ID, rate, "Daily Node Mining")
		return err
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("mining claimed", zap.String("member_id", m.ID), zap.Int64("amount", rate))
	return entry, nil
}

// Spin pays the flat daily spin reward, once per day epoch.
func (s *Service) Spin(ctx context.Context, memberID string) (*ledger.Transaction, error) {
	m, err := s.activeMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if err := s.quota.SyncEpoch(ctx, m); err != nil {
		return nil, err
	}
	if m.SpinClaimed {
		return nil, ErrSpinAlreadyClaimed
	}

	var entry *ledger.Transaction
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.members.WithTrx(tx).Update(ctx, m.ID, map[string]any{"spin_claimed": true}); err != nil {
			return err
		}
		var err error
		entry, err = s.ledger.WithTrx(tx).Credit(ctx, m.ID, catalog.SpinReward, "Daily Spin Reward")
		return err
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("spin claimed", zap.String("member_id", m.ID))
	return entry, nil
}
