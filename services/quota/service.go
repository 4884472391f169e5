package quota

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
)

// Channel is a daily-quota-gated earning category.
type Channel int

const (
	ChannelSongs Channel = iota
	ChannelVideos
	ChannelQuiz
)

func (c Channel) String() string {
	switch c {
	case ChannelSongs:
		return "songs"
	case ChannelVideos:
		return "videos"
	case ChannelQuiz:
		return "quiz"
	default:
		return "unknown"
	}
}

// Epoch is the length of the daily accounting window shared by quotas, the
// spin flag and mining.
const Epoch = 24 * time.Hour

var (
	ErrActivationRequired = errutil.New(errutil.StatusForbidden, "activate a package to start earning")
	ErrSongLimitReached   = errutil.New(errutil.StatusTooManyRequests, "daily song limit reached for your tier")
	ErrVideoLimitReached  = errutil.New(errutil.StatusTooManyRequests, "daily video limit reached for your tier")
	ErrQuizCapReached     = errutil.New(errutil.StatusTooManyRequests, "daily quiz earnings cap reached")
)

// Service enforces per-tier daily limits at the moment of credit, so every
// caller of the earning API is equally bound.
type Service struct {
	db      *gorm.DB
	members repository.Repository[member.Member]
	ledger  *ledger.Service

	now func() time.Time
}

type ServiceParams struct {
	fx.In
	DB     *gorm.DB
	Ledger *ledger.Service
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:      p.DB,
		members: repository.ProvideStore[member.Member](p.DB),
		ledger:  p.Ledger,
		now:     time.Now,
	}
}

// Roll resets the member's daily state in place when the epoch has lapsed.
// A stale multi-day-old epoch resets exactly once. Returns whether a reset
// happened; the caller persists it.
func Roll(m *member.Member, now time.Time) bool {
	if now.Sub(m.DayEpoch) < Epoch {
		return false
	}
	m.DailySongs = 0
	m.DailyVideos = 0
	m.DailyQuiz = 0
	m.SpinClaimed = false
	m.DayEpoch = now
	return true
}

// SyncEpoch rolls the member's daily epoch and persists the reset. Mining
// and spin share this with the quota counters.
func (s *Service) SyncEpoch(ctx context.Context, m *member.Member) error {
	if !Roll(m, s.now()) {
		return nil
	}
	return s.members.Update(ctx, m.ID, epochUpdates(m))
}

func epochUpdates(m *member.Member) map[string]any {
	return map[string]any{
		"day_epoch":    m.DayEpoch,
		"daily_songs":  m.DailySongs,
		"daily_videos": m.DailyVideos,
		"daily_quiz":   m.DailyQuiz,
		"spin_claimed": m.SpinClaimed,
	}
}

// CanEarn reports whether the channel is still open for the member today.
// The epoch must already be rolled.
func CanEarn(m *member.Member, pkg catalog.Package, ch Channel) error {
	switch ch {
	case ChannelSongs:
		if m.DailySongs >= pkg.SongLimit {
			return ErrSongLimitReached
		}
	case ChannelVideos:
		if m.DailyVideos >= pkg.VideoLimit {
			return ErrVideoLimitReached
		}
	case ChannelQuiz:
		if m.DailyQuiz >= catalog.QuizDailyCap {
			return ErrQuizCapReached
		}
	}
	return nil
}

// RecordEarn gates, counts and credits one earning event. A blocked attempt
// records no transaction and increments no counter.
func (s *Service) RecordEarn(ctx context.Context, memberID string, ch Channel, amount int64, description string) (*ledger.Transaction, error) {
	if amount <= 0 {
		return nil, errutil.BadRequest("amount must be > 0")
	}

	m, err := s.members.FindOne(ctx, &member.Member{ID: memberID})
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, member.ErrNotFound
	}
	if !m.Tier.Earning() {
		return nil, ErrActivationRequired
	}

	if err := s.SyncEpoch(ctx, m); err != nil {
		return nil, err
	}

	pkg := catalog.Get(m.Tier)
	if err := CanEarn(m, pkg, ch); err != nil {
		return nil, err
	}

	switch ch {
	case ChannelSongs:
		m.DailySongs++
	case ChannelVideos:
		m.DailyVideos++
	case ChannelQuiz:
		m.DailyQuiz += amount
	}

	var entry *ledger.Transaction
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.members.WithTrx(tx).Update(ctx, m.ID, epochUpdates(m)); err != nil {
			return err
		}
		var err error
		entry, err = s.ledger.WithTrx(tx).Credit(ctx, m.ID, amount, description)
		return err
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("earning recorded",
		zap.String("member_id", m.ID),
		zap.String("channel", ch.String()),
		zap.Int64("amount", amount),
	)
	return entry, nil
}

// Usage is the member's daily limit status after a lazy epoch roll.
type Usage struct {
	Songs       int       `json:"songs"`
	SongLimit   int       `json:"song_limit"`
	Videos      int       `json:"videos"`
	VideoLimit  int       `json:"video_limit"`
	Quiz        int64     `json:"quiz"`
	QuizCap     int64     `json:"quiz_cap"`
	SpinClaimed bool      `json:"spin_claimed"`
	DayEpoch    time.Time `json:"day_epoch"`
	EarnedToday int64     `json:"earned_today"`
}

// Snapshot rolls the epoch if needed and reports current usage vs limits.
func (s *Service) Snapshot(ctx context.Context, memberID string) (*Usage, error) {
	m, err := s.members.FindOne(ctx, &member.Member{ID: memberID})
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, member.ErrNotFound
	}
	if err := s.SyncEpoch(ctx, m); err != nil {
		return nil, err
	}

	earned, err := s.ledger.CreditsSince(ctx, m.ID, m.DayEpoch)
	if err != nil {
		return nil, err
	}

	pkg := catalog.Get(m.Tier)
	return &Usage{
		Songs:       m.DailySongs,
		SongLimit:   pkg.SongLimit,
		Videos:      m.DailyVideos,
		VideoLimit:  pkg.VideoLimit,
		Quiz:        m.DailyQuiz,
		QuizCap:     catalog.QuizDailyCap,
		SpinClaimed: m.SpinClaimed,
		DayEpoch:    m.DayEpoch,
		EarnedToday: earned,
	}, nil
}
