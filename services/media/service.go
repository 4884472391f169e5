package media

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
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

var (
	ErrNoSession   = errutil.New(errutil.StatusNotFound, "no playback session")
	ErrInvalidKind = errutil.New(errutil.StatusBadRequest, "kind must be song or video")
)

// Service tracks listen/watch progress server side. Progress is derived
// from wall-clock play time, not client-reported positions, and the reward
// lands exactly once when playback covers the full duration.
type Service struct {
	db       *gorm.DB
	node     *snowflake.Node
	sessions repository.Repository[PlaybackSession]
	members  repository.Repository[member.Member]
	quota    *quota.Service

	now func() time.Time
}

type ServiceParams struct {
	fx.In
	DB    *gorm.DB
	Node  *snowflake.Node
	Quota *quota.Service
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:       p.DB,
		node:     p.Node,
		sessions: repository.ProvideStore[PlaybackSession](p.DB),
		members:  repository.ProvideStore[member.Member](p.DB),
		quota:    p.Quota,
		now:      time.Now,
	}
}

// Select starts playing the given media. Any existing session for the
// member is discarded, progress and all.
func (s *Service) Select(ctx context.Context, memberID, mediaID, kind string, durationSec int64) (*PlaybackSession, error) {
	if kind != KindSong && kind != KindVideo {
		return nil, ErrInvalidKind
	}
	if durationSec <= 0 {
		return nil, errutil.BadRequest("duration_sec must be > 0")
	}

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

	now := s.now()
	session := &PlaybackSession{
		ID:           s.node.Generate().String(),
		MemberID:     memberID,
		MediaID:      mediaID,
		Kind:         kind,
		DurationSec:  durationSec,
		PlayingSince: &now,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		sessionsTx := s.sessions.WithTrx(tx)
		prior, err := sessionsTx.FindOne(ctx, &PlaybackSession{MemberID: memberID})
		if err != nil {
			return err
		}
		if prior != nil {
			if err := sessionsTx.Delete(ctx, prior.ID); err != nil {
				return err
			}
		}
		return sessionsTx.Create(ctx, session)
	})
	if err != nil {
		return nil, err
	}

	zap.L().Debug("playback started",
		zap.String("member_id", memberID),
		zap.String("media_id", mediaID),
		zap.String("kind", kind),
	)
	return session, nil
}

// Pause banks the open play interval.
func (s *Service) Pause(ctx context.Context, memberID string) (*PlaybackSession, error) {
	session, err := s.session(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if session.PlayingSince == nil {
		return session, nil
	}

	session.PlayedSec += int64(s.now().Sub(*session.PlayingSince).Seconds())
	session.PlayingSince = nil
	if err := s.sessions.Update(ctx, session.ID, map[string]any{
		"played_sec":    session.PlayedSec,
		"playing_since": nil,
	}); err != nil {
		return nil, err
	}
	return session, nil
}

// Resume reopens the play interval.
func (s *Service) Resume(ctx context.Context, memberID string) (*PlaybackSession, error) {
	session, err := s.session(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if session.PlayingSince != nil {
		return session, nil
	}

	now := s.now()
	session.PlayingSince = &now
	if err := s.sessions.Update(ctx, session.ID, map[string]any{"playing_since": now}); err != nil {
		return nil, err
	}
	return session, nil
}

// Progress is playback state as of a request.
type Progress struct {
	MediaID   string `json:"media_id"`
	Kind      string `json:"kind"`
	Percent   int64  `json:"percent"`
	Playing   bool   `json:"playing"`
	Completed bool   `json:"completed"`
	Reward    int64  `json:"reward,omitempty"`
}

// Progress reports completion percent for the member's session, capped at
// 100. Hitting 100 credits the tier's per-item rate through the daily quota
// and closes the session, whether or not the quota admits the credit.
func (s *Service) Progress(ctx context.Context, memberID string) (*Progress, error) {
	session, err := s.session(ctx, memberID)
	if err != nil {
		return nil, err
	}

	played := session.PlayedSec
	if session.PlayingSince != nil {
		played += int64(s.now().Sub(*session.PlayingSince).Seconds())
	}
	percent := played * 100 / session.DurationSec
	if percent > 100 {
		percent = 100
	}

	p := &Progress{
		MediaID: session.MediaID,
		Kind:    session.Kind,
		Percent: percent,
		Playing: session.PlayingSince != nil,
	}
	if percent < 100 {
		return p, nil
	}

	p.Completed = true
	p.Playing = false
	if err := s.sessions.Delete(ctx, session.ID); err != nil {
		return nil, err
	}

	entry, err := s.complete(ctx, memberID, session)
	if err != nil {
		return p, err
	}
	p.Reward = entry.Amount
	return p, nil
}

func (s *Service) complete(ctx context.Context, memberID string, session *PlaybackSession) (*ledger.Transaction, error) {
	m, err := s.members.FindOne(ctx, &member.Member{ID: memberID})
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, member.ErrNotFound
	}

	pkg := catalog.Get(m.Tier)
	if session.Kind == KindVideo {
		return s.quota.RecordEarn(ctx, memberID, quota.ChannelVideos, pkg.VideoRate, "Video Completion Reward")
	}
	return s.quota.RecordEarn(ctx, memberID, quota.ChannelSongs, pkg.SongRate, "Song Completion Reward")
}

func (s *Service) session(ctx context.Context, memberID string) (*PlaybackSession, error) {
	session, err := s.sessions.FindOne(ctx, &PlaybackSession{MemberID: memberID})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrNoSession
	}
	return session, nil
}
