package quota

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"royalgate-platform/services/catalog"
	"royalgate-platform/services/ledger"
	"royalgate-platform/services/member"
	"royalgate-platform/services/testutil"
)

func newTestService(t *testing.T) (*Service, *ledger.Service, *gorm.DB) {
	t.Helper()

	db := testutil.NewTestDB(t, &member.Member{}, &ledger.Transaction{}, &ledger.Balance{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	ledgerSvc := ledger.NewService(ledger.ServiceParams{DB: db, Node: node})
	svc := NewService(ServiceParams{DB: db, Ledger: ledgerSvc})
	return svc, ledgerSvc, db
}

func seedMember(t *testing.T, db *gorm.DB, tier catalog.Tier, epoch time.Time) *member.Member {
	t.Helper()
	m := &member.Member{
		ID:       "m-" + string(tier),
		FullName: "Test Member",
		Username: "user-" + string(tier),
		Email:    string(tier) + "@example.com",
		Tier:     tier,
		DayEpoch: epoch,
	}
	require.NoError(t, db.Create(m).Error)
	return m
}

func TestRecordEarnRequiresActivation(t *testing.T) {
	svc, _, db := newTestService(t)
	m := seedMember(t, db, catalog.TierPinck, time.Now())

	_, err := svc.RecordEarn(context.Background(), m.ID, ChannelSongs, 10, "Song Completion Reward")
	require.ErrorIs(t, err, ErrActivationRequired)
}

func TestRecordEarnCountsAndCredits(t *testing.T) {
	svc, ledgerSvc, db := newTestService(t)
	ctx := context.Background()
	m := seedMember(t, db, catalog.TierLegacy, time.Now())

	_, err := svc.RecordEarn(ctx, m.ID, ChannelSongs, 10, "Song Completion Reward")
	require.NoError(t, err)

	usage, err := svc.Snapshot(ctx, m.ID)
	require.NoError(t, err)
	require.Equal(t, 1, usage.Songs)

	balance, err := ledgerSvc.Balance(ctx, m.ID)
	require.NoError(t, err)
	require.Equal(t, int64(10), balance)
}

func TestSongLimitBlocksAtTierCap(t *testing.T) {
	svc, ledgerSvc, db := newTestService(t)
	ctx := context.Background()
	m := seedMember(t, db, catalog.TierLegacy, time.Now())

	limit := catalog.Get(catalog.TierLegacy).SongLimit
	for i := 0; i < limit; i++ {
		_, err := svc.RecordEarn(ctx, m.ID, ChannelSongs, 10, "Song Completion Reward")
		require.NoError(t, err)
	}

	_, err := svc.RecordEarn(ctx, m.ID, ChannelSongs, 10, "Song Completion Reward")
	require.ErrorIs(t, err, ErrSongLimitReached)

	// The blocked attempt left no trace.
	balance, err := ledgerSvc.Balance(ctx, m.ID)
	require.NoError(t, err)
	require.Equal(t, int64(10*limit), balance)

	usage, err := svc.Snapshot(ctx, m.ID)
	require.NoError(t, err)
	require.Equal(t, limit, usage.Songs)
}

func TestVideoLimitIndependentOfSongs(t *testing.T) {
	svc, _, db := newTestService(t)
	ctx := context.Background()
	m := seedMember(t, db, catalog.TierLegacy, time.Now())

	limit := catalog.Get(catalog.TierLegacy).SongLimit
	for i := 0; i < limit; i++ {
		_, err := svc.RecordEarn(ctx, m.ID, ChannelSongs, 10, "Song Completion Reward")
		require.NoError(t, err)
	}

	// Songs being exhausted does not touch the video channel.
	_, err := svc.RecordEarn(ctx, m.ID, ChannelVideos, 20, "Video Completion Reward")
	require.NoError(t, err)
}

func TestQuizCapIsCumulativeEarnings(t *testing.T) {
	svc, _, db := newTestService(t)
	ctx := context.Background()
	m := seedMember(t, db, catalog.TierLegacy, time.Now())

	// 450 + 450 = 900, still under the cap; the third answer starts at or
	// above 1000 and is blocked.
	_, err := svc.RecordEarn(ctx, m.ID, ChannelQuiz, catalog.QuizReward, "Quiz Reward")
	require.NoError(t, err)
	_, err = svc.RecordEarn(ctx, m.ID, ChannelQuiz, catalog.QuizReward, "Quiz Reward")
	require.NoError(t, err)

	usage, err := svc.Snapshot(ctx, m.ID)
	require.NoError(t, err)
	require.Equal(t, int64(900), usage.Quiz)

	_, err = svc.RecordEarn(ctx, m.ID, ChannelQuiz, catalog.QuizReward, "Quiz Reward")
	require.NoError(t, err)

	_, err = svc.RecordEarn(ctx, m.ID, ChannelQuiz, catalog.QuizReward, "Quiz Reward")
	require.ErrorIs(t, err, ErrQuizCapReached)
}

func TestEpochRollResetsAllCounters(t *testing.T) {
	svc, _, db := newTestService(t)
	ctx := context.Background()

	base := time.Now()
	m := seedMember(t, db, catalog.TierLegacy, base)
	svc.now = func() time.Time { return base }

	limit := catalog.Get(catalog.TierLegacy).SongLimit
	for i := 0; i < limit; i++ {
		_, err := svc.RecordEarn(ctx, m.ID, ChannelSongs, 10, "Song Completion Reward")
		require.NoError(t, err)
	}
	_, err := svc.RecordEarn(ctx, m.ID, ChannelSongs, 10, "Song Completion Reward")
	require.ErrorIs(t, err, ErrSongLimitReached)

	// 24h later the window reopens and the blocked earn goes through.
	svc.now = func() time.Time { return base.Add(24 * time.Hour) }
	_, err = svc.RecordEarn(ctx, m.ID, ChannelSongs, 10, "Song Completion Reward")
	require.NoError(t, err)

	usage, err := svc.Snapshot(ctx, m.ID)
	require.NoError(t, err)
	require.Equal(t, 1, usage.Songs)
	require.False(t, usage.SpinClaimed)
}

func TestStaleEpochResetsOnce(t *testing.T) {
	base := time.Now()
	m := &member.Member{DayEpoch: base.Add(-72 * time.Hour), DailySongs: 5, SpinClaimed: true}

	require.True(t, Roll(m, base))
	require.Zero(t, m.DailySongs)
	require.False(t, m.SpinClaimed)
	require.Equal(t, base, m.DayEpoch)

	// Rolling again within the new window is a no-op.
	require.False(t, Roll(m, base.Add(time.Hour)))
}

func TestRecordEarnUnknownMember(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.RecordEarn(context.Background(), "missing", ChannelSongs, 10, "Song Completion Reward")
	require.ErrorIs(t, err, member.ErrNotFound)
}
