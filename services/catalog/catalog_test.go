package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetIsTotal(t *testing.T) {
	for _, tier := range []Tier{TierPinck, TierLegacy, TierKing, TierEmperor} {
		pkg := Get(tier)
		require.NotEmpty(t, pkg.Name, "tier %s", tier)
	}

	// Unknown tiers fall back to the free package.
	pkg := Get(Tier("DUKE"))
	require.Equal(t, Get(TierPinck), pkg)
}

func TestFreeTierEarnsNothing(t *testing.T) {
	pkg := Get(TierPinck)
	require.Zero(t, pkg.Price)
	require.Zero(t, pkg.DailyMiningRate)
	require.Zero(t, pkg.SongRate)
	require.Zero(t, pkg.VideoRate)
	require.False(t, TierPinck.Earning())
}

func TestPaidTiersEarn(t *testing.T) {
	for _, tier := range []Tier{TierLegacy, TierKing, TierEmperor} {
		require.True(t, tier.Earning(), "tier %s", tier)
		pkg := Get(tier)
		require.Positive(t, pkg.Price, "tier %s", tier)
		require.Positive(t, pkg.DailyMiningRate, "tier %s", tier)
		require.Positive(t, pkg.SongLimit, "tier %s", tier)
		require.Positive(t, pkg.VideoLimit, "tier %s", tier)
	}
}

func TestPaidExcludesFreeTier(t *testing.T) {
	for _, pkg := range Paid() {
		require.NotEqual(t, TierPinck, pkg.Tier)
	}
	require.Len(t, Paid(), 3)
}
