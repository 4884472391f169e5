package catalog

// Tier is a membership level. PINCK is the free tier assigned at
// registration; it earns nothing until the member activates a paid package.
type Tier string

const (
	TierPinck   Tier = "PINCK"
	TierLegacy  Tier = "LEGACY"
	TierKing    Tier = "KING"
	TierEmperor Tier = "EMPEROR"
)

// Earning reports whether the tier may use any earning stream.
func (t Tier) Earning() bool {
	switch t {
	case TierLegacy, TierKing, TierEmperor:
		return true
	default:
		return false
	}
}

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	switch t {
	case TierPinck, TierLegacy, TierKing, TierEmperor:
		return true
	default:
		return false
	}
}

// Package is the immutable economic parameter set for a tier. Amounts are
// whole naira.
type Package struct {
	Tier            Tier     `json:"tier"`
	Name            string   `json:"name"`
	Price           int64    `json:"price"`
	SignupBonus     int64    `json:"signup_bonus"`
	DailyMiningRate int64    `json:"daily_mining_rate"`
	VideoRate       int64    `json:"video_rate"`
	SongRate        int64    `json:"song_rate"`
	SongLimit       int      `json:"song_limit"`
	VideoLimit      int      `json:"video_limit"`
	Benefits        []string `json:"benefits"`
}

// Economy-wide constants shared by every tier.
const (
	QuizReward    int64 = 450  // credit per correct answer
	QuizDailyCap  int64 = 1000 // max cumulative quiz earnings per day
	SpinReward    int64 = 50   // daily spin credit
	MinWithdrawal int64 = 2000
)

// ReferralRates is the commission ladder paid on activation, as a fraction
// of the package price per ancestor level.
var ReferralRates = []float64{0.10, 0.05, 0.02}

var packages = map[Tier]Package{
	TierPinck: {
		Tier:     TierPinck,
		Name:     "Free",
		Benefits: []string{"Limited Access"},
	},
	TierLegacy: {
		Tier:            TierLegacy,
		Name:            "Legacy",
		Price:           5000,
		SignupBonus:     500,
		DailyMiningRate: 200,
		VideoRate:       20,
		SongRate:        10,
		SongLimit:       10,
		VideoLimit:      10,
		Benefits: []string{
			"Daily Mining: ₦200",
			"Video Ads: ₦20/ea",
			"Music Streams: ₦10/ea",
			"Instant Bonus: ₦500",
			"1-Level Referrals",
		},
	},
	TierKing: {
		Tier:            TierKing,
		Name:            "King",
		Price:           15000,
		SignupBonus:     1500,
		DailyMiningRate: 750,
		VideoRate:       50,
		SongRate:        30,
		SongLimit:       20,
		VideoLimit:      20,
		Benefits: []string{
			"Daily Mining: ₦750",
			"Video Ads: ₦50/ea",
			"Music Streams: ₦30/ea",
			"Instant Bonus: ₦1,500",
			"2-Level Referrals",
		},
	},
	TierEmperor: {
		Tier:            TierEmperor,
		Name:            "Emperor",
		Price:           50000,
		SignupBonus:     5000,
		DailyMiningRate: 3000,
		VideoRate:       200,
		SongRate:        100,
		SongLimit:       50,
		VideoLimit:      50,
		Benefits: []string{
			"Daily Mining: ₦3,000",
			"Video Ads: ₦200/ea",
			"Music Streams: ₦100/ea",
			"Instant Bonus: ₦5,000",
			"Multi-Level Referrals",
			"Priority Support",
		},
	},
}

// Get is total: unknown tiers resolve to the free package.
func Get(tier Tier) Package {
	if pkg, ok := packages[tier]; ok {
		return pkg
	}
	return packages[TierPinck]
}

// Paid lists the activatable packages in ascending price order.
func Paid() []Package {
	return []Package{packages[TierLegacy], packages[TierKing], packages[TierEmperor]}
}
