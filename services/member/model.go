package member

import (
	"time"

	"royalgate-platform/services/catalog"
)

// Member is the durable user record, including the engine state the earning
// services key off: daily counters, the shared day epoch, the spin flag and
// the mining start timestamp.
type Member struct {
	ID        string    `gorm:"column:id;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"-"`

	FullName     string `gorm:"column:full_name;not null" json:"full_name"`
	Username     string `gorm:"column:username;uniqueIndex;not null" json:"username"`
	Email        string `gorm:"column:email;uniqueIndex;not null" json:"email"`
	Phone        string `gorm:"column:phone" json:"phone"`
	Country      string `gorm:"column:country" json:"country"`
	PasswordHash string `gorm:"column:password_hash;not null" json:"-"`

	Tier       catalog.Tier `gorm:"column:tier;type:varchar(16);not null;default:'PINCK'" json:"tier"`
	ReferredBy string       `gorm:"column:referred_by;index" json:"referred_by,omitempty"`
	IsAdmin    bool         `gorm:"column:is_admin;not null;default:false" json:"is_admin"`

	// Daily-epoch state. All counters and the spin flag reset together when
	// DayEpoch is older than 24h.
	DayEpoch    time.Time `gorm:"column:day_epoch" json:"day_epoch"`
	DailySongs  int       `gorm:"column:daily_songs;not null;default:0" json:"daily_songs"`
	DailyVideos int       `gorm:"column:daily_videos;not null;default:0" json:"daily_videos"`
	DailyQuiz   int64     `gorm:"column:daily_quiz;not null;default:0" json:"daily_quiz"`
	SpinClaimed bool      `gorm:"column:spin_claimed;not null;default:false" json:"spin_claimed"`

	MiningStartedAt *time.Time `gorm:"column:mining_started_at" json:"mining_started_at,omitempty"`

	QuizIndex int `gorm:"column:quiz_index;not null;default:0" json:"quiz_index"`
}

// Referral links a referrer to a member they brought in. Rows are append
// only.
type Referral struct {
	ID         string    `gorm:"column:id;primaryKey" json:"id"`
	ReferrerID string    `gorm:"column:referrer_id;index;not null" json:"referrer_id"`
	MemberID   string    `gorm:"column:member_id;index;not null" json:"member_id"`
	Level      int       `gorm:"column:level;not null" json:"level"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
