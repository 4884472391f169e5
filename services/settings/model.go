package settings

import "time"

// Settings is the single-row platform policy record. Row 1 is created
// lazily with open defaults on first read.
type Settings struct {
	ID int64 `gorm:"column:id;primaryKey" json:"-"`

	WithdrawalOpen    bool   `gorm:"column:withdrawal_open;not null;default:true" json:"withdrawal_open"`
	WithdrawalMessage string `gorm:"column:withdrawal_message;type:text" json:"withdrawal_message"`
	Announcement      string `gorm:"column:announcement;type:text" json:"announcement"`

	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// Song is a playable catalog entry for the earning player.
type Song struct {
	ID          string    `gorm:"column:id;primaryKey" json:"id"`
	Title       string    `gorm:"column:title;not null" json:"title"`
	Artist      string    `gorm:"column:artist" json:"artist"`
	URL         string    `gorm:"column:url;not null" json:"url"`
	DurationSec int64     `gorm:"column:duration_sec;not null" json:"duration_sec"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
