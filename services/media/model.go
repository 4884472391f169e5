package media

import "time"

const (
	KindSong  = "song"
	KindVideo = "video"
)

// PlaybackSession is the single in-flight playback per member. Selecting
// different media replaces it, so partial progress is forfeited.
type PlaybackSession struct {
	ID       string `gorm:"column:id;primaryKey" json:"id"`
	MemberID string `gorm:"column:member_id;uniqueIndex;not null" json:"member_id"`

	MediaID     string `gorm:"column:media_id;not null" json:"media_id"`
	Kind        string `gorm:"column:kind;type:varchar(10);not null" json:"kind"`
	DurationSec int64  `gorm:"column:duration_sec;not null" json:"duration_sec"`

	// PlayedSec accumulates finished play intervals; the interval since
	// PlayingSince is still open when it is non-nil.
	PlayedSec    int64      `gorm:"column:played_sec;not null;default:0" json:"played_sec"`
	PlayingSince *time.Time `gorm:"column:playing_since" json:"playing_since,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"-"`
}
