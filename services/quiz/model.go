package quiz

import (
	"time"

	"gorm.io/datatypes"
)

// Question is one multiple-choice entry in the rotation. Options is a JSON
// array of answer strings; CorrectIndex points into it.
type Question struct {
	ID       string `gorm:"column:id;primaryKey" json:"id"`
	Section  string `gorm:"column:section" json:"section"`
	Position int    `gorm:"column:position;index;not null" json:"position"`

	Prompt       string         `gorm:"column:prompt;type:text;not null" json:"prompt"`
	Options      datatypes.JSON `gorm:"column:options;not null" json:"options"`
	CorrectIndex int            `gorm:"column:correct_index;not null" json:"-"`
	Reward       int64          `gorm:"column:reward;not null" json:"reward"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
