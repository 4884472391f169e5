package ledger

import (
	"time"

	"gorm.io/datatypes"
)

const (
	TypeCredit = "CREDIT"
	TypeDebit  = "DEBIT"
)

const (
	StatusSuccess = "SUCCESS"
	StatusPending = "PENDING"
	StatusFailed  = "FAILED"
)

// Transaction is one immutable ledger record. Amount is always positive;
// Type says which direction it moved. Rows are never updated or deleted by
// this service.
type Transaction struct {
	ID          string         `gorm:"column:id;primaryKey" json:"id"`
	MemberID    string         `gorm:"column:member_id;index;not null" json:"member_id"`
	Amount      int64          `gorm:"column:amount;not null" json:"amount"`
	Type        string         `gorm:"column:type;type:varchar(10);not null" json:"type"`
	Description string         `gorm:"column:description;type:text" json:"description"`
	Status      string         `gorm:"column:status;type:varchar(10);not null" json:"status"`
	Metadata    datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// Balance is the running balance row per member, updated in the same
// database transaction as the entry that moved it.
type Balance struct {
	ID        string    `gorm:"column:id;primaryKey"`
	MemberID  string    `gorm:"column:member_id;uniqueIndex;not null"`
	Balance   int64     `gorm:"column:balance;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
