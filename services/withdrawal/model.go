package withdrawal

import "time"

const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

// Request is one withdrawal. The amount is held out of the balance the
// moment the request is created; review only flips the status.
type Request struct {
	ID       string `gorm:"column:id;primaryKey" json:"id"`
	MemberID string `gorm:"column:member_id;index;not null" json:"member_id"`
	Username string `gorm:"column:username;not null" json:"username"`

	Amount        int64  `gorm:"column:amount;not null" json:"amount"`
	BankName      string `gorm:"column:bank_name;not null" json:"bank_name"`
	AccountNumber string `gorm:"column:account_number;not null" json:"account_number"`
	AccountName   string `gorm:"column:account_name;not null" json:"account_name"`

	Status string `gorm:"column:status;type:varchar(10);not null;default:'PENDING'" json:"status"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
