package db

import "time"

type AuditEventModel struct {
	ID          string    `gorm:"type:uuid;primaryKey"`
	EventType   string    `gorm:"index;not null"`
	TxnID       *string   `gorm:"index"`
	UserID      *string   `gorm:"index"`
	PayloadJSON []byte    `gorm:"type:jsonb;not null"`
	Result      string    `gorm:"not null"`
	ErrorCode   *string
	CreatedAt   time.Time `gorm:"index;not null"`
}

func (AuditEventModel) TableName() string { return "audit_events" }

// TransactionModel is the observational journal row for a transaction the
// server has seen. The provider remains the source of truth; rows here only
// record what passed through, for operators.
type TransactionModel struct {
	TxnID     string `gorm:"primaryKey"`
	Kind      string `gorm:"index;not null"`
	State     string `gorm:"index;not null"`
	ExpiresAt *time.Time
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (TransactionModel) TableName() string { return "transactions" }
