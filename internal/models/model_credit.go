package models

import (
	"time"

	"github.com/mlyaho/ai-mem-generator/pkg/types"
)

// CreditBalance is the per-user spendable credit counter.
// Balance never goes negative; Lifetime only grows.
type CreditBalance struct {
	ID        string    `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID    string    `gorm:"column:user_id;type:varchar(64);not null;uniqueIndex" json:"userId"`
	Balance   int64     `gorm:"column:balance;type:bigint;not null;default:0" json:"balance"`
	Lifetime  int64     `gorm:"column:lifetime;type:bigint;not null;default:0" json:"lifetime"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (CreditBalance) TableName() string {
	return "credit_balance"
}

// CreditTransaction is an append-only ledger entry. Amount is positive for credits and
// negative for debits; BalanceAfter snapshots the balance once the entry is applied.
type CreditTransaction struct {
	ID           string                      `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID       string                      `gorm:"column:user_id;type:varchar(64);not null;index:idx_credit_tx_user_type_created,priority:1" json:"userId"`
	Amount       int64                       `gorm:"column:amount;type:bigint;not null" json:"amount"`
	Type         types.CreditTransactionType `gorm:"column:type;type:varchar(32);not null;index:idx_credit_tx_user_type_created,priority:2" json:"type"`
	Description  string                      `gorm:"column:description;type:varchar(512)" json:"description"`
	BalanceAfter int64                       `gorm:"column:balance_after;type:bigint;not null" json:"balanceAfter"`
	CreatedAt    time.Time                   `gorm:"index:idx_credit_tx_user_type_created,priority:3" json:"createdAt"`
}

func (CreditTransaction) TableName() string {
	return "credit_transaction"
}
