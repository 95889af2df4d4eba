package models

import "time"

// WithdrawRecord stores a completed withdrawal, including any loss realized
// while pulling capital back through the queue.
type WithdrawRecord struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	VaultAddress string    `gorm:"size:100;not null;index" json:"vault_address"`
	Owner        string    `gorm:"size:100;not null;index" json:"owner"`
	Receiver     string    `gorm:"size:100;not null" json:"receiver"`
	Assets       uint64    `json:"assets"`
	Shares       uint64    `json:"shares"`
	Loss         uint64    `json:"loss"`
	MaxLossBps   uint64    `json:"max_loss_bps"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (WithdrawRecord) TableName() string {
	return "withdraw_records"
}
