package models

import "time"

// VaultSnapshot is a point-in-time copy of the vault's aggregate accounting,
// recorded by the worker on a schedule and after every report.
type VaultSnapshot struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	VaultAddress  string    `gorm:"size:100;not null;index" json:"vault_address"`
	TotalSupply   uint64    `json:"total_supply"`
	TotalAssets   uint64    `json:"total_assets"`
	TotalDebt     uint64    `json:"total_debt"`
	IdleAssets    uint64    `json:"idle_assets"`
	LockedProfit  uint64    `json:"locked_profit"`
	PricePerShare uint64    `json:"price_per_share"`
	DebtRatioBps  uint64    `json:"debt_ratio_bps"`
	Shutdown      bool      `json:"shutdown"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (VaultSnapshot) TableName() string {
	return "vault_snapshots"
}
