package models

import "time"

// StrategyRecord mirrors a registered strategy's ledger entry so the API can
// serve history without touching the live engine.
type StrategyRecord struct {
	ID                uint      `gorm:"primarykey" json:"id"`
	VaultAddress      string    `gorm:"size:100;not null;index" json:"vault_address"`
	StrategyAddress   string    `gorm:"size:100;not null;index" json:"strategy_address"`
	DebtRatioBps      uint64    `json:"debt_ratio_bps"`
	MinDebtPerHarvest uint64    `json:"min_debt_per_harvest"`
	MaxDebtPerHarvest uint64    `json:"max_debt_per_harvest"`
	PerformanceFeeBps uint64    `json:"performance_fee_bps"`
	TotalDebt         uint64    `json:"total_debt"`
	TotalGain         uint64    `json:"total_gain"`
	TotalLoss         uint64    `json:"total_loss"`
	Activation        int64     `json:"activation"`
	LastReport        int64     `json:"last_report"`
	CreatedAt         time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (StrategyRecord) TableName() string {
	return "strategy_records"
}
