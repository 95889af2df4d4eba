package models

import "time"

// ReportRecord stores the outcome of a single strategy report.
type ReportRecord struct {
	ID               uint      `gorm:"primarykey" json:"id"`
	VaultAddress     string    `gorm:"size:100;not null;index" json:"vault_address"`
	StrategyAddress  string    `gorm:"size:100;not null;index" json:"strategy_address"`
	Gain             uint64    `json:"gain"`
	Loss             uint64    `json:"loss"`
	DebtPaymentTaken uint64    `json:"debt_payment_taken"`
	CreditGiven      uint64    `json:"credit_given"`
	Outstanding      uint64    `json:"outstanding"`
	FeeShares        uint64    `json:"fee_shares"`
	CreatedAt        time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (ReportRecord) TableName() string {
	return "report_records"
}
