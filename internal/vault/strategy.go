package vault

// Token is the fungible asset the vault pools. Transfer mechanics are an
// external collaborator; the engine only moves balances between holder
// identifiers and never inspects how custody is implemented.
type Token interface {
	// Address identifies the token. Sweep uses it to protect the managed asset.
	Address() string
	// BalanceOf returns the holder's current balance.
	BalanceOf(holder string) uint64
	// Transfer moves amount from one holder to another.
	Transfer(from, to string, amount uint64) error
}

// Strategy is the narrow callback contract every yield adapter must expose.
// The vault initiates Withdraw during the withdrawal waterfall; everything
// else (harvesting, reporting) is strategy-initiated through Vault.Report.
type Strategy interface {
	// Address identifies the strategy. It doubles as the strategy's holder
	// identifier on the asset token and as its share account.
	Address() string
	// VaultAddress returns the vault this strategy is bound to. Registration
	// fails when it does not match.
	VaultAddress() string
	// Withdraw liquidates up to needed assets back to the vault and returns
	// the amount actually withdrawn plus any realized loss.
	Withdraw(needed uint64) (withdrawn, loss uint64, err error)
}

// StrategyEntry is the vault-side accounting record for one registered
// strategy. Revocation zeroes the fields but keeps the slot, so a revoked
// strategy reads as Activation == 0.
type StrategyEntry struct {
	DebtRatioBps      uint64 `json:"debt_ratio_bps"`
	MinDebtPerHarvest uint64 `json:"min_debt_per_harvest"`
	MaxDebtPerHarvest uint64 `json:"max_debt_per_harvest"`
	PerformanceFeeBps uint64 `json:"performance_fee_bps"`
	TotalDebt         uint64 `json:"total_debt"`
	TotalGain         uint64 `json:"total_gain"`
	TotalLoss         uint64 `json:"total_loss"`
	LastReport        int64  `json:"last_report"`
	Activation        int64  `json:"activation"`
}

func (e *StrategyEntry) active() bool {
	return e != nil && e.Activation != 0
}
