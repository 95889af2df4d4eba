// Package strategy provides the Simulated yield adapter used by the service
// harness, the harvest worker and the engine tests. It fulfils the external
// collaborator contract: it holds asset balance, harvests by calling back
// into the vault's report, and liquidates on demand for the withdrawal
// waterfall.
package strategy

import (
	"fmt"
	"sync"

	"vaultcontrol/internal/token"
	"vaultcontrol/internal/vault"
)

// Simulated is a strategy whose yield is scripted: the harness credits or
// burns asset balance and sets the gain/loss the next harvest reports.
type Simulated struct {
	mu      sync.Mutex
	address string
	vault   *vault.Vault
	asset   *token.MemToken

	pendingGain uint64
	pendingLoss uint64

	// liquidation overrides the next Withdraw result when set.
	liquidation  bool
	liquidAmount uint64
	liquidLoss   uint64
}

// NewSimulated binds a simulated strategy to a vault and its asset ledger.
func NewSimulated(address string, v *vault.Vault, asset *token.MemToken) *Simulated {
	return &Simulated{address: address, vault: v, asset: asset}
}

// Address identifies the strategy.
func (s *Simulated) Address() string { return s.address }

// VaultAddress returns the vault this strategy is bound to.
func (s *Simulated) VaultAddress() string { return s.vault.Address() }

// SetHarvestResult scripts the gain and loss the next Harvest reports.
func (s *Simulated) SetHarvestResult(gain, loss uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingGain, s.pendingLoss = gain, loss
}

// SetLiquidation scripts the next Withdraw to return exactly withdrawn plus
// loss, regardless of what the vault requested. One-shot.
func (s *Simulated) SetLiquidation(withdrawn, loss uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.liquidation, s.liquidAmount, s.liquidLoss = true, withdrawn, loss
}

// SimulateEarn credits yield to the strategy's asset balance.
func (s *Simulated) SimulateEarn(amount uint64) {
	s.asset.Mint(s.address, amount)
}

// SimulateBurn destroys asset balance, modelling a realized yield loss.
func (s *Simulated) SimulateBurn(amount uint64) {
	s.asset.Burn(s.address, amount)
}

// Harvest reports the scripted gain/loss plus the vault's current recall
// instruction, letting the vault rebalance capital in or out.
func (s *Simulated) Harvest() (vault.ReportResult, error) {
	s.mu.Lock()
	gain, loss := s.pendingGain, s.pendingLoss
	s.mu.Unlock()

	debtPayment := s.vault.DebtOutstanding(s.address)
	balance := s.asset.BalanceOf(s.address)
	if gain > balance {
		return vault.ReportResult{}, fmt.Errorf("strategy %s: scripted gain %d over balance %d", s.address, gain, balance)
	}
	if debtPayment > balance-gain {
		debtPayment = balance - gain
	}
	res, err := s.vault.Report(s.address, gain, loss, debtPayment)
	if err != nil {
		return vault.ReportResult{}, err
	}
	s.mu.Lock()
	s.pendingGain, s.pendingLoss = 0, 0
	s.mu.Unlock()
	return res, nil
}

// Withdraw liquidates up to needed assets back to the vault. A scripted
// liquidation overrides the default full-liquidity behavior and burns the
// scripted loss so the asset ledger stays consistent.
func (s *Simulated) Withdraw(needed uint64) (withdrawn, loss uint64, err error) {
	s.mu.Lock()
	scripted := s.liquidation
	withdrawn, loss = s.liquidAmount, s.liquidLoss
	s.liquidation = false
	s.mu.Unlock()

	if !scripted {
		withdrawn = needed
		loss = 0
	}
	balance := s.asset.BalanceOf(s.address)
	if withdrawn > balance {
		withdrawn = balance
	}
	if loss > 0 {
		s.asset.Burn(s.address, loss)
	}
	if err := s.asset.Transfer(s.address, s.vault.Address(), withdrawn); err != nil {
		return 0, 0, err
	}
	return withdrawn, loss, nil
}
