package vault

import "fmt"

// Strategy registry: registration, parameter updates, revocation, and the two
// rebalancing quantities (credit available, debt outstanding) the report
// engine and the harvest scheduler work from.

// AddStrategy registers a strategy with its target allocation and harvest
// bounds and appends it to the withdrawal queue. Governance or management.
func (v *Vault) AddStrategy(caller string, strategy Strategy, debtRatioBps, minDebtPerHarvest, maxDebtPerHarvest, performanceFeeBps uint64) error {
	s, err := v.begin()
	if err != nil {
		return err
	}
	if err := s.authorize(caller, s.governance, s.management); err != nil {
		v.abort()
		return err
	}
	if strategy == nil || strategy.Address() == "" {
		v.abort()
		return fmt.Errorf("nil strategy: %w", ErrInvalidStrategy)
	}
	addr := strategy.Address()
	if strategy.VaultAddress() != v.address {
		v.abort()
		return fmt.Errorf("strategy %s bound to vault %s: %w", addr, strategy.VaultAddress(), ErrInvalidStrategy)
	}
	if s.strategies[addr].active() {
		v.abort()
		return fmt.Errorf("strategy %s already active: %w", addr, ErrInvalidStrategy)
	}
	if minDebtPerHarvest > maxDebtPerHarvest {
		v.abort()
		return fmt.Errorf("min harvest debt %d > max %d: %w", minDebtPerHarvest, maxDebtPerHarvest, ErrInvalidStrategy)
	}
	if s.queueLen() >= MaxStrategies {
		v.abort()
		return fmt.Errorf("withdrawal queue full: %w", ErrInvalidStrategy)
	}
	if s.queueIndex(addr) >= 0 {
		v.abort()
		return fmt.Errorf("strategy %s still queued: %w", addr, ErrInvalidStrategy)
	}
	if s.debtRatioBps+debtRatioBps > MaxBPS {
		v.abort()
		return fmt.Errorf("ratio sum %d over %d: %w", s.debtRatioBps+debtRatioBps, MaxBPS, ErrRatioExceeded)
	}

	now := v.now().Unix()
	s.strategies[addr] = &StrategyEntry{
		DebtRatioBps:      debtRatioBps,
		MinDebtPerHarvest: minDebtPerHarvest,
		MaxDebtPerHarvest: maxDebtPerHarvest,
		PerformanceFeeBps: performanceFeeBps,
		LastReport:        now,
		Activation:        now,
	}
	s.debtRatioBps += debtRatioBps
	s.queue[s.queueLen()] = addr
	v.adapters[addr] = strategy
	v.commit(s)
	return nil
}

// UpdateStrategyDebtRatio changes a strategy's target allocation, re-checking
// the ratio sum invariant. Governance or management.
func (v *Vault) UpdateStrategyDebtRatio(caller, strategy string, debtRatioBps uint64) error {
	return v.updateStrategy(caller, strategy, func(s *state, e *StrategyEntry) error {
		remaining := s.debtRatioBps - e.DebtRatioBps
		if remaining+debtRatioBps > MaxBPS {
			return fmt.Errorf("ratio sum %d over %d: %w", remaining+debtRatioBps, MaxBPS, ErrRatioExceeded)
		}
		s.debtRatioBps = remaining + debtRatioBps
		e.DebtRatioBps = debtRatioBps
		return nil
	})
}

// UpdateStrategyMinDebtPerHarvest changes the lower harvest bound.
func (v *Vault) UpdateStrategyMinDebtPerHarvest(caller, strategy string, minDebt uint64) error {
	return v.updateStrategy(caller, strategy, func(_ *state, e *StrategyEntry) error {
		if minDebt > e.MaxDebtPerHarvest {
			return fmt.Errorf("min harvest debt %d > max %d: %w", minDebt, e.MaxDebtPerHarvest, ErrRatioExceeded)
		}
		e.MinDebtPerHarvest = minDebt
		return nil
	})
}

// UpdateStrategyMaxDebtPerHarvest changes the upper harvest bound.
func (v *Vault) UpdateStrategyMaxDebtPerHarvest(caller, strategy string, maxDebt uint64) error {
	return v.updateStrategy(caller, strategy, func(_ *state, e *StrategyEntry) error {
		if e.MinDebtPerHarvest > maxDebt {
			return fmt.Errorf("max harvest debt %d < min %d: %w", maxDebt, e.MinDebtPerHarvest, ErrRatioExceeded)
		}
		e.MaxDebtPerHarvest = maxDebt
		return nil
	})
}

// UpdateStrategyPerformanceFee changes the strategy-specific performance fee,
// additive to the vault-level fee.
func (v *Vault) UpdateStrategyPerformanceFee(caller, strategy string, feeBps uint64) error {
	return v.updateStrategy(caller, strategy, func(_ *state, e *StrategyEntry) error {
		if feeBps > MaxBPS {
			return fmt.Errorf("performance fee %d over %d: %w", feeBps, MaxBPS, ErrRatioExceeded)
		}
		e.PerformanceFeeBps = feeBps
		return nil
	})
}

func (v *Vault) updateStrategy(caller, strategy string, apply func(*state, *StrategyEntry) error) error {
	s, err := v.begin()
	if err != nil {
		return err
	}
	if err := s.authorize(caller, s.governance, s.management); err != nil {
		v.abort()
		return err
	}
	e := s.strategies[strategy]
	if !e.active() {
		v.abort()
		return fmt.Errorf("strategy %s not active: %w", strategy, ErrInvalidStrategy)
	}
	if err := apply(s, e); err != nil {
		v.abort()
		return err
	}
	v.commit(s)
	return nil
}

// RevokeStrategy logically deletes a strategy. Its allocation ratio must be
// drained to zero first; the slot is retained with zeroed fields. Governance
// or guardian, idempotent on the zeroed fields.
func (v *Vault) RevokeStrategy(caller, strategy string) error {
	s, err := v.begin()
	if err != nil {
		return err
	}
	if err := s.authorize(caller, s.governance, s.guardian, strategy); err != nil {
		v.abort()
		return err
	}
	e := s.strategies[strategy]
	if !e.active() {
		v.abort()
		return fmt.Errorf("strategy %s not active: %w", strategy, ErrInvalidStrategy)
	}
	if e.DebtRatioBps != 0 {
		v.abort()
		return fmt.Errorf("strategy %s ratio %d not drained: %w", strategy, e.DebtRatioBps, ErrRatioExceeded)
	}
	e.Activation = 0
	e.DebtRatioBps = 0
	v.commit(s)
	return nil
}

// Strategies returns a copy of the accounting entry for a strategy.
func (v *Vault) Strategies(strategy string) (entry StrategyEntry, ok bool) {
	v.view(func(s *state) {
		if e := s.strategies[strategy]; e != nil {
			entry, ok = *e, true
		}
	})
	return
}

// DebtRatio returns the aggregate allocation ratio over active strategies.
func (v *Vault) DebtRatio() (bps uint64) {
	v.view(func(s *state) { bps = s.debtRatioBps })
	return
}

// creditAvailable is the amount the vault is willing to advance to the
// strategy on its next report.
func (s *state) creditAvailable(e *StrategyEntry) uint64 {
	if s.emergencyShutdown {
		return 0
	}
	ta := s.totalAssets()
	strategyTarget := mulDiv(ta, e.DebtRatioBps, MaxBPS)
	vaultTarget := mulDiv(ta, s.debtRatioBps, MaxBPS)
	if e.TotalDebt >= strategyTarget || s.totalDebt >= vaultTarget {
		return 0
	}
	available := minU64(strategyTarget-e.TotalDebt, vaultTarget-s.totalDebt)
	available = minU64(available, s.idleAssets)
	if available < e.MinDebtPerHarvest {
		return 0
	}
	return minU64(available, e.MaxDebtPerHarvest)
}

// debtOutstanding is the amount the strategy holds in excess of its target,
// or its entire debt under shutdown or a zeroed ratio.
func (s *state) debtOutstanding(e *StrategyEntry) uint64 {
	if s.emergencyShutdown || e.DebtRatioBps == 0 {
		return e.TotalDebt
	}
	target := mulDiv(s.totalAssets(), e.DebtRatioBps, MaxBPS)
	if e.TotalDebt <= target {
		return 0
	}
	return e.TotalDebt - target
}

// CreditAvailable reports how much the vault would advance to strategy on its
// next report.
func (v *Vault) CreditAvailable(strategy string) (credit uint64) {
	v.view(func(s *state) {
		if e := s.strategies[strategy]; e.active() {
			credit = s.creditAvailable(e)
		}
	})
	return
}

// DebtOutstanding reports how much strategy currently holds over its target.
func (v *Vault) DebtOutstanding(strategy string) (debt uint64) {
	v.view(func(s *state) {
		if e := s.strategies[strategy]; e != nil {
			debt = s.debtOutstanding(e)
		}
	})
	return
}

// reportLoss books a realized loss against a strategy: its allocation ratio
// shrinks in proportion to the fraction of total debt lost, debt totals drop
// and locked profit absorbs the loss first.
func (s *state) reportLoss(e *StrategyEntry, loss uint64) {
	if loss == 0 {
		return
	}
	if s.totalDebt > 0 {
		ratioChange := minU64(mulDiv(loss, s.debtRatioBps, s.totalDebt), e.DebtRatioBps)
		e.DebtRatioBps -= ratioChange
		s.debtRatioBps -= ratioChange
	}
	e.TotalLoss += loss
	e.TotalDebt -= minU64(e.TotalDebt, loss)
	s.totalDebt -= minU64(s.totalDebt, loss)
	s.settleLockedProfit()
	s.lockedProfit -= minU64(s.lockedProfit, loss)
}
