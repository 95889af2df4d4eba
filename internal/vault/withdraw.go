package vault

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Withdrawal waterfall: burn shares up front, drain idle balance, then pull
// from queued strategies in priority order under the caller's loss tolerance.

// WithdrawResult reports what a withdrawal actually delivered.
type WithdrawResult struct {
	// Assets is the amount transferred to the receiver.
	Assets uint64 `json:"assets"`
	// Shares is the amount burned from the owner.
	Shares uint64 `json:"shares"`
	// Loss is the realized strategy-side loss absorbed by the withdrawer.
	Loss uint64 `json:"loss"`
}

// Withdraw redeems the shares worth assets from owner and delivers up to
// assets to receiver, pulling from idle balance first and then queued
// strategies. maxLossBps is the caller's tolerance for realized loss plus
// undeliverable shortfall; on ErrSlippageExceeded the whole operation is
// rolled back, including the share burn.
func (v *Vault) Withdraw(caller string, assets uint64, receiver, owner string, maxLossBps uint64) (WithdrawResult, error) {
	s, err := v.begin()
	if err != nil {
		return WithdrawResult{}, err
	}
	shares := s.convertToShares(assets)
	res, err := v.waterfall(s, caller, assets, shares, receiver, owner, maxLossBps)
	if err != nil {
		v.abort()
		return WithdrawResult{}, err
	}
	v.commit(s)
	return res, nil
}

// Redeem is the share-denominated withdrawal entry point.
func (v *Vault) Redeem(caller string, shares uint64, receiver, owner string, maxLossBps uint64) (WithdrawResult, error) {
	s, err := v.begin()
	if err != nil {
		return WithdrawResult{}, err
	}
	assets := s.convertToAssets(shares)
	res, err := v.waterfall(s, caller, assets, shares, receiver, owner, maxLossBps)
	if err != nil {
		v.abort()
		return WithdrawResult{}, err
	}
	v.commit(s)
	return res, nil
}

func (v *Vault) waterfall(s *state, caller string, assets, shares uint64, receiver, owner string, maxLossBps uint64) (WithdrawResult, error) {
	if maxLossBps > MaxBPS {
		maxLossBps = MaxBPS
	}
	if err := s.spendAllowance(owner, caller, shares); err != nil {
		return WithdrawResult{}, err
	}
	// Burn before funds move; rollback restores it on any failure below.
	if s.balances[owner] < shares {
		return WithdrawResult{}, fmt.Errorf("owner holds %d shares, needs %d: %w", s.balances[owner], shares, ErrInsufficientBalance)
	}
	s.balances[owner] -= shares
	s.totalShares -= shares

	fromIdle := minU64(assets, s.idleAssets)
	s.idleAssets -= fromIdle
	needed := assets - fromIdle

	// pulled tracks asset amounts already liquidated out of strategies so an
	// aborted operation can push them back where they came from.
	type pulledFunds struct {
		strategy string
		amount   uint64
	}
	var pulled []pulledFunds
	refund := func() {
		for _, p := range pulled {
			if err := v.asset.Transfer(v.address, p.strategy, p.amount); err != nil {
				log.WithFields(log.Fields{"strategy": p.strategy, "amount": p.amount}).
					Errorf("failed to return liquidated funds: %v", err)
			}
		}
	}

	var totalLoss uint64
	for i := 0; i < MaxStrategies && needed > 0; i++ {
		addr := s.queue[i]
		if addr == "" {
			break
		}
		e := s.strategies[addr]
		if !e.active() || e.TotalDebt == 0 {
			continue
		}
		adapter := v.adapters[addr]
		if adapter == nil {
			continue
		}
		request := minU64(needed, e.TotalDebt)
		withdrawn, loss, err := adapter.Withdraw(request)
		if err != nil {
			refund()
			return WithdrawResult{}, fmt.Errorf("strategy %s withdraw: %w", addr, err)
		}
		withdrawn = minU64(withdrawn, request)
		loss = minU64(loss, e.TotalDebt-withdrawn)
		if loss > 0 {
			totalLoss += loss
			s.reportLoss(e, loss)
		}
		e.TotalDebt -= withdrawn
		s.totalDebt -= withdrawn
		needed -= withdrawn
		if withdrawn > 0 {
			pulled = append(pulled, pulledFunds{strategy: addr, amount: withdrawn})
		}
	}

	// Whatever the queue could not produce is itself loss to the withdrawer.
	if totalLoss+needed > mulDiv(assets, maxLossBps, MaxBPS) {
		refund()
		return WithdrawResult{}, fmt.Errorf("realized loss %d + shortfall %d over tolerance %dbps of %d: %w",
			totalLoss, needed, maxLossBps, assets, ErrSlippageExceeded)
	}

	delivered := assets - totalLoss - needed
	if err := v.asset.Transfer(v.address, receiver, delivered); err != nil {
		refund()
		return WithdrawResult{}, fmt.Errorf("asset transfer: %w", err)
	}
	return WithdrawResult{Assets: delivered, Shares: shares, Loss: totalLoss + needed}, nil
}

// MaxWithdraw returns the assets owner could withdraw right now, bounded
// pessimistically by idle liquidity. Zero during emergency shutdown.
func (v *Vault) MaxWithdraw(owner string) (assets uint64) {
	v.view(func(s *state) {
		if s.emergencyShutdown {
			return
		}
		assets = minU64(s.convertToAssets(s.balances[owner]), s.idleAssets)
	})
	return
}

// MaxRedeem returns the shares owner could redeem right now, bounded
// pessimistically by idle liquidity. Zero during emergency shutdown.
func (v *Vault) MaxRedeem(owner string) (shares uint64) {
	v.view(func(s *state) {
		if s.emergencyShutdown {
			return
		}
		shares = minU64(s.balances[owner], s.convertToShares(s.idleAssets))
	})
	return
}

// PreviewWithdraw projects the shares a withdrawal would burn, 0 when the
// request could not be served from idle liquidity.
func (v *Vault) PreviewWithdraw(assets uint64) (shares uint64) {
	v.view(func(s *state) {
		if s.emergencyShutdown || assets > s.idleAssets {
			return
		}
		shares = s.convertToShares(assets)
	})
	return
}

// PreviewRedeem projects the assets a redemption would deliver, 0 when the
// request could not be served from idle liquidity.
func (v *Vault) PreviewRedeem(shares uint64) (assets uint64) {
	v.view(func(s *state) {
		if s.emergencyShutdown {
			return
		}
		out := s.convertToAssets(shares)
		if out > s.idleAssets {
			return
		}
		assets = out
	})
	return
}

// MaxAvailableShares returns the shares redeemable against idle balance plus
// everything the queued strategies could in principle return.
func (v *Vault) MaxAvailableShares() (shares uint64) {
	v.view(func(s *state) {
		available := s.idleAssets
		for i := 0; i < MaxStrategies; i++ {
			addr := s.queue[i]
			if addr == "" {
				break
			}
			if e := s.strategies[addr]; e.active() {
				available += e.TotalDebt
			}
		}
		shares = s.convertToShares(available)
	})
	return
}
