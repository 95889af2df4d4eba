package vault

import (
	"fmt"
	"math/big"
)

// Report engine: the harvest reconciliation a strategy calls about itself.
// Processing order is fixed (loss first, then fees, net profit, debt
// rebalancing, locked-profit update) and the whole call commits atomically.

// ReportResult tells the strategy what the vault did and expects next.
type ReportResult struct {
	// CreditGiven is the fresh debt advanced to the strategy in this report.
	CreditGiven uint64 `json:"credit_given"`
	// DebtPaymentTaken is how much of the offered debt payment was accepted.
	DebtPaymentTaken uint64 `json:"debt_payment_taken"`
	// Outstanding is the recall instruction: debt the strategy should return
	// on its next harvest. Under shutdown or a zeroed ratio it is the
	// strategy's entire debt.
	Outstanding uint64 `json:"outstanding"`
	// FeeShares is the total shares minted for fees in this report.
	FeeShares uint64 `json:"fee_shares"`
}

// Report reconciles a strategy's gain, loss and offered debt payment with the
// vault. Callable only by the reporting strategy itself. The strategy must
// hold gain+debtPayment of the asset so the vault can pull what rebalancing
// requires.
func (v *Vault) Report(caller string, gain, loss, debtPayment uint64) (ReportResult, error) {
	s, err := v.begin()
	if err != nil {
		return ReportResult{}, err
	}
	res, err := v.reportLocked(s, caller, gain, loss, debtPayment)
	if err != nil {
		v.abort()
		return ReportResult{}, err
	}
	v.commit(s)
	return res, nil
}

func (v *Vault) reportLocked(s *state, caller string, gain, loss, debtPayment uint64) (ReportResult, error) {
	e := s.strategies[caller]
	if e == nil {
		return ReportResult{}, fmt.Errorf("caller %s is not a registered strategy: %w", caller, ErrUnauthorized)
	}
	if !e.active() {
		return ReportResult{}, fmt.Errorf("strategy %s not active: %w", caller, ErrInvalidStrategy)
	}
	if v.asset.BalanceOf(caller) < gain+debtPayment {
		return ReportResult{}, fmt.Errorf("strategy holds %d, reported %d: %w",
			v.asset.BalanceOf(caller), gain+debtPayment, ErrInsufficientBalance)
	}
	if loss > e.TotalDebt {
		return ReportResult{}, fmt.Errorf("loss %d over strategy debt %d: %w", loss, e.TotalDebt, ErrInvalidStrategy)
	}

	now := v.now().Unix()

	// 1. Loss first: it shrinks the ratio and eats locked profit before any
	// profit accounting.
	s.reportLoss(e, loss)

	// 2. Fees on the reported gain, minted as shares at the pre-report price.
	totalFee, strategistFee := s.assessFees(e, gain, now)
	var feeShares uint64
	if totalFee > 0 {
		feeShares = s.convertToShares(totalFee)
		if feeShares > 0 {
			strategistShares := mulDiv(feeShares, strategistFee, totalFee)
			s.balances[caller] += strategistShares
			s.balances[s.feeRecipient] += feeShares - strategistShares
			s.totalShares += feeShares
		}
	}

	// 3. Net profit.
	netProfit := gain - totalFee
	e.TotalGain += netProfit

	// 4. Debt rebalancing. Credit and outstanding debt are mutually
	// exclusive, so a report either advances funds or recalls them.
	credit := s.creditAvailable(e)
	if credit > 0 {
		e.TotalDebt += credit
		s.totalDebt += credit
	}
	outstanding := s.debtOutstanding(e)
	debtPayment = minU64(debtPayment, outstanding)
	if debtPayment > 0 {
		e.TotalDebt -= debtPayment
		s.totalDebt -= debtPayment
		outstanding -= debtPayment
	}

	// Settle the asset flow: the strategy surrenders gain+debtPayment, the
	// vault advances credit; only the difference moves.
	totalAvail := gain + debtPayment
	switch {
	case totalAvail < credit:
		if err := v.asset.Transfer(v.address, caller, credit-totalAvail); err != nil {
			return ReportResult{}, fmt.Errorf("advance to strategy: %w", err)
		}
		s.idleAssets -= credit - totalAvail
	case totalAvail > credit:
		if err := v.asset.Transfer(caller, v.address, totalAvail-credit); err != nil {
			return ReportResult{}, fmt.Errorf("pull from strategy: %w", err)
		}
		s.idleAssets += totalAvail - credit
	}

	// 5. Locked profit: settle the decay accrued so far, then lock the
	// dispensed share of the new net profit. The remainder realizes into
	// price now.
	s.settleLockedProfit()
	s.lockedProfit += mulDiv(netProfit, s.dispenseRateBps, MaxBPS)

	// 6. Timestamps.
	e.LastReport = now
	s.lastReport = now

	if s.emergencyShutdown || e.DebtRatioBps == 0 {
		outstanding = e.TotalDebt
	}
	return ReportResult{
		CreditGiven:      credit,
		DebtPaymentTaken: debtPayment,
		Outstanding:      outstanding,
		FeeShares:        feeShares,
	}, nil
}

// assessFees computes the management fee prorated over seconds since the
// strategy's last report plus both performance fees, capped so fees never
// exceed the gain. Management is served first, then the strategy's share,
// then the vault's.
func (s *state) assessFees(e *StrategyEntry, gain uint64, now int64) (totalFee, strategistFee uint64) {
	duration := now - e.LastReport
	if duration < 0 {
		duration = 0
	}
	managementFee := proratedFee(e.TotalDebt, uint64(duration), s.managementFeeBps)
	strategistFee = mulDiv(gain, e.PerformanceFeeBps, MaxBPS)
	performanceFee := mulDiv(gain, s.performanceFeeBps, MaxBPS)

	managementFee = minU64(managementFee, gain)
	strategistFee = minU64(strategistFee, gain-managementFee)
	performanceFee = minU64(performanceFee, gain-managementFee-strategistFee)
	return managementFee + strategistFee + performanceFee, strategistFee
}

// proratedFee computes debt * seconds * feeBps / MaxBPS / secondsPerYear with
// the same two-stage floor division the fee schedule is calibrated against.
func proratedFee(debt, seconds, feeBps uint64) uint64 {
	p := new(big.Int).SetUint64(debt)
	p.Mul(p, new(big.Int).SetUint64(seconds))
	p.Mul(p, new(big.Int).SetUint64(feeBps))
	p.Quo(p, big.NewInt(MaxBPS))
	p.Quo(p, big.NewInt(secondsPerYear))
	return p.Uint64()
}

// currentLockedProfit is the live locked-profit figure: what was locked at
// the anchor, released linearly over the lock duration and scaled by the
// dispense rate.
func (s *state) currentLockedProfit() uint64 {
	if s.lockedProfit == 0 || s.lockSeconds == 0 {
		return s.lockedProfit
	}
	elapsed := s.nowFn() - s.lockAnchor
	if elapsed <= 0 {
		return s.lockedProfit
	}
	decay := mulDiv2(s.lockedProfit, uint64(elapsed)*s.dispenseRateBps, MaxBPS, s.lockSeconds)
	return s.lockedProfit - minU64(s.lockedProfit, decay)
}

// settleLockedProfit folds the accrued decay into the stored value and moves
// the anchor to now. Must run before anything mutates lockedProfit or the
// dispense rate, or the decay slope would apply retroactively.
func (s *state) settleLockedProfit() {
	s.lockedProfit = s.currentLockedProfit()
	s.lockAnchor = s.nowFn()
}

// LastReport returns the vault-level timestamp of the most recent report.
func (v *Vault) LastReport() (ts int64) {
	v.view(func(s *state) { ts = s.lastReport })
	return
}
