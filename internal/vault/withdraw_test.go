package vault

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWithdrawFromIdle(t *testing.T) {
	f := newFixture(t)
	f.deposit(t, alice, 100_000_000)

	res, err := f.v.Withdraw(alice, 40_000_000, alice, alice, 0)
	require.NoError(t, err)
	require.EqualValues(t, 40_000_000, res.Assets)
	require.EqualValues(t, 40_000_000, res.Shares)
	require.Zero(t, res.Loss)

	require.EqualValues(t, 60_000_000, f.v.BalanceOf(alice))
	require.EqualValues(t, 60_000_000, f.v.IdleAssets())
	require.EqualValues(t, 40_000_000, f.asset.BalanceOf(alice))
}

func TestWithdrawWaterfallOrder(t *testing.T) {
	f := newFixture(t)
	f.deposit(t, alice, 100_000_000)
	f.addStrategy(t, stratA, 3000)
	f.addStrategy(t, stratB, 3000)
	f.harvest(t, stratA, 0, 0, 0)
	f.harvest(t, stratB, 0, 0, 0)

	// 40M comes from idle, 30M drains the first strategy, the last 10M dips
	// into the second.
	res, err := f.v.Withdraw(alice, 80_000_000, alice, alice, 0)
	require.NoError(t, err)
	require.EqualValues(t, 80_000_000, res.Assets)
	require.Zero(t, res.Loss)

	entryA, _ := f.v.Strategies(stratA)
	entryB, _ := f.v.Strategies(stratB)
	require.Zero(t, entryA.TotalDebt)
	require.EqualValues(t, 20_000_000, entryB.TotalDebt)
	require.Zero(t, f.v.IdleAssets())
	require.EqualValues(t, 20_000_000, f.v.TotalDebt())
	require.EqualValues(t, 80_000_000, f.asset.BalanceOf(alice))
}

func TestWithdrawSlippageRollback(t *testing.T) {
	f := newFixture(t)
	f.deposit(t, alice, 100_000_000)
	s := f.addStrategy(t, stratA, 5000)
	f.harvest(t, stratA, 0, 0, 0)

	s.onWithdraw = func(needed uint64) (uint64, uint64, error) {
		loss := uint64(5_000_000)
		withdrawn := needed - loss
		if err := f.asset.Transfer(stratA, vaultID, withdrawn); err != nil {
			return 0, 0, err
		}
		return withdrawn, loss, nil
	}

	before := f.v.Snapshot()
	beforeShares := f.v.BalanceOf(alice)
	beforeStrategy := f.asset.BalanceOf(stratA)
	beforeVault := f.asset.BalanceOf(vaultID)

	_, err := f.v.Withdraw(alice, 80_000_000, alice, alice, 0)
	require.ErrorIs(t, err, ErrSlippageExceeded)

	// The burn, the ledger and the liquidated funds are all rolled back.
	require.Equal(t, before, f.v.Snapshot())
	require.Equal(t, beforeShares, f.v.BalanceOf(alice))
	require.Equal(t, beforeStrategy, f.asset.BalanceOf(stratA))
	require.Equal(t, beforeVault, f.asset.BalanceOf(vaultID))
	require.Zero(t, f.asset.BalanceOf(alice))
}

func TestWithdrawAbsorbsLossWithinTolerance(t *testing.T) {
	f := newFixture(t)
	f.deposit(t, alice, 100_000_000)
	s := f.addStrategy(t, stratA, 5000)
	f.harvest(t, stratA, 0, 0, 0)

	s.onWithdraw = func(needed uint64) (uint64, uint64, error) {
		loss := uint64(5_000_000)
		withdrawn := needed - loss
		if err := f.asset.Transfer(stratA, vaultID, withdrawn); err != nil {
			return 0, 0, err
		}
		return withdrawn, loss, nil
	}

	// 5M is realized loss and another 5M the strategy simply could not
	// produce; both land on the withdrawer.
	res, err := f.v.Withdraw(alice, 80_000_000, alice, alice, MaxBPS)
	require.NoError(t, err)
	require.EqualValues(t, 70_000_000, res.Assets)
	require.EqualValues(t, 80_000_000, res.Shares)
	require.EqualValues(t, 10_000_000, res.Loss)
	require.EqualValues(t, 70_000_000, f.asset.BalanceOf(alice))

	entry, _ := f.v.Strategies(stratA)
	require.EqualValues(t, 20_000_000, entry.TotalDebt)
	require.EqualValues(t, 5_000_000, entry.TotalLoss)
	require.EqualValues(t, 4500, entry.DebtRatioBps)
	require.EqualValues(t, 20_000_000, f.v.TotalAssets())
	require.EqualValues(t, 20_000_000, f.v.TotalSupply())
}

func TestWithdrawShortfallCountsAsLoss(t *testing.T) {
	f := newFixture(t)
	f.deposit(t, alice, 100_000_000)
	s := f.addStrategy(t, stratA, 5000)
	f.harvest(t, stratA, 0, 0, 0)

	// The strategy is fully illiquid; the queue produces nothing beyond the
	// idle balance.
	s.onWithdraw = func(uint64) (uint64, uint64, error) { return 0, 0, nil }

	_, err := f.v.Withdraw(alice, 80_000_000, alice, alice, 0)
	require.ErrorIs(t, err, ErrSlippageExceeded)

	res, err := f.v.Withdraw(alice, 80_000_000, alice, alice, MaxBPS)
	require.NoError(t, err)
	require.EqualValues(t, 50_000_000, res.Assets)
	require.EqualValues(t, 80_000_000, res.Shares)
	require.EqualValues(t, 30_000_000, res.Loss)
}

func TestWithdrawRejectsReentrancy(t *testing.T) {
	f := newFixture(t)
	f.deposit(t, alice, 100_000_000)
	s := f.addStrategy(t, stratA, 5000)
	f.harvest(t, stratA, 0, 0, 0)
	f.asset.Mint(alice, 1)

	s.onWithdraw = func(needed uint64) (uint64, uint64, error) {
		if _, err := f.v.Deposit(alice, 1, alice); err != nil {
			return 0, 0, err
		}
		return 0, 0, nil
	}

	before := f.v.Snapshot()
	_, err := f.v.Withdraw(alice, 80_000_000, alice, alice, MaxBPS)
	require.ErrorIs(t, err, ErrReentrantCall)
	require.Equal(t, before, f.v.Snapshot())
	require.EqualValues(t, 100_000_000, f.v.BalanceOf(alice))
}

func TestRedeemWithAllowance(t *testing.T) {
	f := newFixture(t)
	f.deposit(t, alice, 100_000_000)
	require.NoError(t, f.v.Approve(alice, bob, 30_000_000))

	res, err := f.v.Redeem(bob, 30_000_000, bob, alice, 0)
	require.NoError(t, err)
	require.EqualValues(t, 30_000_000, res.Assets)
	require.EqualValues(t, 30_000_000, f.asset.BalanceOf(bob))
	require.EqualValues(t, 70_000_000, f.v.BalanceOf(alice))
	require.Zero(t, f.v.Allowance(alice, bob))

	_, err = f.v.Redeem(bob, 1, bob, alice, 0)
	require.ErrorIs(t, err, ErrInsufficientAllowance)
}

func TestWithdrawViews(t *testing.T) {
	f := newFixture(t)
	f.deposit(t, alice, 100_000_000)
	f.addStrategy(t, stratA, 5000)
	f.harvest(t, stratA, 0, 0, 0)

	require.EqualValues(t, 50_000_000, f.v.MaxWithdraw(alice))
	require.EqualValues(t, 50_000_000, f.v.MaxRedeem(alice))
	require.EqualValues(t, 40_000_000, f.v.PreviewWithdraw(40_000_000))
	require.Zero(t, f.v.PreviewWithdraw(60_000_000))
	require.EqualValues(t, 40_000_000, f.v.PreviewRedeem(40_000_000))
	require.Zero(t, f.v.PreviewRedeem(60_000_000))
	require.EqualValues(t, 100_000_000, f.v.MaxAvailableShares())

	require.NoError(t, f.v.SetEmergencyShutdown(gov, true))
	require.Zero(t, f.v.MaxWithdraw(alice))
	require.Zero(t, f.v.MaxRedeem(alice))
	require.Zero(t, f.v.PreviewWithdraw(1))
	require.Zero(t, f.v.PreviewRedeem(1))
	require.EqualValues(t, 100_000_000, f.v.MaxAvailableShares())
}
