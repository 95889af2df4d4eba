package vault

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestReportCreditAdvance(t *testing.T) {
	f := newFixture(t)
	f.deposit(t, alice, 1_000_000_000)
	f.addStrategy(t, stratA, 3000)

	res := f.harvest(t, stratA, 0, 0, 0)
	require.EqualValues(t, 300_000_000, res.CreditGiven)
	require.Zero(t, res.Outstanding)
	require.Zero(t, res.FeeShares)

	require.EqualValues(t, 300_000_000, f.asset.BalanceOf(stratA))
	require.EqualValues(t, 700_000_000, f.v.IdleAssets())
	require.EqualValues(t, 300_000_000, f.v.TotalDebt())

	entry, _ := f.v.Strategies(stratA)
	require.EqualValues(t, 300_000_000, entry.TotalDebt)
	require.Equal(t, f.clock.Now().Unix(), entry.LastReport)
}

func TestReportPerformanceFees(t *testing.T) {
	f := newFixture(t)
	f.deposit(t, alice, 100_000_000)
	f.addStrategy(t, stratA, 5000)
	f.harvest(t, stratA, 0, 0, 0)
	require.NoError(t, f.v.UpdateStrategyPerformanceFee(gov, stratA, 500))

	// 10% vault fee plus 5% strategist fee on a 10M gain, minted as shares
	// at the pre-report price of 1.0.
	res := f.harvest(t, stratA, 10_000_000, 0, 0)
	require.EqualValues(t, 1_500_000, res.FeeShares)
	require.EqualValues(t, 500_000, f.v.BalanceOf(stratA))
	require.EqualValues(t, 1_000_000, f.v.BalanceOf(rewards))
	require.EqualValues(t, 101_500_000, f.v.TotalSupply())

	entry, _ := f.v.Strategies(stratA)
	require.EqualValues(t, 8_500_000, entry.TotalGain)
	require.EqualValues(t, 8_500_000, f.v.LockedProfit())
}

func TestReportFeeCapOrder(t *testing.T) {
	f := newFixture(t, func(cfg *Config) { cfg.PerformanceFeeBps = 9600 })
	f.deposit(t, alice, 100_000_000)
	f.addStrategy(t, stratA, 5000)
	f.harvest(t, stratA, 0, 0, 0)
	require.NoError(t, f.v.UpdateStrategyPerformanceFee(gov, stratA, 500))

	// The strategist's 5% is served before the vault's 96%, so the vault fee
	// is clipped to what remains of the gain and nothing nets to profit.
	res := f.harvest(t, stratA, 10_000_000, 0, 0)
	require.EqualValues(t, 10_000_000, res.FeeShares)
	require.EqualValues(t, 500_000, f.v.BalanceOf(stratA))
	require.EqualValues(t, 9_500_000, f.v.BalanceOf(rewards))

	entry, _ := f.v.Strategies(stratA)
	require.Zero(t, entry.TotalGain)
	require.Zero(t, f.v.LockedProfit())
}

func TestReportManagementFeeProration(t *testing.T) {
	f := newFixture(t, func(cfg *Config) { cfg.ManagementFeeBps = 200 })
	f.deposit(t, alice, 100_000_000)
	f.addStrategy(t, stratA, 5000)
	f.harvest(t, stratA, 0, 0, 0)

	// 2% per year on 50M debt over one hour, floored, plus the 10% vault
	// performance fee on the 1M gain.
	f.clock.Advance(time.Hour)
	res := f.harvest(t, stratA, 1_000_000, 0, 0)
	require.EqualValues(t, 100_114, res.FeeShares)
	require.EqualValues(t, 100_114, f.v.BalanceOf(rewards))
	require.Zero(t, f.v.BalanceOf(stratA))
}

func TestReportLockedProfitDispenseRate(t *testing.T) {
	f := newFixture(t, func(cfg *Config) { cfg.DispenseRateBps = 6000 })
	f.deposit(t, alice, 100_000_000)
	f.addStrategy(t, stratA, 5000)
	f.harvest(t, stratA, 0, 0, 0)

	// Net profit is 9M after the 10% fee; 60% of it locks, the rest realizes
	// into price immediately.
	f.harvest(t, stratA, 10_000_000, 0, 0)
	require.EqualValues(t, 5_400_000, f.v.LockedProfit())
	require.EqualValues(t, 104_600_000, f.v.TotalAssets())

	// The lock releases at 60% speed too: 30% dispensed after half the lock
	// duration, fully dispensed only after 10 hours.
	f.clock.Advance(3 * time.Hour)
	require.EqualValues(t, 3_780_000, f.v.LockedProfit())

	f.clock.Advance(7 * time.Hour)
	require.Zero(t, f.v.LockedProfit())
	require.EqualValues(t, 110_000_000, f.v.TotalAssets())
}

func TestReportLossShrinksRatio(t *testing.T) {
	f := newFixture(t)
	f.deposit(t, alice, 1_212_000_000)
	f.addStrategy(t, stratA, 2500)

	res := f.harvest(t, stratA, 0, 0, 0)
	require.EqualValues(t, 303_000_000, res.CreditGiven)

	res = f.harvest(t, stratA, 0, 10_000_000, 0)
	require.Zero(t, res.CreditGiven)
	require.EqualValues(t, 2_356_400, res.Outstanding)

	entry, _ := f.v.Strategies(stratA)
	require.EqualValues(t, 2418, entry.DebtRatioBps)
	require.EqualValues(t, 2418, f.v.DebtRatio())
	require.EqualValues(t, 10_000_000, entry.TotalLoss)
	require.EqualValues(t, 293_000_000, entry.TotalDebt)
	require.EqualValues(t, 293_000_000, f.v.TotalDebt())
}

func TestReportDebtPaymentClamped(t *testing.T) {
	f := newFixture(t)
	f.deposit(t, alice, 100_000_000)
	f.addStrategy(t, stratA, 5000)
	f.harvest(t, stratA, 0, 0, 0)
	require.NoError(t, f.v.UpdateStrategyDebtRatio(gov, stratA, 2500))

	// 25M is outstanding; of the 30M offered only that much is taken.
	res := f.harvest(t, stratA, 0, 0, 30_000_000)
	require.EqualValues(t, 25_000_000, res.DebtPaymentTaken)
	require.Zero(t, res.Outstanding)
	require.EqualValues(t, 75_000_000, f.v.IdleAssets())

	entry, _ := f.v.Strategies(stratA)
	require.EqualValues(t, 25_000_000, entry.TotalDebt)
}

func TestReportRecallsFullDebt(t *testing.T) {
	t.Run("under shutdown", func(t *testing.T) {
		f := newFixture(t)
		f.deposit(t, alice, 100_000_000)
		f.addStrategy(t, stratA, 5000)
		f.harvest(t, stratA, 0, 0, 0)

		require.NoError(t, f.v.SetEmergencyShutdown(guard, true))
		res := f.harvest(t, stratA, 0, 0, 0)
		require.Zero(t, res.CreditGiven)
		require.EqualValues(t, 50_000_000, res.Outstanding)
	})

	t.Run("with a zeroed ratio", func(t *testing.T) {
		f := newFixture(t)
		f.deposit(t, alice, 100_000_000)
		f.addStrategy(t, stratA, 5000)
		f.harvest(t, stratA, 0, 0, 0)

		require.NoError(t, f.v.UpdateStrategyDebtRatio(gov, stratA, 0))
		res := f.harvest(t, stratA, 0, 0, 0)
		require.EqualValues(t, 50_000_000, res.Outstanding)
	})
}

func TestReportValidation(t *testing.T) {
	f := newFixture(t)
	f.deposit(t, alice, 100_000_000)
	f.addStrategy(t, stratA, 5000)
	f.harvest(t, stratA, 0, 0, 0)

	t.Run("unknown caller", func(t *testing.T) {
		_, err := f.v.Report(alice, 0, 0, 0)
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("gain not backed by balance", func(t *testing.T) {
		_, err := f.v.Report(stratA, 60_000_000, 0, 0)
		require.ErrorIs(t, err, ErrInsufficientBalance)
	})

	t.Run("loss over strategy debt", func(t *testing.T) {
		_, err := f.v.Report(stratA, 0, 60_000_000, 0)
		require.ErrorIs(t, err, ErrInvalidStrategy)
	})

	t.Run("revoked strategy", func(t *testing.T) {
		f := newFixture(t)
		f.addStrategy(t, stratA, 0)
		require.NoError(t, f.v.RevokeStrategy(gov, stratA))
		_, err := f.v.Report(stratA, 0, 0, 0)
		require.ErrorIs(t, err, ErrInvalidStrategy)
	})
}
