package vault

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDepositBootstrapsOneToOne(t *testing.T) {
	f := newFixture(t)

	shares := f.deposit(t, alice, 100_000_000)
	assert.EqualValues(t, 100_000_000, shares)
	assert.EqualValues(t, 100_000_000, f.v.TotalSupply())
	assert.EqualValues(t, 100_000_000, f.v.TotalAssets())
	assert.EqualValues(t, 100_000_000, f.v.IdleAssets())
	assert.EqualValues(t, 100_000_000, f.v.BalanceOf(alice))
	assert.EqualValues(t, 100_000_000, f.asset.BalanceOf(vaultID))
	assert.EqualValues(t, 0, f.asset.BalanceOf(alice))
	assert.EqualValues(t, 1_000_000, f.v.PricePerShare())
}

func TestDepositWithoutAssetBalanceFails(t *testing.T) {
	f := newFixture(t)

	_, err := f.v.Deposit(alice, 1_000, alice)
	require.Error(t, err)
	assert.EqualValues(t, 0, f.v.TotalSupply())
	assert.EqualValues(t, 0, f.v.BalanceOf(alice))
}

func TestDepositLimit(t *testing.T) {
	f := newFixture(t, func(c *Config) { c.DepositLimit = 50_000_000 })

	f.deposit(t, alice, 30_000_000)

	f.asset.Mint(bob, 30_000_000)
	_, err := f.v.Deposit(bob, 30_000_000, bob)
	require.ErrorIs(t, err, ErrLimitExceeded)

	// Exactly up to the limit is fine.
	_, err = f.v.Deposit(bob, 20_000_000, bob)
	require.NoError(t, err)

	assert.EqualValues(t, 0, f.v.MaxDeposit(bob))
	assert.EqualValues(t, 0, f.v.PreviewDeposit(1))
}

func TestDepositRejectedDuringShutdown(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.v.SetEmergencyShutdown(gov, true))

	f.asset.Mint(alice, 1_000)
	_, err := f.v.Deposit(alice, 1_000, alice)
	require.ErrorIs(t, err, ErrLimitExceeded)
	assert.EqualValues(t, 0, f.v.MaxDeposit(alice))
	assert.EqualValues(t, 0, f.v.MaxMint(alice))
}

func TestMintMatchesDepositAtBootstrap(t *testing.T) {
	f := newFixture(t)

	f.asset.Mint(alice, 5_000_000)
	assets, err := f.v.Mint(alice, 5_000_000, alice)
	require.NoError(t, err)
	assert.EqualValues(t, 5_000_000, assets)
	assert.EqualValues(t, 5_000_000, f.v.BalanceOf(alice))
}

func TestSharePriceAfterRealizedGain(t *testing.T) {
	f := newFixture(t, func(c *Config) { c.PerformanceFeeBps = 0 })
	f.deposit(t, alice, 100_000_000)
	f.addStrategy(t, stratA, 5000)
	f.harvest(t, stratA, 0, 0, 0)

	// Gain realizes immediately once the lock horizon passes.
	f.harvest(t, stratA, 10_000_000, 0, 0)
	f.clock.Advance(7 * time.Hour)

	assert.EqualValues(t, 110_000_000, f.v.TotalAssets())
	assert.EqualValues(t, 1_100_000, f.v.PricePerShare())

	// A second depositor now pays the higher price.
	f.asset.Mint(bob, 11_000_000)
	shares, err := f.v.Deposit(bob, 11_000_000, bob)
	require.NoError(t, err)
	assert.EqualValues(t, 10_000_000, shares)
}

func TestConvertRoundTripFloors(t *testing.T) {
	f := newFixture(t, func(c *Config) { c.PerformanceFeeBps = 0 })
	f.deposit(t, alice, 3_000_000)
	f.addStrategy(t, stratA, 5000)
	f.harvest(t, stratA, 0, 0, 0)
	f.harvest(t, stratA, 1_000_000, 0, 0)
	f.clock.Advance(7 * time.Hour)

	// 4/3 price: conversions floor, so a round trip never gains value.
	for _, assets := range []uint64{1, 2, 999, 1_000_001} {
		shares := f.v.ConvertToShares(assets)
		back := f.v.ConvertToAssets(shares)
		assert.LessOrEqual(t, back, assets)
	}
}

func TestTransferAndApprove(t *testing.T) {
	f := newFixture(t)
	f.deposit(t, alice, 1_000_000)

	t.Run("transfer moves shares", func(t *testing.T) {
		require.NoError(t, f.v.Transfer(alice, bob, 400_000))
		assert.EqualValues(t, 600_000, f.v.BalanceOf(alice))
		assert.EqualValues(t, 400_000, f.v.BalanceOf(bob))
	})

	t.Run("transfer beyond balance fails", func(t *testing.T) {
		err := f.v.Transfer(alice, bob, 700_000)
		require.ErrorIs(t, err, ErrInsufficientBalance)
	})

	t.Run("transfer-from needs allowance", func(t *testing.T) {
		err := f.v.TransferFrom(bob, alice, bob, 100_000)
		require.ErrorIs(t, err, ErrInsufficientAllowance)

		require.NoError(t, f.v.Approve(alice, bob, 150_000))
		require.NoError(t, f.v.TransferFrom(bob, alice, bob, 100_000))
		assert.EqualValues(t, 50_000, f.v.Allowance(alice, bob))

		err = f.v.TransferFrom(bob, alice, bob, 100_000)
		require.ErrorIs(t, err, ErrInsufficientAllowance)
	})

	t.Run("owner spends without allowance", func(t *testing.T) {
		require.NoError(t, f.v.TransferFrom(alice, alice, bob, 100_000))
	})

	t.Run("unlimited allowance never decrements", func(t *testing.T) {
		require.NoError(t, f.v.Approve(alice, bob, UnlimitedAllowance))
		require.NoError(t, f.v.TransferFrom(bob, alice, bob, 100_000))
		assert.EqualValues(t, UnlimitedAllowance, f.v.Allowance(alice, bob))
	})
}
