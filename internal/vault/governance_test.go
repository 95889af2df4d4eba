package vault

import (
	"testing"
	"time"

	"vaultcontrol/internal/token"

	"github.com/stretchr/testify/require"
)

func TestGovernanceHandover(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.v.SetGovernance(gov, bob))

	// Nomination alone grants nothing.
	info := f.v.Snapshot()
	require.Equal(t, gov, info.Governance)
	require.Equal(t, bob, info.PendingGovernance)
	require.ErrorIs(t, f.v.SetDepositLimit(bob, 1), ErrUnauthorized)

	require.ErrorIs(t, f.v.AcceptGovernance(alice), ErrUnauthorized)
	require.NoError(t, f.v.AcceptGovernance(bob))

	info = f.v.Snapshot()
	require.Equal(t, bob, info.Governance)
	require.Empty(t, info.PendingGovernance)
	require.NoError(t, f.v.SetDepositLimit(bob, 1))
	require.ErrorIs(t, f.v.SetDepositLimit(gov, 1), ErrUnauthorized)
	require.ErrorIs(t, f.v.AcceptGovernance(bob), ErrUnauthorized)
}

func TestGuardianAndShutdown(t *testing.T) {
	f := newFixture(t)
	require.ErrorIs(t, f.v.SetGuardian(alice, alice), ErrUnauthorized)
	require.NoError(t, f.v.SetGuardian(guard, bob))

	// The new guardian may engage the shutdown but only governance lifts it.
	require.NoError(t, f.v.SetEmergencyShutdown(bob, true))
	require.True(t, f.v.Snapshot().EmergencyShutdown)
	require.ErrorIs(t, f.v.SetEmergencyShutdown(bob, false), ErrUnauthorized)
	require.NoError(t, f.v.SetEmergencyShutdown(gov, false))
	require.False(t, f.v.Snapshot().EmergencyShutdown)
}

func TestParameterSetters(t *testing.T) {
	f := newFixture(t)

	require.ErrorIs(t, f.v.SetManagementFee(gov, MaxBPS+1), ErrRatioExceeded)
	require.ErrorIs(t, f.v.SetPerformanceFee(gov, MaxBPS+1), ErrRatioExceeded)
	require.ErrorIs(t, f.v.SetDispenseRate(gov, MaxBPS+1), ErrRatioExceeded)

	require.NoError(t, f.v.SetManagementFee(gov, 300))
	require.NoError(t, f.v.SetPerformanceFee(gov, 1500))
	require.NoError(t, f.v.SetDispenseRate(gov, 8000))
	require.NoError(t, f.v.SetDepositLimit(gov, 42))
	require.NoError(t, f.v.SetFeeRecipient(gov, bob))
	require.NoError(t, f.v.SetManagement(gov, alice))

	info := f.v.Snapshot()
	require.EqualValues(t, 300, info.ManagementFeeBps)
	require.EqualValues(t, 1500, info.PerformanceFeeBps)
	require.EqualValues(t, 8000, info.DispenseRateBps)
	require.EqualValues(t, 42, info.DepositLimit)
	require.Equal(t, bob, info.FeeRecipient)
	require.Equal(t, alice, info.Management)

	for _, err := range []error{
		f.v.SetManagementFee(alice, 0),
		f.v.SetPerformanceFee(alice, 0),
		f.v.SetDispenseRate(alice, 0),
		f.v.SetDepositLimit(alice, 0),
		f.v.SetFeeRecipient(alice, alice),
		f.v.SetManagement(alice, alice),
		f.v.SetGovernance(alice, alice),
	} {
		require.ErrorIs(t, err, ErrUnauthorized)
	}
}

func TestSetDispenseRateSettlesLock(t *testing.T) {
	f := newFixture(t)
	f.deposit(t, alice, 100_000_000)
	f.addStrategy(t, stratA, 5000)
	f.harvest(t, stratA, 0, 0, 0)
	f.harvest(t, stratA, 10_000_000, 0, 0)
	require.EqualValues(t, 9_000_000, f.v.LockedProfit())

	// Half the lock duration dispenses half; freezing the rate afterwards
	// must not reapply the old slope to the already elapsed time.
	f.clock.Advance(3 * time.Hour)
	require.EqualValues(t, 4_500_000, f.v.LockedProfit())
	require.NoError(t, f.v.SetDispenseRate(gov, 0))
	f.clock.Advance(3 * time.Hour)
	require.EqualValues(t, 4_500_000, f.v.LockedProfit())
}

func TestSweep(t *testing.T) {
	f := newFixture(t)

	t.Run("managed asset is protected", func(t *testing.T) {
		require.ErrorIs(t, f.v.Sweep(gov, f.asset, 1), ErrProtectedToken)
		require.ErrorIs(t, f.v.Sweep(gov, nil, 1), ErrProtectedToken)
	})

	t.Run("stray token moves to governance", func(t *testing.T) {
		stray := token.New("asset-stray")
		stray.Mint(vaultID, 500)

		require.ErrorIs(t, f.v.Sweep(alice, stray, 500), ErrUnauthorized)
		require.NoError(t, f.v.Sweep(gov, stray, 500))
		require.EqualValues(t, 500, stray.BalanceOf(gov))
		require.Zero(t, stray.BalanceOf(vaultID))
	})
}
