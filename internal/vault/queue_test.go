package vault

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQueueOrdering(t *testing.T) {
	f := newFixture(t)
	f.addStrategy(t, stratA, 1000)
	f.addStrategy(t, stratB, 1000)
	f.addStrategy(t, stratC, 1000)
	require.Equal(t, []string{stratA, stratB, stratC}, f.v.WithdrawalQueue())
	require.Equal(t, stratB, f.v.WithdrawalQueueAt(1))
	require.Equal(t, "", f.v.WithdrawalQueueAt(5))
	require.Equal(t, "", f.v.WithdrawalQueueAt(-1))

	t.Run("remove left-shifts", func(t *testing.T) {
		require.NoError(t, f.v.RemoveStrategyFromQueue(gov, stratB))
		require.Equal(t, []string{stratA, stratC}, f.v.WithdrawalQueue())
	})

	t.Run("re-add appends", func(t *testing.T) {
		require.NoError(t, f.v.AddStrategyToQueue(mgmt, stratB))
		require.Equal(t, []string{stratA, stratC, stratB}, f.v.WithdrawalQueue())
	})

	t.Run("insert moves an already queued strategy", func(t *testing.T) {
		require.NoError(t, f.v.InsertStrategyToQueue(gov, stratB, 0))
		require.Equal(t, []string{stratB, stratA, stratC}, f.v.WithdrawalQueue())

		require.NoError(t, f.v.InsertStrategyToQueue(gov, stratC, 1))
		require.Equal(t, []string{stratB, stratC, stratA}, f.v.WithdrawalQueue())
	})

	t.Run("insert index clamps", func(t *testing.T) {
		require.NoError(t, f.v.InsertStrategyToQueue(gov, stratB, 99))
		require.Equal(t, []string{stratC, stratA, stratB}, f.v.WithdrawalQueue())

		require.NoError(t, f.v.InsertStrategyToQueue(gov, stratB, -5))
		require.Equal(t, []string{stratB, stratC, stratA}, f.v.WithdrawalQueue())
	})
}

func TestQueueErrors(t *testing.T) {
	f := newFixture(t)
	f.addStrategy(t, stratA, 1000)

	t.Run("duplicate add", func(t *testing.T) {
		err := f.v.AddStrategyToQueue(gov, stratA)
		require.ErrorIs(t, err, ErrInvalidStrategy)
	})

	t.Run("remove unqueued", func(t *testing.T) {
		err := f.v.RemoveStrategyFromQueue(gov, stratB)
		require.ErrorIs(t, err, ErrInvalidStrategy)
	})

	t.Run("inactive strategy", func(t *testing.T) {
		err := f.v.InsertStrategyToQueue(gov, stratB, 0)
		require.ErrorIs(t, err, ErrInvalidStrategy)
	})

	t.Run("unauthorized caller", func(t *testing.T) {
		require.ErrorIs(t, f.v.AddStrategyToQueue(alice, stratA), ErrUnauthorized)
		require.ErrorIs(t, f.v.RemoveStrategyFromQueue(alice, stratA), ErrUnauthorized)
		require.ErrorIs(t, f.v.InsertStrategyToQueue(alice, stratA, 0), ErrUnauthorized)
	})
}
