package vault

import "errors"

// Sentinel errors for every failure class the engine can produce. Callers
// match with errors.Is; every operation either fully applies or returns one
// of these with state untouched.
var (
	// ErrUnauthorized means the caller does not hold the capability the
	// operation requires.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrLimitExceeded means a deposit or mint would push managed assets
	// over the configured deposit limit, or the vault is shut down.
	ErrLimitExceeded = errors.New("deposit limit exceeded")

	// ErrRatioExceeded means an allocation ratio sum or a min/max harvest
	// bound would be violated.
	ErrRatioExceeded = errors.New("allocation ratio exceeded")

	// ErrInvalidStrategy covers strategy identity mismatch, inactive or
	// duplicate strategies, and full or empty queue targets.
	ErrInvalidStrategy = errors.New("invalid strategy")

	// ErrInsufficientBalance means a share or asset balance is short.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInsufficientAllowance means the spender's remaining approval does
	// not cover the requested amount.
	ErrInsufficientAllowance = errors.New("insufficient allowance")

	// ErrSlippageExceeded means the realized withdrawal loss is over the
	// caller's declared tolerance. The whole withdrawal is rolled back.
	ErrSlippageExceeded = errors.New("slippage exceeded")

	// ErrReentrantCall means the vault was entered while another mutating
	// operation was in flight, e.g. a strategy calling back into the vault
	// during its own withdraw callback.
	ErrReentrantCall = errors.New("reentrant call rejected")

	// ErrProtectedToken means sweep was asked to rescue the vault's own
	// managed asset.
	ErrProtectedToken = errors.New("cannot sweep managed asset")
)
