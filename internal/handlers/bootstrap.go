package handlers

import (
	"os"
	"strconv"

	"vaultcontrol/internal/token"
	"vaultcontrol/internal/vault"
	dbconfig "vaultcontrol/pkg/config"
	"vaultcontrol/pkg/stream"

	logrus "github.com/sirupsen/logrus"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envUint(key string, fallback uint64) uint64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		logrus.Warnf("invalid %s=%q, using %d", key, raw, fallback)
		return fallback
	}
	return n
}

// BootstrapFromEnv builds the engine instance from environment configuration
// and installs it for the handlers. Publisher and hub are optional.
func BootstrapFromEnv(pub *dbconfig.Publisher, hub *stream.Hub) (*App, error) {
	asset := token.New(envOr("ASSET_ADDRESS", "asset-usd"))

	v, err := vault.New(vault.Config{
		Address:           envOr("VAULT_ADDRESS", "vault-main"),
		Asset:             asset,
		Governance:        envOr("VAULT_GOVERNANCE", "governance"),
		Management:        envOr("VAULT_MANAGEMENT", "management"),
		Guardian:          envOr("VAULT_GUARDIAN", "guardian"),
		FeeRecipient:      envOr("VAULT_FEE_RECIPIENT", "rewards"),
		DepositLimit:      envUint("VAULT_DEPOSIT_LIMIT", ^uint64(0)),
		PerformanceFeeBps: envUint("VAULT_PERFORMANCE_FEE_BPS", 1000),
		ManagementFeeBps:  envUint("VAULT_MANAGEMENT_FEE_BPS", 200),
		DispenseRateBps:   envUint("VAULT_DISPENSE_RATE_BPS", 10000),
	})
	if err != nil {
		return nil, err
	}

	return Init(v, asset, pub, hub), nil
}
