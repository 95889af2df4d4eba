package schedule

import (
	"vaultcontrol/internal/handlers"
	"vaultcontrol/internal/models"
	dbconfig "vaultcontrol/pkg/config"

	logrus "github.com/sirupsen/logrus"
)

// RecordSnapshot persists the current vault accounting plus one record per
// queued strategy.
func RecordSnapshot(app *handlers.App) error {
	if dbconfig.DB == nil {
		return nil
	}

	info := app.Vault.Snapshot()
	snapshot := models.VaultSnapshot{
		VaultAddress:  info.Address,
		TotalSupply:   info.TotalShares,
		TotalAssets:   info.TotalAssets,
		TotalDebt:     info.TotalDebt,
		IdleAssets:    info.IdleAssets,
		LockedProfit:  info.LockedProfit,
		PricePerShare: info.PricePerShare,
		DebtRatioBps:  info.DebtRatioBps,
		Shutdown:      info.EmergencyShutdown,
	}
	if err := dbconfig.DB.Create(&snapshot).Error; err != nil {
		return err
	}

	for _, addr := range app.Vault.WithdrawalQueue() {
		entry, ok := app.Vault.Strategies(addr)
		if !ok {
			continue
		}
		record := models.StrategyRecord{
			VaultAddress:      info.Address,
			StrategyAddress:   addr,
			DebtRatioBps:      entry.DebtRatioBps,
			MinDebtPerHarvest: entry.MinDebtPerHarvest,
			MaxDebtPerHarvest: entry.MaxDebtPerHarvest,
			PerformanceFeeBps: entry.PerformanceFeeBps,
			TotalDebt:         entry.TotalDebt,
			TotalGain:         entry.TotalGain,
			TotalLoss:         entry.TotalLoss,
			Activation:        entry.Activation,
			LastReport:        entry.LastReport,
		}
		if err := dbconfig.DB.Create(&record).Error; err != nil {
			logrus.Errorf("failed to persist strategy record for %s: %v", addr, err)
		}
	}

	return nil
}
