// Package schedule holds the worker's periodic tasks: harvesting every
// active strategy and recording accounting snapshots.
package schedule

import (
	"sort"

	"vaultcontrol/internal/handlers"

	logrus "github.com/sirupsen/logrus"
)

// HarvestAll harvests every registered strategy in withdrawal-queue order.
// Strategies that fail keep their scripted data so the next tick retries.
func HarvestAll(app *handlers.App) {
	queue := app.Vault.WithdrawalQueue()
	if len(queue) == 0 {
		// Revoked strategies leave the queue but may still owe a report.
		queue = app.SimulatedAddresses()
		sort.Strings(queue)
	}

	for _, addr := range queue {
		adapter, ok := app.Simulated(addr)
		if !ok {
			continue
		}
		res, err := adapter.Harvest()
		if err != nil {
			logrus.Errorf("harvest failed for strategy %s: %v", addr, err)
			continue
		}
		logrus.WithFields(logrus.Fields{
			"strategy":     addr,
			"credit":       res.CreditGiven,
			"debt_payment": res.DebtPaymentTaken,
			"outstanding":  res.Outstanding,
			"fee_shares":   res.FeeShares,
		}).Info("harvest complete")
	}
}

// HarvestOne harvests a single strategy by address, for queue consumers.
func HarvestOne(app *handlers.App, address string) error {
	adapter, ok := app.Simulated(address)
	if !ok {
		logrus.Warnf("harvest requested for unknown strategy %s", address)
		return nil
	}
	_, err := adapter.Harvest()
	return err
}
