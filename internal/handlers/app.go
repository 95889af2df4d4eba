// Package handlers exposes the vault engine over HTTP. Each handler binds
// the request, calls the engine, persists/broadcasts the outcome and maps
// engine errors to HTTP statuses.
package handlers

import (
	"errors"
	"net/http"
	"sync"

	"vaultcontrol/internal/models"
	"vaultcontrol/internal/strategy"
	"vaultcontrol/internal/token"
	"vaultcontrol/internal/vault"
	dbconfig "vaultcontrol/pkg/config"
	"vaultcontrol/pkg/stream"

	logrus "github.com/sirupsen/logrus"
)

// App holds the process-wide engine instance and its side channels.
type App struct {
	Vault     *vault.Vault
	Asset     *token.MemToken
	Publisher *dbconfig.Publisher
	Hub       *stream.Hub

	mu         sync.RWMutex
	strategies map[string]*strategy.Simulated
	tokens     map[string]*token.MemToken
}

var app *App

// Init installs the engine instance the handlers serve. Publisher and Hub
// may be nil; persistence and fan-out then degrade to no-ops.
func Init(v *vault.Vault, asset *token.MemToken, pub *dbconfig.Publisher, hub *stream.Hub) *App {
	app = &App{
		Vault:      v,
		Asset:      asset,
		Publisher:  pub,
		Hub:        hub,
		strategies: make(map[string]*strategy.Simulated),
		tokens:     make(map[string]*token.MemToken),
	}
	return app
}

// Current returns the installed App, for the worker and schedule tasks.
func Current() *App { return app }

// RegisterSimulated remembers a simulated adapter so harvest endpoints and
// the worker can reach it by address.
func (a *App) RegisterSimulated(s *strategy.Simulated) {
	a.mu.Lock()
	a.strategies[s.Address()] = s
	a.mu.Unlock()
}

// Simulated looks up a registered adapter.
func (a *App) Simulated(address string) (*strategy.Simulated, bool) {
	a.mu.RLock()
	s, ok := a.strategies[address]
	a.mu.RUnlock()
	return s, ok
}

// Token returns the ledger for the given token address, creating an empty
// one for unknown addresses. The vault's own asset maps to Asset.
func (a *App) Token(address string) *token.MemToken {
	if address == a.Asset.Address() {
		return a.Asset
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	t, ok := a.tokens[address]
	if !ok {
		t = token.New(address)
		a.tokens[address] = t
	}
	return t
}

// SimulatedAddresses lists registered adapters, for the harvest worker.
func (a *App) SimulatedAddresses() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]string, 0, len(a.strategies))
	for addr := range a.strategies {
		out = append(out, addr)
	}
	return out
}

// statusFor maps engine sentinel errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, vault.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, vault.ErrInvalidStrategy):
		return http.StatusNotFound
	case errors.Is(err, vault.ErrLimitExceeded),
		errors.Is(err, vault.ErrRatioExceeded),
		errors.Is(err, vault.ErrInsufficientBalance),
		errors.Is(err, vault.ErrInsufficientAllowance),
		errors.Is(err, vault.ErrSlippageExceeded),
		errors.Is(err, vault.ErrProtectedToken):
		return http.StatusUnprocessableEntity
	case errors.Is(err, vault.ErrReentrantCall):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// persist writes a record when the database is configured. Failures are
// logged, never surfaced: the engine state is the source of truth.
func persist(record interface{}) {
	if dbconfig.DB == nil {
		return
	}
	if err := dbconfig.DB.Create(record).Error; err != nil {
		logrus.Errorf("failed to persist %T: %v", record, err)
	}
}

// emit publishes the event to RabbitMQ and the websocket hub, best effort.
func emit(event dbconfig.VaultEvent) {
	if app.Publisher != nil {
		if err := app.Publisher.Publish(dbconfig.QueueVaultEvents, event); err != nil {
			logrus.Errorf("failed to publish vault event: %v", err)
		}
	}
	if app.Hub != nil {
		app.Hub.Broadcast(event)
	}
}

// syncStrategyRecord upserts the persisted mirror of a strategy entry.
func syncStrategyRecord(strategyAddr string) {
	if dbconfig.DB == nil {
		return
	}
	entry, ok := app.Vault.Strategies(strategyAddr)
	if !ok {
		return
	}
	record := models.StrategyRecord{
		VaultAddress:      app.Vault.Address(),
		StrategyAddress:   strategyAddr,
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
	var existing models.StrategyRecord
	err := dbconfig.DB.Where("vault_address = ? AND strategy_address = ?",
		record.VaultAddress, record.StrategyAddress).First(&existing).Error
	if err == nil {
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
		if err := dbconfig.DB.Save(&record).Error; err != nil {
			logrus.Errorf("failed to update strategy record: %v", err)
		}
		return
	}
	if err := dbconfig.DB.Create(&record).Error; err != nil {
		logrus.Errorf("failed to create strategy record: %v", err)
	}
}
