package handlers

import (
	"net/http"

	"vaultcontrol/internal/strategy"
	dbconfig "vaultcontrol/pkg/config"

	"github.com/gin-gonic/gin"
)

// AddStrategyRequest registers a new simulated strategy with the vault.
type AddStrategyRequest struct {
	Caller            string `json:"caller" binding:"required"`
	Address           string `json:"address" binding:"required"`
	DebtRatioBps      uint64 `json:"debt_ratio_bps"`
	MinDebtPerHarvest uint64 `json:"min_debt_per_harvest"`
	MaxDebtPerHarvest uint64 `json:"max_debt_per_harvest"`
	PerformanceFeeBps uint64 `json:"performance_fee_bps"`
}

// StrategyParamRequest updates a single strategy parameter.
type StrategyParamRequest struct {
	Caller string `json:"caller" binding:"required"`
	Value  uint64 `json:"value"`
}

// QueueRequest mutates the withdrawal queue.
type QueueRequest struct {
	Caller string `json:"caller" binding:"required"`
	Index  *int   `json:"index"`
}

// SimulateRequest scripts the next harvest or liquidation of an adapter.
type SimulateRequest struct {
	Earn         uint64  `json:"earn"`
	Burn         uint64  `json:"burn"`
	Gain         *uint64 `json:"gain"`
	Loss         *uint64 `json:"loss"`
	LiquidAmount *uint64 `json:"liquid_amount"`
	LiquidLoss   *uint64 `json:"liquid_loss"`
}

// AddStrategy registers and queues a new strategy
func AddStrategy(c *gin.Context) {
	var request AddStrategyRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	adapter, ok := app.Simulated(request.Address)
	if !ok {
		adapter = strategy.NewSimulated(request.Address, app.Vault, app.Asset)
	}

	err := app.Vault.AddStrategy(request.Caller, adapter,
		request.DebtRatioBps, request.MinDebtPerHarvest, request.MaxDebtPerHarvest, request.PerformanceFeeBps)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	app.RegisterSimulated(adapter)
	syncStrategyRecord(request.Address)
	emit(dbconfig.VaultEvent{
		Kind:            "strategy_added",
		VaultAddress:    app.Vault.Address(),
		StrategyAddress: request.Address,
	})
	c.JSON(http.StatusCreated, gin.H{"status": "ok"})
}

// ListStrategies returns every registered strategy entry in queue order
func ListStrategies(c *gin.Context) {
	queue := app.Vault.WithdrawalQueue()
	out := make([]gin.H, 0, len(queue))
	for _, addr := range queue {
		entry, ok := app.Vault.Strategies(addr)
		if !ok {
			continue
		}
		out = append(out, gin.H{
			"address":              addr,
			"debt_ratio_bps":       entry.DebtRatioBps,
			"min_debt_per_harvest": entry.MinDebtPerHarvest,
			"max_debt_per_harvest": entry.MaxDebtPerHarvest,
			"performance_fee_bps":  entry.PerformanceFeeBps,
			"total_debt":           entry.TotalDebt,
			"total_gain":           entry.TotalGain,
			"total_loss":           entry.TotalLoss,
			"activation":           entry.Activation,
			"last_report":          entry.LastReport,
		})
	}
	c.JSON(http.StatusOK, out)
}

// GetStrategy returns one strategy's ledger entry plus derived figures
func GetStrategy(c *gin.Context) {
	address := c.Param("address")
	entry, ok := app.Vault.Strategies(address)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Strategy not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"address":              address,
		"debt_ratio_bps":       entry.DebtRatioBps,
		"min_debt_per_harvest": entry.MinDebtPerHarvest,
		"max_debt_per_harvest": entry.MaxDebtPerHarvest,
		"performance_fee_bps":  entry.PerformanceFeeBps,
		"total_debt":           entry.TotalDebt,
		"total_gain":           entry.TotalGain,
		"total_loss":           entry.TotalLoss,
		"activation":           entry.Activation,
		"last_report":          entry.LastReport,
		"credit_available":     app.Vault.CreditAvailable(address),
		"debt_outstanding":     app.Vault.DebtOutstanding(address),
	})
}

// UpdateStrategyDebtRatio changes a strategy's target debt ratio
func UpdateStrategyDebtRatio(c *gin.Context) {
	updateStrategyParam(c, app.Vault.UpdateStrategyDebtRatio)
}

// UpdateStrategyMinDebt changes the per-harvest minimum borrow
func UpdateStrategyMinDebt(c *gin.Context) {
	updateStrategyParam(c, app.Vault.UpdateStrategyMinDebtPerHarvest)
}

// UpdateStrategyMaxDebt changes the per-harvest maximum borrow
func UpdateStrategyMaxDebt(c *gin.Context) {
	updateStrategyParam(c, app.Vault.UpdateStrategyMaxDebtPerHarvest)
}

// UpdateStrategyPerformanceFee changes the strategist fee share
func UpdateStrategyPerformanceFee(c *gin.Context) {
	updateStrategyParam(c, app.Vault.UpdateStrategyPerformanceFee)
}

func updateStrategyParam(c *gin.Context, apply func(caller, strategy string, value uint64) error) {
	address := c.Param("address")
	var request StrategyParamRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := apply(request.Caller, address, request.Value); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	syncStrategyRecord(address)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RevokeStrategy zeroes a strategy's ratio and deactivates it
func RevokeStrategy(c *gin.Context) {
	address := c.Param("address")
	var request StrategyParamRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := app.Vault.RevokeStrategy(request.Caller, address); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	syncStrategyRecord(address)
	emit(dbconfig.VaultEvent{
		Kind:            "strategy_revoked",
		VaultAddress:    app.Vault.Address(),
		StrategyAddress: address,
	})
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetWithdrawalQueue returns the active withdrawal order
func GetWithdrawalQueue(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"queue": app.Vault.WithdrawalQueue()})
}

// AddToQueue re-appends a registered strategy to the queue
func AddToQueue(c *gin.Context) {
	address := c.Param("address")
	var request QueueRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := app.Vault.AddStrategyToQueue(request.Caller, address); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"queue": app.Vault.WithdrawalQueue()})
}

// RemoveFromQueue removes a strategy from the queue, closing the gap
func RemoveFromQueue(c *gin.Context) {
	address := c.Param("address")
	var request QueueRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := app.Vault.RemoveStrategyFromQueue(request.Caller, address); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"queue": app.Vault.WithdrawalQueue()})
}

// InsertToQueue places a strategy at a specific queue position
func InsertToQueue(c *gin.Context) {
	address := c.Param("address")
	var request QueueRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if request.Index == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "index is required"})
		return
	}

	if err := app.Vault.InsertStrategyToQueue(request.Caller, address, *request.Index); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"queue": app.Vault.WithdrawalQueue()})
}

// Simulate scripts an adapter's holdings and next harvest outcome
func Simulate(c *gin.Context) {
	address := c.Param("address")
	adapter, ok := app.Simulated(address)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Strategy not found"})
		return
	}

	var request SimulateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if request.Earn > 0 {
		adapter.SimulateEarn(request.Earn)
	}
	if request.Burn > 0 {
		adapter.SimulateBurn(request.Burn)
	}
	if request.Gain != nil || request.Loss != nil {
		var gain, loss uint64
		if request.Gain != nil {
			gain = *request.Gain
		}
		if request.Loss != nil {
			loss = *request.Loss
		}
		adapter.SetHarvestResult(gain, loss)
	}
	if request.LiquidAmount != nil || request.LiquidLoss != nil {
		var amount, loss uint64
		if request.LiquidAmount != nil {
			amount = *request.LiquidAmount
		}
		if request.LiquidLoss != nil {
			loss = *request.LiquidLoss
		}
		adapter.SetLiquidation(amount, loss)
	}
	c.JSON(http.StatusOK, gin.H{
		"asset_balance": app.Asset.BalanceOf(address),
	})
}

// Harvest runs one strategy's harvest synchronously
func Harvest(c *gin.Context) {
	address := c.Param("address")
	adapter, ok := app.Simulated(address)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Strategy not found"})
		return
	}

	res, err := adapter.Harvest()
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	syncStrategyRecord(address)
	c.JSON(http.StatusOK, res)
}

// RequestHarvest queues an asynchronous harvest for the worker
func RequestHarvest(c *gin.Context) {
	address := c.Param("address")
	if _, ok := app.Simulated(address); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Strategy not found"})
		return
	}
	if app.Publisher == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "message queue not configured"})
		return
	}

	req := dbconfig.HarvestRequest{
		VaultAddress:    app.Vault.Address(),
		StrategyAddress: address,
	}
	if err := app.Publisher.Publish(dbconfig.QueueHarvestRequests, req); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}
