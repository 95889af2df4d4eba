package handlers

import (
	"net/http"

	dbconfig "vaultcontrol/pkg/config"

	"github.com/gin-gonic/gin"
)

// GovernanceRequest covers the role and address setters.
type GovernanceRequest struct {
	Caller  string `json:"caller" binding:"required"`
	Address string `json:"address"`
}

// GovernanceValueRequest covers the numeric and boolean setters.
type GovernanceValueRequest struct {
	Caller string `json:"caller" binding:"required"`
	Value  uint64 `json:"value"`
	Active *bool  `json:"active"`
}

// SetGovernance nominates a new governance address
func SetGovernance(c *gin.Context) {
	setAddress(c, app.Vault.SetGovernance)
}

// AcceptGovernance completes a pending governance handover
func AcceptGovernance(c *gin.Context) {
	var request GovernanceRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := app.Vault.AcceptGovernance(request.Caller); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	emit(dbconfig.VaultEvent{Kind: "governance_changed", VaultAddress: app.Vault.Address()})
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// SetManagement replaces the management address
func SetManagement(c *gin.Context) {
	setAddress(c, app.Vault.SetManagement)
}

// SetGuardian replaces the guardian address
func SetGuardian(c *gin.Context) {
	setAddress(c, app.Vault.SetGuardian)
}

// SetFeeRecipient replaces the fee recipient
func SetFeeRecipient(c *gin.Context) {
	setAddress(c, app.Vault.SetFeeRecipient)
}

func setAddress(c *gin.Context, apply func(caller, address string) error) {
	var request GovernanceRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if request.Address == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "address is required"})
		return
	}

	if err := apply(request.Caller, request.Address); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// SetDepositLimit caps total assets accepted by the vault
func SetDepositLimit(c *gin.Context) {
	setValue(c, app.Vault.SetDepositLimit)
}

// SetManagementFee sets the annualized management fee in basis points
func SetManagementFee(c *gin.Context) {
	setValue(c, app.Vault.SetManagementFee)
}

// SetPerformanceFee sets the vault performance fee in basis points
func SetPerformanceFee(c *gin.Context) {
	setValue(c, app.Vault.SetPerformanceFee)
}

// SetDispenseRate sets the locked-profit dispense rate in basis points
func SetDispenseRate(c *gin.Context) {
	setValue(c, app.Vault.SetDispenseRate)
}

func setValue(c *gin.Context, apply func(caller string, value uint64) error) {
	var request GovernanceValueRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := apply(request.Caller, request.Value); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// SweepRequest recovers a foreign token accidentally sent to the vault.
type SweepRequest struct {
	Caller string `json:"caller" binding:"required"`
	Token  string `json:"token" binding:"required"`
	Amount uint64 `json:"amount"`
}

// Sweep transfers a foreign token balance out of the vault to governance
func Sweep(c *gin.Context) {
	var request SweepRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := app.Vault.Sweep(request.Caller, app.Token(request.Token), request.Amount); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// SetEmergencyShutdown engages or lifts the emergency shutdown
func SetEmergencyShutdown(c *gin.Context) {
	var request GovernanceValueRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if request.Active == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "active is required"})
		return
	}

	if err := app.Vault.SetEmergencyShutdown(request.Caller, *request.Active); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	emit(dbconfig.VaultEvent{Kind: "emergency_shutdown", VaultAddress: app.Vault.Address()})
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
