package handlers

import (
	"net/http"
	"strconv"

	"vaultcontrol/internal/models"
	dbconfig "vaultcontrol/pkg/config"

	"github.com/gin-gonic/gin"
)

// LedgerRequest is the shared request body for deposit and mint.
type LedgerRequest struct {
	Caller   string `json:"caller" binding:"required"`
	Assets   uint64 `json:"assets"`
	Shares   uint64 `json:"shares"`
	Receiver string `json:"receiver" binding:"required"`
}

// WithdrawRequest is the request body for withdraw and redeem.
type WithdrawRequest struct {
	Caller     string `json:"caller" binding:"required"`
	Assets     uint64 `json:"assets"`
	Shares     uint64 `json:"shares"`
	Receiver   string `json:"receiver" binding:"required"`
	Owner      string `json:"owner" binding:"required"`
	MaxLossBps uint64 `json:"max_loss_bps"`
}

// TransferRequest covers transfer, transfer-from and approve.
type TransferRequest struct {
	Caller  string `json:"caller" binding:"required"`
	Owner   string `json:"owner"`
	To      string `json:"to"`
	Spender string `json:"spender"`
	Amount  uint64 `json:"amount"`
}

// FaucetRequest credits underlying asset balance, for test environments.
type FaucetRequest struct {
	To     string `json:"to" binding:"required"`
	Amount uint64 `json:"amount" binding:"required"`
}

// GetVaultState returns the full accounting snapshot
func GetVaultState(c *gin.Context) {
	c.JSON(http.StatusOK, app.Vault.Snapshot())
}

// Deposit exchanges caller assets for receiver shares
func Deposit(c *gin.Context) {
	var request LedgerRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	shares, err := app.Vault.Deposit(request.Caller, request.Assets, request.Receiver)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	emit(dbconfig.VaultEvent{
		Kind:         "deposit",
		VaultAddress: app.Vault.Address(),
		Assets:       request.Assets,
		Shares:       shares,
	})
	c.JSON(http.StatusOK, gin.H{"shares": shares})
}

// Mint issues an exact number of shares against caller assets
func Mint(c *gin.Context) {
	var request LedgerRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	assets, err := app.Vault.Mint(request.Caller, request.Shares, request.Receiver)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	emit(dbconfig.VaultEvent{
		Kind:         "mint",
		VaultAddress: app.Vault.Address(),
		Assets:       assets,
		Shares:       request.Shares,
	})
	c.JSON(http.StatusOK, gin.H{"assets": assets})
}

// Withdraw redeems enough shares to deliver the requested assets
func Withdraw(c *gin.Context) {
	var request WithdrawRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := app.Vault.Withdraw(request.Caller, request.Assets, request.Receiver, request.Owner, request.MaxLossBps)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	persist(&models.WithdrawRecord{
		VaultAddress: app.Vault.Address(),
		Owner:        request.Owner,
		Receiver:     request.Receiver,
		Assets:       res.Assets,
		Shares:       res.Shares,
		Loss:         res.Loss,
		MaxLossBps:   request.MaxLossBps,
	})
	emit(dbconfig.VaultEvent{
		Kind:         "withdraw",
		VaultAddress: app.Vault.Address(),
		Assets:       res.Assets,
		Shares:       res.Shares,
		Loss:         res.Loss,
	})
	c.JSON(http.StatusOK, res)
}

// Redeem burns an exact number of shares for assets
func Redeem(c *gin.Context) {
	var request WithdrawRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := app.Vault.Redeem(request.Caller, request.Shares, request.Receiver, request.Owner, request.MaxLossBps)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	persist(&models.WithdrawRecord{
		VaultAddress: app.Vault.Address(),
		Owner:        request.Owner,
		Receiver:     request.Receiver,
		Assets:       res.Assets,
		Shares:       res.Shares,
		Loss:         res.Loss,
		MaxLossBps:   request.MaxLossBps,
	})
	emit(dbconfig.VaultEvent{
		Kind:         "redeem",
		VaultAddress: app.Vault.Address(),
		Assets:       res.Assets,
		Shares:       res.Shares,
		Loss:         res.Loss,
	})
	c.JSON(http.StatusOK, res)
}

// Transfer moves shares between holders
func Transfer(c *gin.Context) {
	var request TransferRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := app.Vault.Transfer(request.Caller, request.To, request.Amount); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// TransferFrom moves shares on behalf of an owner, spending allowance
func TransferFrom(c *gin.Context) {
	var request TransferRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := app.Vault.TransferFrom(request.Caller, request.Owner, request.To, request.Amount); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Approve grants a spender allowance over the caller's shares
func Approve(c *gin.Context) {
	var request TransferRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := app.Vault.Approve(request.Caller, request.Spender, request.Amount); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Faucet mints underlying asset balance to an address
func Faucet(c *gin.Context) {
	var request FaucetRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	app.Asset.Mint(request.To, request.Amount)
	c.JSON(http.StatusOK, gin.H{"balance": app.Asset.BalanceOf(request.To)})
}

// GetBalance returns the share balance of a holder
func GetBalance(c *gin.Context) {
	holder := c.Param("holder")
	c.JSON(http.StatusOK, gin.H{
		"holder":        holder,
		"shares":        app.Vault.BalanceOf(holder),
		"asset_balance": app.Asset.BalanceOf(holder),
	})
}

// GetAllowance returns the remaining allowance between owner and spender
func GetAllowance(c *gin.Context) {
	owner := c.Query("owner")
	spender := c.Query("spender")
	if owner == "" || spender == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "owner and spender are required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"allowance": app.Vault.Allowance(owner, spender)})
}

// Convert returns share/asset conversions at the current price
func Convert(c *gin.Context) {
	resp := gin.H{}
	if raw := c.Query("assets"); raw != "" {
		assets, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assets format"})
			return
		}
		resp["shares"] = app.Vault.ConvertToShares(assets)
	}
	if raw := c.Query("shares"); raw != "" {
		shares, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid shares format"})
			return
		}
		resp["assets"] = app.Vault.ConvertToAssets(shares)
	}
	if len(resp) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "assets or shares query parameter required"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetLimits returns per-owner deposit/withdraw bounds and previews
func GetLimits(c *gin.Context) {
	owner := c.Query("owner")
	resp := gin.H{
		"max_deposit":          app.Vault.MaxDeposit(owner),
		"max_mint":             app.Vault.MaxMint(owner),
		"max_withdraw":         app.Vault.MaxWithdraw(owner),
		"max_redeem":           app.Vault.MaxRedeem(owner),
		"max_available_shares": app.Vault.MaxAvailableShares(),
	}
	if raw := c.Query("assets"); raw != "" {
		assets, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assets format"})
			return
		}
		resp["preview_deposit"] = app.Vault.PreviewDeposit(assets)
		resp["preview_withdraw"] = app.Vault.PreviewWithdraw(assets)
	}
	if raw := c.Query("shares"); raw != "" {
		shares, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid shares format"})
			return
		}
		resp["preview_mint"] = app.Vault.PreviewMint(shares)
		resp["preview_redeem"] = app.Vault.PreviewRedeem(shares)
	}
	c.JSON(http.StatusOK, resp)
}
