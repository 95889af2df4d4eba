package handlers

import (
	"net/http"

	"vaultcontrol/internal/models"
	dbconfig "vaultcontrol/pkg/config"

	"github.com/gin-gonic/gin"
)

// ReportRequest is the strategy-initiated report callback body.
type ReportRequest struct {
	Strategy    string `json:"strategy" binding:"required"`
	Gain        uint64 `json:"gain"`
	Loss        uint64 `json:"loss"`
	DebtPayment uint64 `json:"debt_payment"`
}

// Report reconciles a strategy's gain, loss and debt payment with the vault
func Report(c *gin.Context) {
	var request ReportRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := app.Vault.Report(request.Strategy, request.Gain, request.Loss, request.DebtPayment)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	persist(&models.ReportRecord{
		VaultAddress:     app.Vault.Address(),
		StrategyAddress:  request.Strategy,
		Gain:             request.Gain,
		Loss:             request.Loss,
		DebtPaymentTaken: res.DebtPaymentTaken,
		CreditGiven:      res.CreditGiven,
		Outstanding:      res.Outstanding,
		FeeShares:        res.FeeShares,
	})
	syncStrategyRecord(request.Strategy)
	emit(dbconfig.VaultEvent{
		Kind:            "report",
		VaultAddress:    app.Vault.Address(),
		StrategyAddress: request.Strategy,
		Gain:            request.Gain,
		Loss:            request.Loss,
	})
	c.JSON(http.StatusOK, res)
}
