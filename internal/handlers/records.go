package handlers

import (
	"net/http"
	"strconv"

	"vaultcontrol/internal/models"
	dbconfig "vaultcontrol/pkg/config"

	"github.com/gin-gonic/gin"
)

func recordLimit(c *gin.Context) int {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}
	return limit
}

// ListVaultSnapshots returns persisted vault snapshots, newest first
func ListVaultSnapshots(c *gin.Context) {
	if dbconfig.DB == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database not configured"})
		return
	}

	var snapshots []models.VaultSnapshot
	if err := dbconfig.DB.Order("id desc").Limit(recordLimit(c)).Find(&snapshots).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snapshots)
}

// ListReportRecords returns persisted report outcomes, newest first
func ListReportRecords(c *gin.Context) {
	if dbconfig.DB == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database not configured"})
		return
	}

	query := dbconfig.DB.Order("id desc").Limit(recordLimit(c))
	if strategyAddr := c.Query("strategy"); strategyAddr != "" {
		query = query.Where("strategy_address = ?", strategyAddr)
	}

	var records []models.ReportRecord
	if err := query.Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, records)
}

// ListWithdrawRecords returns persisted withdrawals, newest first
func ListWithdrawRecords(c *gin.Context) {
	if dbconfig.DB == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database not configured"})
		return
	}

	query := dbconfig.DB.Order("id desc").Limit(recordLimit(c))
	if owner := c.Query("owner"); owner != "" {
		query = query.Where("owner = ?", owner)
	}

	var records []models.WithdrawRecord
	if err := query.Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, records)
}

// ListStrategyRecords returns the persisted mirror of strategy entries
func ListStrategyRecords(c *gin.Context) {
	if dbconfig.DB == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database not configured"})
		return
	}

	var records []models.StrategyRecord
	if err := dbconfig.DB.Order("id desc").Limit(recordLimit(c)).Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, records)
}
