package domain

import "strings"

// StockStatus classifies one projected day against the safety stock.
type StockStatus string

const (
	StatusOptimal  StockStatus = "optimal"
	StatusWarning  StockStatus = "warning"
	StatusCritical StockStatus = "critical"
	StatusStockout StockStatus = "stockout"
)

// RiskLevel is the coarse risk rating of a whole projection.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

var stockStatusLabels = map[StockStatus]string{
	StatusOptimal:  "Optimal",
	StatusWarning:  "Warning",
	StatusCritical: "Critical",
	StatusStockout: "Stockout",
}

var stockStatusValues = map[string]StockStatus{
	"optimal":  StatusOptimal,
	"warning":  StatusWarning,
	"critical": StatusCritical,
	"stockout": StatusStockout,
}

// StockStatusLabel returns a human-readable label for a stock status.
func StockStatusLabel(status StockStatus) string {
	if label, ok := stockStatusLabels[status]; ok {
		return label
	}

	return "Unknown"
}

// ParseStockStatus returns the status for a given label (case-insensitive).
func ParseStockStatus(label string) (StockStatus, bool) {
	status, ok := stockStatusValues[strings.ToLower(label)]

	return status, ok
}

var riskLevelValues = map[string]RiskLevel{
	"low":    RiskLow,
	"medium": RiskMedium,
	"high":   RiskHigh,
}

// ParseRiskLevel returns the risk level for a given label (case-insensitive).
func ParseRiskLevel(label string) (RiskLevel, bool) {
	level, ok := riskLevelValues[strings.ToLower(label)]

	return level, ok
}
