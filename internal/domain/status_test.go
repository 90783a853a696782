package domain

import "testing"

func TestStockStatusLabel(t *testing.T) {
	if got := StockStatusLabel(StatusStockout); got != "Stockout" {
		t.Errorf("label for stockout = %s", got)
	}
	if got := StockStatusLabel(StockStatus("bogus")); got != "Unknown" {
		t.Errorf("label for unknown status = %s", got)
	}
}

func TestParseStockStatus(t *testing.T) {
	status, ok := ParseStockStatus("CRITICAL")
	if !ok || status != StatusCritical {
		t.Errorf("ParseStockStatus(CRITICAL) = %s, %v", status, ok)
	}

	if _, ok := ParseStockStatus("fine"); ok {
		t.Error("ParseStockStatus accepted an unknown label")
	}
}

func TestParseRiskLevel(t *testing.T) {
	level, ok := ParseRiskLevel("High")
	if !ok || level != RiskHigh {
		t.Errorf("ParseRiskLevel(High) = %s, %v", level, ok)
	}

	if _, ok := ParseRiskLevel("severe"); ok {
		t.Error("ParseRiskLevel accepted an unknown label")
	}
}
