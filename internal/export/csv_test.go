package export

import (
	"strings"
	"testing"

	"github.com/flowplan/backend-go/internal/domain"
)

func TestWriteCSV(t *testing.T) {
	days := []domain.ProjectionDay{
		{
			Date:               "2025-03-01",
			ProjectedInventory: 950,
			ForecastDemand:     50,
			CurrentStock:       1000,
			CumulativeDemand:   50,
			ReorderPoint:       15,
			SafetyStock:        10,
			Status:             domain.StatusOptimal,
		},
		{
			Date:               "2025-03-02",
			ProjectedInventory: 900,
			ForecastDemand:     50,
			CurrentStock:       1000,
			CumulativeDemand:   100,
			ReorderPoint:       15,
			SafetyStock:        10,
			Status:             domain.StatusOptimal,
		},
	}

	var sb strings.Builder
	if err := WriteCSV(&sb, days); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header + 2 rows", len(lines))
	}
	if lines[0] != "date,projected_inventory,forecast_demand,current_stock,cumulative_demand,reorder_point,safety_stock,status" {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if lines[1] != "2025-03-01,950.00,50.00,1000.00,50.00,15.00,10.00,optimal" {
		t.Errorf("unexpected row: %s", lines[1])
	}
}

func TestWriteCSVEmptyProjection(t *testing.T) {
	var sb strings.Builder
	if err := WriteCSV(&sb, nil); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	if strings.Count(sb.String(), "\n") != 1 {
		t.Errorf("empty projection should emit only the header, got %q", sb.String())
	}
}

func TestObjectKey(t *testing.T) {
	if got := ObjectKey("series-1", "2025-03-01"); got != "projections/series-1/2025-03-01.csv" {
		t.Errorf("ObjectKey = %s", got)
	}
}
