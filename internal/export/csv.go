// Package export renders projections into interchange formats consumed by
// spreadsheets and downstream planning tools.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/flowplan/backend-go/internal/domain"
)

var csvHeader = []string{
	"date",
	"projected_inventory",
	"forecast_demand",
	"current_stock",
	"cumulative_demand",
	"reorder_point",
	"safety_stock",
	"status",
}

// WriteCSV writes one projection as CSV, one row per day, dates in
// ISO 8601.
func WriteCSV(w io.Writer, days []domain.ProjectionDay) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed writing csv header: %w", err)
	}

	for _, day := range days {
		record := []string{
			day.Date,
			formatQty(day.ProjectedInventory),
			formatQty(day.ForecastDemand),
			formatQty(day.CurrentStock),
			formatQty(day.CumulativeDemand),
			formatQty(day.ReorderPoint),
			formatQty(day.SafetyStock),
			string(day.Status),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed writing csv row for %s: %w", day.Date, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ObjectKey is the storage key an exported projection is uploaded under.
func ObjectKey(seriesID, asOf string) string {
	return fmt.Sprintf("projections/%s/%s.csv", seriesID, asOf)
}

func formatQty(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
