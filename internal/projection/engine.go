// Package projection implements the inventory projection engine: a pure
// day-by-day walk from a current-inventory baseline, subtracting seasonally
// adjusted forecast demand, estimating a statistical safety stock and
// classifying each day into a stock-health status.
//
// The engine performs no I/O and never reads the clock; the reference date
// is part of the input. Projections for different series are independent and
// may run in parallel.
package projection

import (
	"math"
	"time"

	"github.com/flowplan/backend-go/internal/domain"
)

const (
	// ZScore95 is the one-sided 95% service level factor.
	ZScore95 = 1.65

	// LeadTimeDays is the fixed replenishment lead time assumed by the
	// safety stock formula. Network edges carry a per-relationship
	// lead_time_days, but the engine intentionally does not join against
	// it; changing that is a product decision, not a bug fix.
	LeadTimeDays = 14

	// SafetyStockFloor is the minimum safety stock in units.
	SafetyStockFloor = 10.0

	// reorderPointFactor scales safety stock into the reorder point.
	reorderPointFactor = 1.5

	// capacityFactor scales the baseline into the assumed max warehouse
	// capacity used by the replenishment simulation.
	capacityFactor = 2.0

	// DefaultHorizonDays is the horizon used when a caller supplies none.
	DefaultHorizonDays = 90

	dateLayout = "2006-01-02"
)

// Input carries everything one projection run needs. Observations must
// belong to the series and Forecasts to the same product+location, filtered
// to dates at or after Today; that partitioning is the caller's job.
// HorizonDays must be >= 0 (validated at the API/CLI boundary).
type Input struct {
	SeriesID     string
	Observations []domain.InventoryObservation
	Forecasts    []domain.ForecastPoint
	HorizonDays  int
	Today        time.Time
}

// Project walks day 0 (today) through the horizon inclusive and returns one
// ProjectionDay per day. A series with no observations yields nil: the
// engine does not fabricate a baseline.
//
// Each day recomputes projected inventory as baseline minus cumulative
// demand rather than carrying the previous day's (possibly replenished)
// value forward; the replenishment top-up applies to the current day only.
// This matches the historical behavior the dashboards were built on.
func Project(in Input) []domain.ProjectionDay {
	if len(in.Observations) == 0 {
		return nil
	}

	baseline := SumObservations(in.Observations)
	safetyStock := EstimateSafetyStock(in.Forecasts)
	reorderPoint := safetyStock * reorderPointFactor

	days := make([]domain.ProjectionDay, 0, in.HorizonDays+1)
	cumulativeDemand := 0.0

	for d := 0; d <= in.HorizonDays; d++ {
		date := in.Today.AddDate(0, 0, d)

		baseDemand := demandOn(in.Forecasts, date)
		adjustedDemand := baseDemand * SeasonalFactor(date.Month())
		cumulativeDemand += adjustedDemand

		projected := baseline - cumulativeDemand

		// Replenishment simulation: instantaneous top-up to the assumed
		// max capacity the moment the reorder point is crossed. No
		// lead-time delay; known simplification.
		if d > 0 && projected <= reorderPoint {
			maxCapacity := baseline * capacityFactor
			projected += math.Max(0, maxCapacity-projected)
		}

		days = append(days, domain.ProjectionDay{
			Date:               date.Format(dateLayout),
			ProjectedInventory: math.Max(0, projected),
			ForecastDemand:     adjustedDemand,
			CurrentStock:       baseline,
			CumulativeDemand:   cumulativeDemand,
			ReorderPoint:       reorderPoint,
			SafetyStock:        safetyStock,
			Status:             ClassifyStatus(projected, safetyStock),
		})
	}

	return days
}

// Summarize tallies a projection into headline numbers with a single scan.
// An empty projection summarizes to zeroes at low risk.
func Summarize(days []domain.ProjectionDay) domain.Summary {
	summary := domain.Summary{RiskLevel: domain.RiskLow}
	if len(days) == 0 {
		return summary
	}

	summary.MinInventory = days[0].ProjectedInventory
	for _, day := range days {
		switch day.Status {
		case domain.StatusStockout:
			summary.StockoutDays++
		case domain.StatusCritical:
			summary.CriticalDays++
		case domain.StatusWarning:
			summary.WarningDays++
		}

		if day.ProjectedInventory < summary.MinInventory {
			summary.MinInventory = day.ProjectedInventory
		}
	}

	summary.TotalDemand = days[len(days)-1].CumulativeDemand

	switch {
	case summary.StockoutDays > 0:
		summary.RiskLevel = domain.RiskHigh
	case summary.CriticalDays > 7:
		summary.RiskLevel = domain.RiskMedium
	default:
		summary.RiskLevel = domain.RiskLow
	}

	return summary
}

// SumObservations derives the current-inventory baseline by summing every
// observation value (nil treated as 0). This is a sum over all loaded rows,
// not a latest-balance read; preserved for compatibility with the stored
// dashboards even though it double counts multi-period series.
func SumObservations(observations []domain.InventoryObservation) float64 {
	total := 0.0
	for _, obs := range observations {
		if obs.Value != nil {
			total += *obs.Value
		}
	}

	return total
}

// EstimateSafetyStock computes max(floor, Z * stddev * sqrt(leadTime/7))
// over the forecast values, using the population standard deviation with nil
// forecasts treated as 0. With no forecast points it returns the floor.
func EstimateSafetyStock(forecasts []domain.ForecastPoint) float64 {
	if len(forecasts) == 0 {
		return SafetyStockFloor
	}

	n := float64(len(forecasts))

	mean := 0.0
	for _, fp := range forecasts {
		mean += forecastValue(fp)
	}
	mean /= n

	variance := 0.0
	for _, fp := range forecasts {
		diff := forecastValue(fp) - mean
		variance += diff * diff
	}
	variance /= n

	safetyStock := ZScore95 * math.Sqrt(variance) * math.Sqrt(float64(LeadTimeDays)/7.0)

	return math.Max(SafetyStockFloor, safetyStock)
}

// ClassifyStatus buckets a projected inventory value against the safety
// stock. The value is the running (possibly replenished, unclamped) figure,
// not the display-floored one.
func ClassifyStatus(projected, safetyStock float64) domain.StockStatus {
	switch {
	case projected <= 0:
		return domain.StatusStockout
	case projected <= safetyStock*0.5:
		return domain.StatusCritical
	case projected <= safetyStock:
		return domain.StatusWarning
	default:
		return domain.StatusOptimal
	}
}

// demandOn picks the base daily demand for a date: an exact calendar-date
// match wins outright; otherwise the forecast point closest in absolute time
// is used, first encountered winning ties. No forecasts means zero demand.
func demandOn(forecasts []domain.ForecastPoint, date time.Time) float64 {
	if len(forecasts) == 0 {
		return 0
	}

	for _, fp := range forecasts {
		if sameDay(fp.PostDate, date) {
			return forecastValue(fp)
		}
	}

	best := forecasts[0]
	bestDistance := absDuration(forecasts[0].PostDate.Sub(date))
	for _, fp := range forecasts[1:] {
		distance := absDuration(fp.PostDate.Sub(date))
		if distance < bestDistance {
			best = fp
			bestDistance = distance
		}
	}

	return forecastValue(best)
}

func forecastValue(fp domain.ForecastPoint) float64 {
	if fp.Forecast == nil {
		return 0
	}

	return *fp.Forecast
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}

	return d
}
