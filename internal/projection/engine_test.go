package projection

import (
	"math"
	"testing"
	"time"

	"github.com/flowplan/backend-go/internal/domain"
)

func fptr(v float64) *float64 {
	return &v
}

// march pins dates into March so the seasonal factor is the 1.0 baseline.
func march(day int) time.Time {
	return time.Date(2025, time.March, day, 0, 0, 0, 0, time.UTC)
}

func observation(value float64) domain.InventoryObservation {
	return domain.InventoryObservation{
		SeriesID:   "series-1",
		PeriodDate: march(1),
		Value:      fptr(value),
	}
}

func constantForecasts(from time.Time, days int, value float64) []domain.ForecastPoint {
	forecasts := make([]domain.ForecastPoint, 0, days)
	for d := 0; d < days; d++ {
		forecasts = append(forecasts, domain.ForecastPoint{
			ProductID:  "prod-1",
			LocationID: "loc-1",
			PostDate:   from.AddDate(0, 0, d),
			Forecast:   fptr(value),
		})
	}
	return forecasts
}

func TestProjectOutputLength(t *testing.T) {
	for _, horizon := range []int{0, 1, 7, 90} {
		days := Project(Input{
			SeriesID:     "series-1",
			Observations: []domain.InventoryObservation{observation(1000)},
			HorizonDays:  horizon,
			Today:        march(1),
		})

		if len(days) != horizon+1 {
			t.Errorf("horizon %d: got %d days, want %d", horizon, len(days), horizon+1)
		}
	}
}

func TestProjectEmptySeries(t *testing.T) {
	days := Project(Input{
		SeriesID:    "series-1",
		Forecasts:   constantForecasts(march(1), 5, 50),
		HorizonDays: 10,
		Today:       march(1),
	})

	if len(days) != 0 {
		t.Fatalf("expected empty projection for series without observations, got %d days", len(days))
	}
}

func TestProjectCumulativeDemandMonotonic(t *testing.T) {
	days := Project(Input{
		SeriesID:     "series-1",
		Observations: []domain.InventoryObservation{observation(1000)},
		Forecasts:    constantForecasts(march(1), 30, 25),
		HorizonDays:  30,
		Today:        march(1),
	})

	for i := 1; i < len(days); i++ {
		if days[i].CumulativeDemand < days[i-1].CumulativeDemand {
			t.Fatalf("cumulative demand decreased at day %d: %f -> %f",
				i, days[i-1].CumulativeDemand, days[i].CumulativeDemand)
		}
	}
}

func TestProjectConstantSafetyStockAndReorderPoint(t *testing.T) {
	days := Project(Input{
		SeriesID:     "series-1",
		Observations: []domain.InventoryObservation{observation(1000)},
		Forecasts: []domain.ForecastPoint{
			{PostDate: march(1), Forecast: fptr(10)},
			{PostDate: march(2), Forecast: fptr(40)},
			{PostDate: march(3), Forecast: fptr(70)},
		},
		HorizonDays: 20,
		Today:       march(1),
	})

	for i, day := range days {
		if day.SafetyStock != days[0].SafetyStock {
			t.Errorf("day %d: safety stock %f differs from day 0 %f", i, day.SafetyStock, days[0].SafetyStock)
		}
		if day.ReorderPoint != days[0].ReorderPoint {
			t.Errorf("day %d: reorder point %f differs from day 0 %f", i, day.ReorderPoint, days[0].ReorderPoint)
		}
		if day.ReorderPoint != day.SafetyStock*1.5 {
			t.Errorf("day %d: reorder point %f is not 1.5x safety stock %f", i, day.ReorderPoint, day.SafetyStock)
		}
	}
}

func TestProjectNoForecasts(t *testing.T) {
	days := Project(Input{
		SeriesID:     "series-1",
		Observations: []domain.InventoryObservation{observation(500)},
		HorizonDays:  5,
		Today:        march(1),
	})

	for i, day := range days {
		if day.ForecastDemand != 0 {
			t.Errorf("day %d: forecast demand %f, want 0", i, day.ForecastDemand)
		}
		if day.SafetyStock != SafetyStockFloor {
			t.Errorf("day %d: safety stock %f, want floor %f", i, day.SafetyStock, SafetyStockFloor)
		}
	}
}

func TestProjectNilValuesTreatedAsZero(t *testing.T) {
	days := Project(Input{
		SeriesID: "series-1",
		Observations: []domain.InventoryObservation{
			observation(100),
			{SeriesID: "series-1", PeriodDate: march(2), Value: nil},
		},
		Forecasts: []domain.ForecastPoint{
			{PostDate: march(1), Forecast: nil},
			{PostDate: march(2), Forecast: nil},
		},
		HorizonDays: 2,
		Today:       march(1),
	})

	if days[0].CurrentStock != 100 {
		t.Errorf("baseline %f, want 100 (nil observation counted as 0)", days[0].CurrentStock)
	}
	if days[0].ForecastDemand != 0 {
		t.Errorf("forecast demand %f, want 0 (nil forecast counted as 0)", days[0].ForecastDemand)
	}
	if days[0].SafetyStock != SafetyStockFloor {
		t.Errorf("safety stock %f, want floor (all-nil forecasts have zero deviation)", days[0].SafetyStock)
	}
}

func TestClassifyStatusBoundaries(t *testing.T) {
	tests := []struct {
		projected float64
		want      domain.StockStatus
	}{
		{-10, domain.StatusStockout},
		{0, domain.StatusStockout},
		{50, domain.StatusCritical},
		{100, domain.StatusWarning},
		{101, domain.StatusOptimal},
	}

	for _, tt := range tests {
		if got := ClassifyStatus(tt.projected, 100); got != tt.want {
			t.Errorf("ClassifyStatus(%f, 100) = %s, want %s", tt.projected, got, tt.want)
		}
	}
}

func TestSeasonalFactors(t *testing.T) {
	if got := SeasonalFactor(time.July); got != 1.2 {
		t.Errorf("July factor %f, want 1.2", got)
	}
	if got := SeasonalFactor(time.March); got != 1.0 {
		t.Errorf("March factor %f, want 1.0", got)
	}
	if got := SeasonalFactor(time.December); got != 1.3 {
		t.Errorf("December factor %f, want 1.3", got)
	}

	for month := time.January; month <= time.December; month++ {
		factor := SeasonalFactor(month)
		if factor < 0.9 || factor > 1.3 {
			t.Errorf("%s factor %f out of range [0.9, 1.3]", month, factor)
		}
	}
}

func TestSeasonalAdjustmentApplied(t *testing.T) {
	july := time.Date(2025, time.July, 10, 0, 0, 0, 0, time.UTC)
	days := Project(Input{
		SeriesID:     "series-1",
		Observations: []domain.InventoryObservation{observation(10000)},
		Forecasts:    constantForecasts(july, 5, 100),
		HorizonDays:  0,
		Today:        july,
	})

	if got := days[0].ForecastDemand; math.Abs(got-120) > 1e-9 {
		t.Errorf("July adjusted demand %f, want 100 * 1.2 = 120", got)
	}
}

func TestProjectSteadyDrawdownScenario(t *testing.T) {
	// Baseline 1000, constant 50/day forecast, pinned to March so the
	// seasonal factor is 1.0. Zero forecast deviation falls back to the
	// 10-unit safety stock floor, so the reorder point is 15 and no
	// replenishment triggers while projected inventory stays above it.
	days := Project(Input{
		SeriesID:     "series-1",
		Observations: []domain.InventoryObservation{observation(1000)},
		Forecasts:    constantForecasts(march(1), 15, 50),
		HorizonDays:  10,
		Today:        march(1),
	})

	if days[0].SafetyStock != 10 {
		t.Fatalf("safety stock %f, want 10 (zero std dev hits the floor)", days[0].SafetyStock)
	}
	if days[0].ReorderPoint != 15 {
		t.Fatalf("reorder point %f, want 15", days[0].ReorderPoint)
	}

	for d, day := range days {
		wantCumulative := 50 * float64(d+1)
		if math.Abs(day.CumulativeDemand-wantCumulative) > 1e-9 {
			t.Errorf("day %d: cumulative demand %f, want %f", d, day.CumulativeDemand, wantCumulative)
		}

		wantProjected := 1000 - wantCumulative
		if math.Abs(day.ProjectedInventory-wantProjected) > 1e-9 {
			t.Errorf("day %d: projected inventory %f, want %f (no replenishment expected)",
				d, day.ProjectedInventory, wantProjected)
		}
	}
}

func TestProjectReplenishmentTrigger(t *testing.T) {
	// Baseline 100 draining 30/day: day 2 drops the running value to 10,
	// at or below the reorder point of 15, so the simulation tops it up
	// to max capacity (2x baseline = 200) the same day.
	days := Project(Input{
		SeriesID:     "series-1",
		Observations: []domain.InventoryObservation{observation(100)},
		Forecasts:    constantForecasts(march(1), 10, 30),
		HorizonDays:  4,
		Today:        march(1),
	})

	if days[1].ProjectedInventory != 40 {
		t.Errorf("day 1: projected %f, want 40 (above reorder point, no top-up)", days[1].ProjectedInventory)
	}
	if days[2].ProjectedInventory != 200 {
		t.Errorf("day 2: projected %f, want 200 (topped up to max capacity)", days[2].ProjectedInventory)
	}
	if days[2].Status != domain.StatusOptimal {
		t.Errorf("day 2: status %s, want optimal after replenishment", days[2].Status)
	}

	// Later days recompute from the original baseline, cross the reorder
	// point immediately and get topped up again.
	if days[4].ProjectedInventory != 200 {
		t.Errorf("day 4: projected %f, want 200", days[4].ProjectedInventory)
	}
}

func TestProjectDayZeroNeverReplenishes(t *testing.T) {
	// Demand on day 0 already drains below the reorder point, but the
	// replenishment check only applies from day 1 on.
	days := Project(Input{
		SeriesID:     "series-1",
		Observations: []domain.InventoryObservation{observation(20)},
		Forecasts:    constantForecasts(march(1), 5, 15),
		HorizonDays:  1,
		Today:        march(1),
	})

	if days[0].ProjectedInventory != 5 {
		t.Errorf("day 0: projected %f, want 5 (no top-up on day 0)", days[0].ProjectedInventory)
	}
	if days[0].Status != domain.StatusCritical {
		t.Errorf("day 0: status %s, want critical (5 <= half of safety stock 10)", days[0].Status)
	}
}

func TestProjectDisplayFloorKeepsStockoutStatus(t *testing.T) {
	// A zero-baseline series stays at zero capacity, so the top-up adds
	// nothing and the running value goes negative. The emitted value is
	// floored at zero while the status reflects the stockout.
	days := Project(Input{
		SeriesID:     "series-1",
		Observations: []domain.InventoryObservation{observation(0)},
		Forecasts:    constantForecasts(march(1), 5, 10),
		HorizonDays:  3,
		Today:        march(1),
	})

	for d, day := range days {
		if day.ProjectedInventory != 0 {
			t.Errorf("day %d: projected %f, want 0 (display floor)", d, day.ProjectedInventory)
		}
		if day.Status != domain.StatusStockout {
			t.Errorf("day %d: status %s, want stockout", d, day.Status)
		}
	}
}

func TestDemandOnExactMatchBeatsNearest(t *testing.T) {
	today := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

	// The previous evening's point is closer in absolute time (1h) than
	// the same-day point (18h), but the exact calendar-date match wins.
	forecasts := []domain.ForecastPoint{
		{PostDate: time.Date(2025, time.March, 9, 23, 0, 0, 0, time.UTC), Forecast: fptr(50)},
		{PostDate: time.Date(2025, time.March, 10, 18, 0, 0, 0, time.UTC), Forecast: fptr(7)},
	}

	if got := demandOn(forecasts, today); got != 7 {
		t.Errorf("demandOn = %f, want 7 (exact date match takes precedence)", got)
	}
}

func TestDemandOnNearestTieFirstWins(t *testing.T) {
	date := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

	forecasts := []domain.ForecastPoint{
		{PostDate: date.Add(-36 * time.Hour), Forecast: fptr(11)},
		{PostDate: date.Add(36 * time.Hour), Forecast: fptr(22)},
	}

	if got := demandOn(forecasts, date); got != 11 {
		t.Errorf("demandOn = %f, want 11 (first closest point wins ties)", got)
	}
}

func TestEstimateSafetyStock(t *testing.T) {
	forecasts := []domain.ForecastPoint{
		{PostDate: march(1), Forecast: fptr(10)},
		{PostDate: march(2), Forecast: fptr(20)},
		{PostDate: march(3), Forecast: fptr(30)},
	}

	// Population std dev of {10,20,30} is sqrt(200/3); lead time term is
	// sqrt(14/7) = sqrt(2).
	want := ZScore95 * math.Sqrt(200.0/3.0) * math.Sqrt(2)
	if got := EstimateSafetyStock(forecasts); math.Abs(got-want) > 1e-9 {
		t.Errorf("safety stock %f, want %f", got, want)
	}

	if got := EstimateSafetyStock(nil); got != SafetyStockFloor {
		t.Errorf("safety stock without forecasts %f, want floor %f", got, SafetyStockFloor)
	}
}

func TestSumObservations(t *testing.T) {
	observations := []domain.InventoryObservation{
		observation(100),
		observation(-20),
		{SeriesID: "series-1", PeriodDate: march(3), Value: nil},
	}

	if got := SumObservations(observations); got != 80 {
		t.Errorf("SumObservations = %f, want 80", got)
	}
}

func TestSummarizeAllOptimal(t *testing.T) {
	days := Project(Input{
		SeriesID:     "series-1",
		Observations: []domain.InventoryObservation{observation(100000)},
		Forecasts:    constantForecasts(march(1), 10, 50),
		HorizonDays:  10,
		Today:        march(1),
	})

	summary := Summarize(days)
	if summary.RiskLevel != domain.RiskLow {
		t.Errorf("risk level %s, want low", summary.RiskLevel)
	}
	if summary.StockoutDays != 0 || summary.CriticalDays != 0 || summary.WarningDays != 0 {
		t.Errorf("expected zero stockout/critical/warning days, got %d/%d/%d",
			summary.StockoutDays, summary.CriticalDays, summary.WarningDays)
	}
	if summary.TotalDemand != days[len(days)-1].CumulativeDemand {
		t.Errorf("total demand %f, want final cumulative demand %f",
			summary.TotalDemand, days[len(days)-1].CumulativeDemand)
	}
}

func TestSummarizeRiskLevels(t *testing.T) {
	mkDays := func(statuses ...domain.StockStatus) []domain.ProjectionDay {
		days := make([]domain.ProjectionDay, len(statuses))
		for i, status := range statuses {
			days[i] = domain.ProjectionDay{Status: status, ProjectedInventory: float64(i + 1)}
		}
		return days
	}

	if got := Summarize(mkDays(domain.StatusOptimal, domain.StatusStockout)).RiskLevel; got != domain.RiskHigh {
		t.Errorf("risk with a stockout day = %s, want high", got)
	}

	eightCritical := make([]domain.StockStatus, 8)
	for i := range eightCritical {
		eightCritical[i] = domain.StatusCritical
	}
	if got := Summarize(mkDays(eightCritical...)).RiskLevel; got != domain.RiskMedium {
		t.Errorf("risk with 8 critical days = %s, want medium", got)
	}

	sevenCritical := mkDays(eightCritical[:7]...)
	if got := Summarize(sevenCritical).RiskLevel; got != domain.RiskLow {
		t.Errorf("risk with 7 critical days = %s, want low", got)
	}
}

func TestSummarizeMinInventory(t *testing.T) {
	days := []domain.ProjectionDay{
		{ProjectedInventory: 40, Status: domain.StatusOptimal, CumulativeDemand: 10},
		{ProjectedInventory: 5, Status: domain.StatusWarning, CumulativeDemand: 20},
		{ProjectedInventory: 90, Status: domain.StatusOptimal, CumulativeDemand: 30},
	}

	summary := Summarize(days)
	if summary.MinInventory != 5 {
		t.Errorf("min inventory %f, want 5", summary.MinInventory)
	}
	if summary.WarningDays != 1 {
		t.Errorf("warning days %d, want 1", summary.WarningDays)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(nil)
	if summary.RiskLevel != domain.RiskLow {
		t.Errorf("empty projection risk %s, want low", summary.RiskLevel)
	}
	if summary.MinInventory != 0 || summary.TotalDemand != 0 {
		t.Errorf("empty projection should summarize to zeroes, got %+v", summary)
	}
}
