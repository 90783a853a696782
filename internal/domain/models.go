// backend-go/internal/domain/models.go
package domain

import "time"

// Series identifies one (product, location) inventory/forecast time line.
type Series struct {
	ID           string    `json:"id" db:"id"`
	ProductID    string    `json:"product_id" db:"product_id"`
	LocationID   string    `json:"location_id" db:"location_id"`
	ProductName  string    `json:"product_name" db:"product_name"`
	LocationName string    `json:"location_name" db:"location_name"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// InventoryObservation is a recorded on-hand quantity for a series at a
// period date. Observations are supplied externally and never mutated here.
type InventoryObservation struct {
	SeriesID   string    `json:"series_id" db:"series_id"`
	PeriodDate time.Time `json:"period_date" db:"period_date"`
	Value      *float64  `json:"value" db:"value"`
}

// ForecastPoint is a forecasted demand quantity for a (product, location)
// and a post date. Actual is carried for parity with the source tables but
// the projection engine does not read it.
type ForecastPoint struct {
	ProductID  string    `json:"product_id" db:"product_id"`
	LocationID string    `json:"location_id" db:"location_id"`
	PostDate   time.Time `json:"post_date" db:"post_date"`
	Forecast   *float64  `json:"forecast" db:"forecast"`
	Actual     *float64  `json:"actual" db:"actual"`
}

// ProjectionDay is one day of a projected inventory walk. ProjectedInventory
// is floored at zero for display; Status is classified before the floor is
// applied.
type ProjectionDay struct {
	Date               string      `json:"date"`
	ProjectedInventory float64     `json:"projected_inventory"`
	ForecastDemand     float64     `json:"forecast_demand"`
	CurrentStock       float64     `json:"current_stock"`
	CumulativeDemand   float64     `json:"cumulative_demand"`
	ReorderPoint       float64     `json:"reorder_point"`
	SafetyStock        float64     `json:"safety_stock"`
	Status             StockStatus `json:"status"`
}

// Summary aggregates one projection into headline numbers for dashboards.
type Summary struct {
	StockoutDays int       `json:"stockout_days"`
	CriticalDays int       `json:"critical_days"`
	WarningDays  int       `json:"warning_days"`
	MinInventory float64   `json:"min_inventory"`
	TotalDemand  float64   `json:"total_demand"`
	RiskLevel    RiskLevel `json:"risk_level"`
}

// SeriesProjection pairs a series with its projected days. EmptySeries is set
// when the series has no inventory observations; the projection is then empty
// rather than fabricated from a zero baseline.
type SeriesProjection struct {
	SeriesID    string          `json:"series_id"`
	Days        []ProjectionDay `json:"days"`
	EmptySeries bool            `json:"empty_series"`
}

// NetworkNode represents a location in the supply network.
type NetworkNode struct {
	ID       string `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	NodeType string `json:"node_type" db:"node_type"`
}

// NetworkEdge represents a supply relationship between two nodes. The
// lead_time_days column exists here but is not fed into the projection
// engine, which runs on a fixed lead time.
type NetworkEdge struct {
	ID           string `json:"id" db:"id"`
	SourceID     string `json:"source_id" db:"source_id"`
	TargetID     string `json:"target_id" db:"target_id"`
	LeadTimeDays int    `json:"lead_time_days" db:"lead_time_days"`
}

// Network bundles the topology read model.
type Network struct {
	Nodes []NetworkNode `json:"nodes"`
	Edges []NetworkEdge `json:"edges"`
}
