// backend-go/internal/repository/planning_repository.go
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/flowplan/backend-go/internal/domain"
	"github.com/flowplan/backend-go/internal/repository/postgres"
	"github.com/lib/pq"
)

// SeriesKey identifies the forecast partition for one series.
type SeriesKey struct {
	ProductID  string
	LocationID string
}

// PlanningRepository supplies the projection engine's read-only inputs:
// inventory observations, forecast points and the network topology. The
// engine itself never touches the database; everything is fetched up front.
type PlanningRepository interface {
	GetSeries(ctx context.Context) ([]domain.Series, error)
	GetSeriesByID(ctx context.Context, seriesID string) (*domain.Series, error)
	GetObservations(ctx context.Context, seriesID string) ([]domain.InventoryObservation, error)
	GetForecasts(ctx context.Context, productID, locationID string, from time.Time) ([]domain.ForecastPoint, error)
	GetObservationsBulk(ctx context.Context, seriesIDs []string) (map[string][]domain.InventoryObservation, error)
	GetForecastsBulk(ctx context.Context, keys []SeriesKey, from time.Time) (map[SeriesKey][]domain.ForecastPoint, error)
	GetNetwork(ctx context.Context) (*domain.Network, error)
}

type planningRepository struct {
	db *postgres.DB
}

func NewPlanningRepository(db *postgres.DB) PlanningRepository {
	return &planningRepository{db: db}
}

func (r *planningRepository) GetSeries(ctx context.Context) ([]domain.Series, error) {
	query := `
		SELECT id, product_id, location_id, product_name, location_name, created_at, updated_at
		FROM series
		ORDER BY product_name, location_name
	`

	var series []domain.Series
	if err := r.db.SelectContext(ctx, &series, query); err != nil {
		return nil, fmt.Errorf("error getting series: %w", err)
	}

	return series, nil
}

func (r *planningRepository) GetSeriesByID(ctx context.Context, seriesID string) (*domain.Series, error) {
	query := `
		SELECT id, product_id, location_id, product_name, location_name, created_at, updated_at
		FROM series
		WHERE id = $1
	`

	var series domain.Series
	if err := r.db.GetContext(ctx, &series, query, seriesID); err != nil {
		return nil, fmt.Errorf("error getting series %s: %w", seriesID, err)
	}

	return &series, nil
}

func (r *planningRepository) GetObservations(ctx context.Context, seriesID string) ([]domain.InventoryObservation, error) {
	query := `
		SELECT series_id, period_date, value
		FROM inventory_observations
		WHERE series_id = $1
		ORDER BY period_date ASC
	`

	var observations []domain.InventoryObservation
	if err := r.db.SelectContext(ctx, &observations, query, seriesID); err != nil {
		return nil, fmt.Errorf("error getting observations for series %s: %w", seriesID, err)
	}

	return observations, nil
}

func (r *planningRepository) GetForecasts(ctx context.Context, productID, locationID string, from time.Time) ([]domain.ForecastPoint, error) {
	query := `
		SELECT product_id, location_id, post_date, forecast, actual
		FROM forecast_points
		WHERE product_id = $1 AND location_id = $2 AND post_date >= $3
		ORDER BY post_date ASC
	`

	var forecasts []domain.ForecastPoint
	if err := r.db.SelectContext(ctx, &forecasts, query, productID, locationID, from); err != nil {
		return nil, fmt.Errorf("error getting forecasts for %s/%s: %w", productID, locationID, err)
	}

	return forecasts, nil
}

func (r *planningRepository) GetObservationsBulk(ctx context.Context, seriesIDs []string) (map[string][]domain.InventoryObservation, error) {
	grouped := make(map[string][]domain.InventoryObservation, len(seriesIDs))
	if len(seriesIDs) == 0 {
		return grouped, nil
	}

	if err := r.db.Acquire(ctx); err != nil {
		return nil, err
	}
	defer r.db.Release()

	query := `
		SELECT series_id, period_date, value
		FROM inventory_observations
		WHERE series_id = ANY($1::text[])
		ORDER BY series_id, period_date ASC
	`

	var observations []domain.InventoryObservation
	if err := r.db.SelectContext(ctx, &observations, query, pq.Array(seriesIDs)); err != nil {
		return nil, fmt.Errorf("error getting observations for %d series: %w", len(seriesIDs), err)
	}

	for _, obs := range observations {
		grouped[obs.SeriesID] = append(grouped[obs.SeriesID], obs)
	}

	return grouped, nil
}

func (r *planningRepository) GetForecastsBulk(ctx context.Context, keys []SeriesKey, from time.Time) (map[SeriesKey][]domain.ForecastPoint, error) {
	grouped := make(map[SeriesKey][]domain.ForecastPoint, len(keys))
	if len(keys) == 0 {
		return grouped, nil
	}

	if err := r.db.Acquire(ctx); err != nil {
		return nil, err
	}
	defer r.db.Release()

	productIDs := make([]string, 0, len(keys))
	locationIDs := make([]string, 0, len(keys))
	wanted := make(map[SeriesKey]struct{}, len(keys))
	for _, key := range keys {
		productIDs = append(productIDs, key.ProductID)
		locationIDs = append(locationIDs, key.LocationID)
		wanted[key] = struct{}{}
	}

	// Over-fetches the product x location cross product; rows not matching
	// a requested pair are filtered out below.
	query := `
		SELECT product_id, location_id, post_date, forecast, actual
		FROM forecast_points
		WHERE product_id = ANY($1::text[]) AND location_id = ANY($2::text[]) AND post_date >= $3
		ORDER BY product_id, location_id, post_date ASC
	`

	var forecasts []domain.ForecastPoint
	if err := r.db.SelectContext(ctx, &forecasts, query, pq.Array(productIDs), pq.Array(locationIDs), from); err != nil {
		return nil, fmt.Errorf("error getting forecasts for %d series: %w", len(keys), err)
	}

	for _, fp := range forecasts {
		key := SeriesKey{ProductID: fp.ProductID, LocationID: fp.LocationID}
		if _, ok := wanted[key]; !ok {
			continue
		}
		grouped[key] = append(grouped[key], fp)
	}

	return grouped, nil
}

func (r *planningRepository) GetNetwork(ctx context.Context) (*domain.Network, error) {
	nodesQuery := `
		SELECT id, name, node_type
		FROM network_nodes
		ORDER BY name
	`

	var nodes []domain.NetworkNode
	if err := r.db.SelectContext(ctx, &nodes, nodesQuery); err != nil {
		return nil, fmt.Errorf("error getting network nodes: %w", err)
	}

	edgesQuery := `
		SELECT id, source_id, target_id, lead_time_days
		FROM network_edges
		ORDER BY id
	`

	var edges []domain.NetworkEdge
	if err := r.db.SelectContext(ctx, &edges, edgesQuery); err != nil {
		return nil, fmt.Errorf("error getting network edges: %w", err)
	}

	return &domain.Network{Nodes: nodes, Edges: edges}, nil
}
