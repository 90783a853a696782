package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/flowplan/backend-go/internal/cache"
	"github.com/flowplan/backend-go/internal/domain"
	"github.com/flowplan/backend-go/internal/projection"
	"github.com/flowplan/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidHorizon is returned when a caller asks for a negative horizon.
// The engine itself assumes horizon >= 0; this is the boundary check.
var ErrInvalidHorizon = errors.New("horizon days must be >= 0")

const defaultWorkerLimit = 8

type ProjectionService struct {
	repo        repository.PlanningRepository
	cache       cache.ProjectionCache
	workerLimit int
}

func NewProjectionService(repo repository.PlanningRepository, cacheImpl cache.ProjectionCache, workerLimit int) *ProjectionService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopProjectionCache()
	}
	if workerLimit < 1 {
		workerLimit = defaultWorkerLimit
	}
	return &ProjectionService{repo: repo, cache: cacheImpl, workerLimit: workerLimit}
}

// ProjectSeries fetches one series' inputs and runs the projection engine.
// A series without observations yields an empty projection, not an error.
func (s *ProjectionService) ProjectSeries(ctx context.Context, seriesID string, horizonDays int, asOf time.Time) (*domain.SeriesProjection, error) {
	if horizonDays < 0 {
		return nil, ErrInvalidHorizon
	}

	series, err := s.repo.GetSeriesByID(ctx, seriesID)
	if err != nil {
		return nil, err
	}

	observations, err := s.repo.GetObservations(ctx, seriesID)
	if err != nil {
		return nil, err
	}

	forecasts, err := s.repo.GetForecasts(ctx, series.ProductID, series.LocationID, asOf)
	if err != nil {
		return nil, err
	}

	days := projection.Project(projection.Input{
		SeriesID:     seriesID,
		Observations: observations,
		Forecasts:    forecasts,
		HorizonDays:  horizonDays,
		Today:        asOf,
	})

	return &domain.SeriesProjection{
		SeriesID:    seriesID,
		Days:        days,
		EmptySeries: len(observations) == 0,
	}, nil
}

// ProjectMany bulk-fetches inputs for the requested series, partitions them
// and fans the engine out with bounded parallelism. Results come back in
// input order regardless of completion order.
func (s *ProjectionService) ProjectMany(ctx context.Context, seriesIDs []string, horizonDays int, asOf time.Time) ([]domain.SeriesProjection, error) {
	if horizonDays < 0 {
		return nil, ErrInvalidHorizon
	}
	if len(seriesIDs) == 0 {
		return []domain.SeriesProjection{}, nil
	}

	allSeries, err := s.repo.GetSeries(ctx)
	if err != nil {
		return nil, err
	}
	seriesByID := make(map[string]domain.Series, len(allSeries))
	for _, sr := range allSeries {
		seriesByID[sr.ID] = sr
	}

	keys := make([]repository.SeriesKey, 0, len(seriesIDs))
	for _, id := range seriesIDs {
		sr, ok := seriesByID[id]
		if !ok {
			return nil, fmt.Errorf("unknown series %s", id)
		}
		keys = append(keys, repository.SeriesKey{ProductID: sr.ProductID, LocationID: sr.LocationID})
	}

	observationsByID, err := s.repo.GetObservationsBulk(ctx, seriesIDs)
	if err != nil {
		return nil, err
	}

	forecastsByKey, err := s.repo.GetForecastsBulk(ctx, keys, asOf)
	if err != nil {
		return nil, err
	}

	results := make([]domain.SeriesProjection, len(seriesIDs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workerLimit)
	for i, id := range seriesIDs {
		sr := seriesByID[id]
		observations := observationsByID[id]
		forecasts := forecastsByKey[repository.SeriesKey{ProductID: sr.ProductID, LocationID: sr.LocationID}]

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			days := projection.Project(projection.Input{
				SeriesID:     id,
				Observations: observations,
				Forecasts:    forecasts,
				HorizonDays:  horizonDays,
				Today:        asOf,
			})

			results[i] = domain.SeriesProjection{
				SeriesID:    id,
				Days:        days,
				EmptySeries: len(observations) == 0,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// GetSummary projects one series and summarizes it, with a read-through
// cache keyed by series, horizon and as-of day. Cache failures degrade to
// misses.
func (s *ProjectionService) GetSummary(ctx context.Context, seriesID string, horizonDays int, asOf time.Time) (*domain.Summary, error) {
	if horizonDays < 0 {
		return nil, ErrInvalidHorizon
	}

	key := cache.SummaryKey{SeriesID: seriesID, HorizonDays: horizonDays, AsOf: asOf}
	if summary, ok, err := s.cache.GetSummary(ctx, key); err == nil && ok {
		return summary, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("projection: cache get summary failed")
	}

	proj, err := s.ProjectSeries(ctx, seriesID, horizonDays, asOf)
	if err != nil {
		return nil, err
	}

	summary := projection.Summarize(proj.Days)
	if err := s.cache.SetSummary(ctx, key, summary); err != nil {
		log.Warn().Err(err).Msg("projection: cache set summary failed")
	}

	return &summary, nil
}

// GetSeries lists the projectable series.
func (s *ProjectionService) GetSeries(ctx context.Context) ([]domain.Series, error) {
	return s.repo.GetSeries(ctx)
}

// GetNetwork returns the supply network topology read model.
func (s *ProjectionService) GetNetwork(ctx context.Context) (*domain.Network, error) {
	return s.repo.GetNetwork(ctx)
}
