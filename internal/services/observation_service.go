package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/namefreezers/city-weather-charts/internal/repository"
	"github.com/namefreezers/city-weather-charts/internal/weather"
	"github.com/namefreezers/city-weather-charts/internal/weather/types"
)

var (
	// ErrNothingRecorded is returned when a run stored no observation at all.
	ErrNothingRecorded = errors.New("no observation recorded")

	// ErrInvalidCity is returned for a blank city name.
	ErrInvalidCity = errors.New("invalid city")
)

const (
	DefaultHistoryLimit = 24
	MaxHistoryLimit     = 500
)

// ObservationService records current weather readings for a fixed set of
// cities and serves them back as history.
type ObservationService interface {
	Record(ctx context.Context, locs []types.Location) (runID uuid.UUID, stored int, err error)
	History(ctx context.Context, city string, limit int) ([]repository.Observation, error)
	Run(ctx context.Context, runID uuid.UUID) ([]repository.Observation, error)
}

type observationService struct {
	provider weather.Provider
	repo     repository.ObservationRepository
	recorded prometheus.Counter
	logger   *zap.Logger
}

// NewObservationService wires up service dependencies. recorded may be nil.
func NewObservationService(
	provider weather.Provider,
	repo repository.ObservationRepository,
	recorded prometheus.Counter,
	logger *zap.Logger,
) ObservationService {
	return &observationService{provider, repo, recorded, logger}
}

// Record geocodes each location, fetches its current weather and stores it.
// Cities that fail at any step are logged and skipped.
func (s *observationService) Record(ctx context.Context, locs []types.Location) (uuid.UUID, int, error) {
	runID := uuid.New()
	log := s.logger.With(zap.String("run_id", runID.String()))

	stored := 0
	for _, loc := range locs {
		if err := ctx.Err(); err != nil {
			return runID, stored, err
		}

		city, err := s.provider.Geocode(ctx, loc)
		if err != nil {
			log.Warn("geocoding failed", zap.String("query", loc.Query()), zap.Error(err))
			continue
		}
		w, err := s.provider.FetchCurrent(ctx, city)
		if err != nil {
			log.Warn("current weather fetch failed", zap.String("city", city.Name), zap.Error(err))
			continue
		}

		o := &repository.Observation{
			RunID:     runID,
			City:      city.Name,
			Country:   city.Country,
			Latitude:  city.Latitude,
			Longitude: city.Longitude,
			Temp:      w.Main.Temp,
			TempMin:   w.Main.TempMin,
			TempMax:   w.Main.TempMax,
			Payload:   w.Raw,
		}
		if len(o.Payload) == 0 {
			if o.Payload, err = w.MarshalJSON(); err != nil {
				log.Warn("cannot encode weather payload", zap.String("city", city.Name), zap.Error(err))
				continue
			}
		}
		if err := s.repo.Insert(ctx, o); err != nil {
			if errors.Is(err, repository.ErrSchemaMissing) {
				return runID, stored, err
			}
			continue
		}
		stored++
		if s.recorded != nil {
			s.recorded.Inc()
		}
	}

	if stored == 0 {
		return runID, 0, ErrNothingRecorded
	}
	log.Info("observations recorded", zap.Int("stored", stored), zap.Int("requested", len(locs)))
	return runID, stored, nil
}

// History returns the latest readings for city. limit <= 0 means DefaultHistoryLimit;
// it is capped at MaxHistoryLimit.
func (s *observationService) History(ctx context.Context, city string, limit int) ([]repository.Observation, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, fmt.Errorf("%w: empty city", ErrInvalidCity)
	}
	switch {
	case limit <= 0:
		limit = DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		limit = MaxHistoryLimit
	}

	obs, err := s.repo.ListByCity(ctx, city, limit)
	if err != nil {
		return nil, fmt.Errorf("list observations: %w", err)
	}
	if obs == nil {
		obs = []repository.Observation{}
	}
	return obs, nil
}

// Run returns everything stored by one Record call, in insertion order.
func (s *observationService) Run(ctx context.Context, runID uuid.UUID) ([]repository.Observation, error) {
	obs, err := s.repo.ListByRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("list run %s: %w", runID, err)
	}
	if obs == nil {
		obs = []repository.Observation{}
	}
	return obs, nil
}
