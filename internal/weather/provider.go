package weather

import (
	"context"

	"github.com/namefreezers/city-weather-charts/internal/weather/types"
)

// Provider is everything the reports need from a weather source.
type Provider interface {
	Geocode(ctx context.Context, loc types.Location) (types.CityInfo, error)
	FetchCurrent(ctx context.Context, city types.CityInfo) (types.CurrentWeather, error)
	FetchForecast(ctx context.Context, city types.CityInfo) (types.Forecast, error)
}
