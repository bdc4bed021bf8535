package weather

import (
	"context"
)

// Observation is a provider's raw current-conditions reading, before
// normalization into CurrentConditions.
type Observation struct {
	Temp        float64
	FeelsLike   float64
	Humidity    int
	WindSpeed   float64
	Description string
	Icon        string
	Visibility  int
	Pressure    int
	Sunrise     int64 // unix seconds; 0 when upstream omits it
	Sunset      int64
	Country     string // ISO country code; may be empty
}

// ForecastSample is one raw 3-hour forecast tick in upstream order.
type ForecastSample struct {
	Timestamp   int64
	Temp        float64
	FeelsLike   float64
	Humidity    int
	WindSpeed   float64
	Icon        string
	Description string
	Pop         float64 // precipitation probability, 0.0-1.0
}

// PollutionSample is one raw air-pollution reading.
type PollutionSample struct {
	AQI        int // provider scale, 1 (good) to 5 (very poor)
	Components AirQualityComponents
}

// Provider abstracts the upstream weather data vendor so the assembly and
// normalization logic stays independent of any one vendor's schema.
type Provider interface {
	// Geocode resolves a free-text place query to at most limit matches.
	Geocode(ctx context.Context, query string, limit int) ([]GeoMatch, error)
	// ReverseGeocode resolves coordinates to candidate place names.
	ReverseGeocode(ctx context.Context, lat, lon float64) ([]GeoMatch, error)
	CurrentConditions(ctx context.Context, lat, lon float64, units Units) (Observation, error)
	Forecast(ctx context.Context, lat, lon float64, units Units) ([]ForecastSample, error)
	// AirPollution is unit-independent; an empty result is not an error.
	AirPollution(ctx context.Context, lat, lon float64) ([]PollutionSample, error)
}
