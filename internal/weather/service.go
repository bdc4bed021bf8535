package weather

import (
	"context"
	"log"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
)

// unknownLocation is the display label used when reverse geocoding cannot
// name a coordinate pair. Coordinate lookups never fail on naming alone.
const unknownLocation = "Unknown Location"

const (
	// minSuggestionQueryLen is the shortest query the suggestion path will
	// send upstream; anything shorter yields an empty list immediately.
	minSuggestionQueryLen = 2
	maxSuggestions        = 5
)

// Service assembles dashboard weather documents from a single upstream
// provider. It holds no mutable state; every request is independent.
type Service struct {
	provider Provider
}

// NewService creates a new Service.
func NewService(provider Provider) *Service {
	return &Service{provider: provider}
}

// GetWeather resolves the query's location, fetches current conditions,
// forecast and air pollution concurrently, and assembles the result into a
// single Document.
//
// Geocoding failures surface as NotFoundError or a geocode-stage
// UpstreamError; any of the three data fetches failing aborts the whole
// request with a fetch-stage UpstreamError. Missing air-quality data is not
// an error.
func (s *Service) GetWeather(ctx context.Context, q Query) (*Document, error) {
	if q.City == "" && (q.Lat == nil || q.Lon == nil) {
		return nil, ErrInvalidInput
	}

	units := q.Units
	if units == "" {
		units = UnitsMetric
	}

	var (
		lat, lon float64
		city     string
	)

	if q.City != "" && (q.Lat == nil || q.Lon == nil) {
		matches, err := s.provider.Geocode(ctx, q.City, 1)
		if err != nil {
			return nil, &UpstreamError{Stage: StageGeocode, Err: err}
		}
		if len(matches) == 0 {
			return nil, &NotFoundError{Query: q.City}
		}
		city = matches[0].Name
		lat = matches[0].Lat
		lon = matches[0].Lon
	} else {
		lat = *q.Lat
		lon = *q.Lon
		city = q.City
	}

	if city == "" {
		city = s.displayName(ctx, lat, lon)
	}

	var (
		current   Observation
		forecast  []ForecastSample
		pollution []PollutionSample
	)

	// All three fetches run under one cancellation scope: the first failure
	// cancels the siblings and fails the whole request.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = s.provider.CurrentConditions(gctx, lat, lon, units)
		return err
	})
	g.Go(func() error {
		var err error
		forecast, err = s.provider.Forecast(gctx, lat, lon, units)
		return err
	})
	g.Go(func() error {
		var err error
		pollution, err = s.provider.AirPollution(gctx, lat, lon)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, &UpstreamError{Stage: StageFetch, Err: err}
	}

	doc := &Document{
		City:    city,
		Country: current.Country,
		Current: CurrentConditions{
			Temp:        roundTemp(current.Temp),
			FeelsLike:   roundTemp(current.FeelsLike),
			Humidity:    current.Humidity,
			WindSpeed:   current.WindSpeed,
			Description: current.Description,
			Icon:        current.Icon,
			Visibility:  current.Visibility,
			Pressure:    current.Pressure,
			Sunrise:     current.Sunrise,
			Sunset:      current.Sunset,
		},
		Hourly: ToHourly(forecast),
		Daily:  ToDaily(forecast),
	}

	if len(pollution) > 0 {
		doc.AirQuality = &AirQuality{
			AQI:        pollution[0].AQI,
			Components: pollution[0].Components,
		}
	}

	return doc, nil
}

// displayName reverse-geocodes coordinates into a label. It never fails:
// the coordinates remain usable, so naming problems degrade to a fixed
// fallback instead of failing the request.
func (s *Service) displayName(ctx context.Context, lat, lon float64) string {
	matches, err := s.provider.ReverseGeocode(ctx, lat, lon)
	if err != nil {
		log.Printf("reverse geocoding failed for (%.4f, %.4f): %v", lat, lon, err)
		return unknownLocation
	}
	if len(matches) == 0 || matches[0].Name == "" {
		return unknownLocation
	}
	return matches[0].Name
}

// Suggestions is the lenient search-as-you-type path: up to five geocoding
// matches, with every failure mode degrading to an empty list since the
// caller only renders non-blocking UI hints.
func (s *Service) Suggestions(ctx context.Context, query string) []GeoMatch {
	if utf8.RuneCountInString(query) < minSuggestionQueryLen {
		return []GeoMatch{}
	}

	matches, err := s.provider.Geocode(ctx, query, maxSuggestions)
	if err != nil {
		log.Printf("suggestion lookup failed for %q: %v", query, err)
		return []GeoMatch{}
	}
	if matches == nil {
		matches = []GeoMatch{}
	}
	return matches
}
