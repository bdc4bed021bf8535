package weather

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

// stubProvider implements Provider with overridable behaviour per capability.
type stubProvider struct {
	geocodeFn  func(ctx context.Context, query string, limit int) ([]GeoMatch, error)
	reverseFn  func(ctx context.Context, lat, lon float64) ([]GeoMatch, error)
	currentFn  func(ctx context.Context, lat, lon float64, units Units) (Observation, error)
	forecastFn func(ctx context.Context, lat, lon float64, units Units) ([]ForecastSample, error)
	airFn      func(ctx context.Context, lat, lon float64) ([]PollutionSample, error)
}

func (s *stubProvider) Geocode(ctx context.Context, query string, limit int) ([]GeoMatch, error) {
	if s.geocodeFn == nil {
		return nil, errors.New("geocode not stubbed")
	}
	return s.geocodeFn(ctx, query, limit)
}

func (s *stubProvider) ReverseGeocode(ctx context.Context, lat, lon float64) ([]GeoMatch, error) {
	if s.reverseFn == nil {
		return nil, errors.New("reverse geocode not stubbed")
	}
	return s.reverseFn(ctx, lat, lon)
}

func (s *stubProvider) CurrentConditions(ctx context.Context, lat, lon float64, units Units) (Observation, error) {
	if s.currentFn == nil {
		return Observation{}, errors.New("current conditions not stubbed")
	}
	return s.currentFn(ctx, lat, lon, units)
}

func (s *stubProvider) Forecast(ctx context.Context, lat, lon float64, units Units) ([]ForecastSample, error) {
	if s.forecastFn == nil {
		return nil, errors.New("forecast not stubbed")
	}
	return s.forecastFn(ctx, lat, lon, units)
}

func (s *stubProvider) AirPollution(ctx context.Context, lat, lon float64) ([]PollutionSample, error) {
	if s.airFn == nil {
		return nil, errors.New("air pollution not stubbed")
	}
	return s.airFn(ctx, lat, lon)
}

// healthyProvider returns a stub serving a plausible London dataset.
func healthyProvider() *stubProvider {
	base := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	var forecast []ForecastSample
	for i := 0; i < 16; i++ {
		forecast = append(forecast, sample(base.Add(time.Duration(i)*3*time.Hour), 18+float64(i%5), 0.2))
	}

	return &stubProvider{
		geocodeFn: func(ctx context.Context, query string, limit int) ([]GeoMatch, error) {
			return []GeoMatch{{Name: "London", Country: "GB", Lat: 51.5073, Lon: -0.1276}}, nil
		},
		reverseFn: func(ctx context.Context, lat, lon float64) ([]GeoMatch, error) {
			return []GeoMatch{{Name: "Hyderabad", Country: "IN", Lat: lat, Lon: lon}}, nil
		},
		currentFn: func(ctx context.Context, lat, lon float64, units Units) (Observation, error) {
			return Observation{
				Temp:        19.6,
				FeelsLike:   18.2,
				Humidity:    72,
				WindSpeed:   4.1,
				Description: "overcast clouds",
				Icon:        "04d",
				Visibility:  10000,
				Pressure:    1014,
				Sunrise:     1717214400,
				Sunset:      1717273200,
				Country:     "GB",
			}, nil
		},
		forecastFn: func(ctx context.Context, lat, lon float64, units Units) ([]ForecastSample, error) {
			return forecast, nil
		},
		airFn: func(ctx context.Context, lat, lon float64) ([]PollutionSample, error) {
			return []PollutionSample{{
				AQI:        2,
				Components: AirQualityComponents{CO: 201.9, NO2: 18.4, O3: 68.7, PM25: 5.3, PM10: 7.8, SO2: 3.1},
			}}, nil
		},
	}
}

func ptr(v float64) *float64 { return &v }

func TestGetWeatherByCityName(t *testing.T) {
	svc := NewService(healthyProvider())

	doc, err := svc.GetWeather(context.Background(), Query{City: "London", Units: UnitsMetric})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.City != "London" {
		t.Errorf("expected city London, got %q", doc.City)
	}
	if doc.Country != "GB" {
		t.Errorf("expected country GB, got %q", doc.Country)
	}
	if doc.Current.Temp != 20 {
		t.Errorf("expected current temp 20, got %d", doc.Current.Temp)
	}
	if n := len(doc.Hourly); n < 1 || n > 8 {
		t.Errorf("expected 1-8 hourly entries, got %d", n)
	}
	if n := len(doc.Daily); n < 1 || n > 6 {
		t.Errorf("expected 1-6 daily entries, got %d", n)
	}
	if doc.AirQuality == nil || doc.AirQuality.AQI != 2 {
		t.Errorf("expected air quality with AQI 2, got %+v", doc.AirQuality)
	}
}

func TestGetWeatherCityNotFound(t *testing.T) {
	p := healthyProvider()
	p.geocodeFn = func(ctx context.Context, query string, limit int) ([]GeoMatch, error) {
		return []GeoMatch{}, nil
	}
	svc := NewService(p)

	_, err := svc.GetWeather(context.Background(), Query{City: "Zzqxnotacity"})
	var nfe *NotFoundError
	if !errors.As(err, &nfe) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if msg := nfe.Error(); msg == "" || !containsAll(msg, "Zzqxnotacity", "spelling", "country code") {
		t.Errorf("not-found message should suggest alternate spelling or country code, got %q", msg)
	}
}

func TestGetWeatherGeocodeFailure(t *testing.T) {
	p := healthyProvider()
	p.geocodeFn = func(ctx context.Context, query string, limit int) ([]GeoMatch, error) {
		return nil, errors.New("invalid API key")
	}
	svc := NewService(p)

	_, err := svc.GetWeather(context.Background(), Query{City: "London"})
	var ue *UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if ue.Stage != StageGeocode {
		t.Errorf("expected geocode stage, got %q", ue.Stage)
	}
}

func TestGetWeatherFetchFailureAbortsRequest(t *testing.T) {
	p := healthyProvider()
	p.forecastFn = func(ctx context.Context, lat, lon float64, units Units) ([]ForecastSample, error) {
		return nil, errors.New("connection reset")
	}
	svc := NewService(p)

	doc, err := svc.GetWeather(context.Background(), Query{City: "London"})
	if doc != nil {
		t.Fatalf("expected no partial document, got %+v", doc)
	}
	var ue *UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if ue.Stage != StageFetch {
		t.Errorf("expected fetch stage, got %q", ue.Stage)
	}
}

func TestGetWeatherEmptyAirPollution(t *testing.T) {
	p := healthyProvider()
	p.airFn = func(ctx context.Context, lat, lon float64) ([]PollutionSample, error) {
		return nil, nil
	}
	svc := NewService(p)

	doc, err := svc.GetWeather(context.Background(), Query{City: "London"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.AirQuality != nil {
		t.Errorf("expected nil airQuality, got %+v", doc.AirQuality)
	}
	if len(doc.Hourly) == 0 || len(doc.Daily) == 0 {
		t.Error("other fields should be unaffected by missing air quality")
	}
}

func TestGetWeatherByCoordinates(t *testing.T) {
	svc := NewService(healthyProvider())

	doc, err := svc.GetWeather(context.Background(), Query{Lat: ptr(17.38), Lon: ptr(78.48)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.City != "Hyderabad" {
		t.Errorf("expected reverse-geocoded name, got %q", doc.City)
	}
}

func TestGetWeatherReverseGeocodeNeverFails(t *testing.T) {
	cases := []struct {
		name string
		fn   func(ctx context.Context, lat, lon float64) ([]GeoMatch, error)
	}{
		{"upstream error", func(ctx context.Context, lat, lon float64) ([]GeoMatch, error) {
			return nil, errors.New("boom")
		}},
		{"empty result", func(ctx context.Context, lat, lon float64) ([]GeoMatch, error) {
			return []GeoMatch{}, nil
		}},
		{"blank name", func(ctx context.Context, lat, lon float64) ([]GeoMatch, error) {
			return []GeoMatch{{Name: ""}}, nil
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := healthyProvider()
			p.reverseFn = tc.fn
			svc := NewService(p)

			doc, err := svc.GetWeather(context.Background(), Query{Lat: ptr(17.38), Lon: ptr(78.48)})
			if err != nil {
				t.Fatalf("coordinate lookup must not fail on naming: %v", err)
			}
			if doc.City != "Unknown Location" {
				t.Errorf("expected fallback label, got %q", doc.City)
			}
		})
	}
}

func TestGetWeatherCityLabelWinsOverGeocoding(t *testing.T) {
	p := healthyProvider()
	p.geocodeFn = func(ctx context.Context, query string, limit int) ([]GeoMatch, error) {
		t.Error("geocode must not be called when coordinates are supplied")
		return nil, nil
	}
	svc := NewService(p)

	doc, err := svc.GetWeather(context.Background(), Query{City: "Paris", Lat: ptr(48.85), Lon: ptr(2.35)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.City != "Paris" {
		t.Errorf("expected supplied city label, got %q", doc.City)
	}
}

func TestGetWeatherMissingInput(t *testing.T) {
	svc := NewService(healthyProvider())

	_, err := svc.GetWeather(context.Background(), Query{})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	_, err = svc.GetWeather(context.Background(), Query{Lat: ptr(17.38)})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for half a coordinate pair, got %v", err)
	}
}

func TestGetWeatherDefaultsToMetric(t *testing.T) {
	p := healthyProvider()
	var gotUnits Units
	inner := p.currentFn
	p.currentFn = func(ctx context.Context, lat, lon float64, units Units) (Observation, error) {
		gotUnits = units
		return inner(ctx, lat, lon, units)
	}
	svc := NewService(p)

	if _, err := svc.GetWeather(context.Background(), Query{City: "London"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotUnits != UnitsMetric {
		t.Errorf("expected metric default, got %q", gotUnits)
	}
}

func TestGetWeatherIdempotent(t *testing.T) {
	svc := NewService(healthyProvider())
	q := Query{City: "London", Units: UnitsMetric}

	first, err := svc.GetWeather(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.GetWeather(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Errorf("identical queries must produce identical documents:\n%s\n%s", a, b)
	}
}

func TestSuggestions(t *testing.T) {
	p := healthyProvider()
	p.geocodeFn = func(ctx context.Context, query string, limit int) ([]GeoMatch, error) {
		if limit != 5 {
			t.Errorf("expected suggestion limit 5, got %d", limit)
		}
		return []GeoMatch{
			{Name: "London", Country: "GB", Lat: 51.5, Lon: -0.12},
			{Name: "London", Country: "CA", State: "Ontario", Lat: 42.98, Lon: -81.24},
		}, nil
	}
	svc := NewService(p)

	matches := svc.Suggestions(context.Background(), "Lond")
	if len(matches) != 2 {
		t.Fatalf("expected 2 suggestions, got %d", len(matches))
	}
}

func TestSuggestionsDegradeToEmptyList(t *testing.T) {
	p := healthyProvider()
	p.geocodeFn = func(ctx context.Context, query string, limit int) ([]GeoMatch, error) {
		return nil, errors.New("upstream down")
	}
	svc := NewService(p)

	if got := svc.Suggestions(context.Background(), "London"); got == nil || len(got) != 0 {
		t.Errorf("upstream failure should yield empty list, got %v", got)
	}
	if got := svc.Suggestions(context.Background(), "L"); got == nil || len(got) != 0 {
		t.Errorf("short query should yield empty list without an upstream call, got %v", got)
	}
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
