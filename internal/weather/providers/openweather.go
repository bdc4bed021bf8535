package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

var (
	errMissingKey = errors.New("openweathermap api key is not configured")

	// errInvalidKey covers geocoding responses that are not valid JSON at
	// all, which in practice means the key is wrong or not yet active.
	errInvalidKey = errors.New("invalid API key or API not activated yet; new keys take about 10 minutes to activate")
)

// OpenWeatherProvider implements weather.Provider against the OpenWeatherMap
// geocoding, current-weather, 5-day forecast and air-pollution endpoints.
// Calls are single-shot: no retries, no backoff, no response caching. The
// only bound on a slow upstream is the injected client's timeout.
type OpenWeatherProvider struct {
	apiKey  string
	geoURL  string
	dataURL string
	client  *http.Client
}

// NewOpenWeatherProvider creates a provider using the shared outbound client.
func NewOpenWeatherProvider(client *http.Client, apiKey string) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		apiKey:  apiKey,
		geoURL:  "https://api.openweathermap.org/geo/1.0",
		dataURL: "https://api.openweathermap.org/data/2.5",
		client:  client,
	}
}

// apiError is OpenWeatherMap's structured error body. Cod is a number on
// some endpoints and a string on others, hence the RawMessage.
type apiError struct {
	Cod     json.RawMessage `json:"cod"`
	Message string          `json:"message"`
}

// get issues a single GET and returns the status code and body. Status
// handling is left to the caller because the geocoding endpoints signal
// errors through the body shape rather than the status line.
func (p *OpenWeatherProvider) get(ctx context.Context, rawURL string) (int, []byte, error) {
	if p.apiKey == "" {
		return 0, nil, errMissingKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}

// statusError turns a non-2xx response into an error, preferring the
// upstream-reported message when the body carries one.
func statusError(op string, status int, body []byte) error {
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
		return fmt.Errorf("%s: %s", op, apiErr.Message)
	}
	return fmt.Errorf("%s: unexpected status %d", op, status)
}

type geoPayload struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	State   string  `json:"state"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Geocode resolves a free-text place query via geo/1.0/direct.
func (p *OpenWeatherProvider) Geocode(ctx context.Context, query string, limit int) ([]weather.GeoMatch, error) {
	values := url.Values{}
	values.Set("q", query)
	values.Set("limit", strconv.Itoa(limit))
	values.Set("appid", p.apiKey)

	_, body, err := p.get(ctx, fmt.Sprintf("%s/direct?%s", p.geoURL, values.Encode()))
	if err != nil {
		return nil, err
	}
	return decodeGeoList(body)
}

// ReverseGeocode resolves coordinates via geo/1.0/reverse.
func (p *OpenWeatherProvider) ReverseGeocode(ctx context.Context, lat, lon float64) ([]weather.GeoMatch, error) {
	values := url.Values{}
	values.Set("lat", fmt.Sprintf("%f", lat))
	values.Set("lon", fmt.Sprintf("%f", lon))
	values.Set("limit", "1")
	values.Set("appid", p.apiKey)

	_, body, err := p.get(ctx, fmt.Sprintf("%s/reverse?%s", p.geoURL, values.Encode()))
	if err != nil {
		return nil, err
	}
	return decodeGeoList(body)
}

// decodeGeoList handles the three shapes the geocoding endpoints produce: a
// JSON array of matches, a {cod, message} error object, or unparseable junk
// (the signature of an invalid or not-yet-activated key).
func decodeGeoList(body []byte) ([]weather.GeoMatch, error) {
	var raw []geoPayload
	if err := json.Unmarshal(body, &raw); err == nil {
		matches := make([]weather.GeoMatch, 0, len(raw))
		for _, m := range raw {
			matches = append(matches, weather.GeoMatch{
				Name:    m.Name,
				Country: m.Country,
				State:   m.State,
				Lat:     m.Lat,
				Lon:     m.Lon,
			})
		}
		return matches, nil
	}

	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
		return nil, fmt.Errorf("geocoding failed: %s", apiErr.Message)
	}
	return nil, errInvalidKey
}

type currentPayload struct {
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
		Pressure  int     `json:"pressure"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Visibility int `json:"visibility"`
	Sys        struct {
		Country string `json:"country"`
		Sunrise int64  `json:"sunrise"`
		Sunset  int64  `json:"sunset"`
	} `json:"sys"`
}

// CurrentConditions fetches data/2.5/weather for the coordinates.
func (p *OpenWeatherProvider) CurrentConditions(ctx context.Context, lat, lon float64, units weather.Units) (weather.Observation, error) {
	values := url.Values{}
	values.Set("lat", fmt.Sprintf("%f", lat))
	values.Set("lon", fmt.Sprintf("%f", lon))
	values.Set("units", string(units))
	values.Set("appid", p.apiKey)

	status, body, err := p.get(ctx, fmt.Sprintf("%s/weather?%s", p.dataURL, values.Encode()))
	if err != nil {
		return weather.Observation{}, err
	}
	if status < 200 || status >= 300 {
		return weather.Observation{}, statusError("current conditions", status, body)
	}

	var payload currentPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return weather.Observation{}, fmt.Errorf("malformed current conditions payload: %w", err)
	}
	if len(payload.Weather) == 0 {
		return weather.Observation{}, errors.New("malformed current conditions payload: missing weather summary")
	}

	return weather.Observation{
		Temp:        payload.Main.Temp,
		FeelsLike:   payload.Main.FeelsLike,
		Humidity:    payload.Main.Humidity,
		WindSpeed:   payload.Wind.Speed,
		Description: payload.Weather[0].Description,
		Icon:        payload.Weather[0].Icon,
		Visibility:  payload.Visibility,
		Pressure:    payload.Main.Pressure,
		Sunrise:     payload.Sys.Sunrise,
		Sunset:      payload.Sys.Sunset,
		Country:     payload.Sys.Country,
	}, nil
}

type forecastPayload struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp      float64 `json:"temp"`
			FeelsLike float64 `json:"feels_like"`
			Humidity  int     `json:"humidity"`
		} `json:"main"`
		Weather []struct {
			Description string `json:"description"`
			Icon        string `json:"icon"`
		} `json:"weather"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
		Pop float64 `json:"pop"`
	} `json:"list"`
}

// Forecast fetches the 5-day/3-hour forecast list for the coordinates.
func (p *OpenWeatherProvider) Forecast(ctx context.Context, lat, lon float64, units weather.Units) ([]weather.ForecastSample, error) {
	values := url.Values{}
	values.Set("lat", fmt.Sprintf("%f", lat))
	values.Set("lon", fmt.Sprintf("%f", lon))
	values.Set("units", string(units))
	values.Set("appid", p.apiKey)

	status, body, err := p.get(ctx, fmt.Sprintf("%s/forecast?%s", p.dataURL, values.Encode()))
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, statusError("forecast", status, body)
	}

	var payload forecastPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("malformed forecast payload: %w", err)
	}
	if len(payload.List) == 0 {
		return nil, errors.New("malformed forecast payload: empty list")
	}

	samples := make([]weather.ForecastSample, 0, len(payload.List))
	for i, item := range payload.List {
		if len(item.Weather) == 0 {
			return nil, fmt.Errorf("malformed forecast payload: entry %d missing weather summary", i)
		}
		samples = append(samples, weather.ForecastSample{
			Timestamp:   item.Dt,
			Temp:        item.Main.Temp,
			FeelsLike:   item.Main.FeelsLike,
			Humidity:    item.Main.Humidity,
			WindSpeed:   item.Wind.Speed,
			Icon:        item.Weather[0].Icon,
			Description: item.Weather[0].Description,
			Pop:         item.Pop,
		})
	}
	return samples, nil
}

type airPollutionPayload struct {
	List []struct {
		Main struct {
			AQI int `json:"aqi"`
		} `json:"main"`
		Components struct {
			CO   float64 `json:"co"`
			NO2  float64 `json:"no2"`
			O3   float64 `json:"o3"`
			PM25 float64 `json:"pm2_5"`
			PM10 float64 `json:"pm10"`
			SO2  float64 `json:"so2"`
		} `json:"components"`
	} `json:"list"`
}

// AirPollution fetches data/2.5/air_pollution. Concentrations are raw µg/m³
// regardless of the requested unit system, so no units parameter is sent.
// An empty list is a valid response meaning no reading for the location.
func (p *OpenWeatherProvider) AirPollution(ctx context.Context, lat, lon float64) ([]weather.PollutionSample, error) {
	values := url.Values{}
	values.Set("lat", fmt.Sprintf("%f", lat))
	values.Set("lon", fmt.Sprintf("%f", lon))
	values.Set("appid", p.apiKey)

	status, body, err := p.get(ctx, fmt.Sprintf("%s/air_pollution?%s", p.dataURL, values.Encode()))
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, statusError("air pollution", status, body)
	}

	var payload airPollutionPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("malformed air pollution payload: %w", err)
	}

	samples := make([]weather.PollutionSample, 0, len(payload.List))
	for _, item := range payload.List {
		samples = append(samples, weather.PollutionSample{
			AQI: item.Main.AQI,
			Components: weather.AirQualityComponents{
				CO:   item.Components.CO,
				NO2:  item.Components.NO2,
				O3:   item.Components.O3,
				PM25: item.Components.PM25,
				PM10: item.Components.PM10,
				SO2:  item.Components.SO2,
			},
		})
	}
	return samples, nil
}
