package weather

// Units selects the measurement system for upstream requests.
type Units string

const (
	UnitsMetric   Units = "metric"
	UnitsImperial Units = "imperial"
)

// Query identifies what to fetch weather for. Either City or both Lat and
// Lon must be set; when both are present the city name is kept as the
// display label and the coordinates are used as-is, without geocoding.
type Query struct {
	City  string
	Lat   *float64
	Lon   *float64
	Units Units
}

// GeoMatch is a single geocoding result, forward or reverse.
type GeoMatch struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	State   string  `json:"state"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// CurrentConditions is the normalized view of the current weather at the
// requested location. Temperatures are rounded to whole degrees in the
// requested unit system; everything else passes through from upstream.
type CurrentConditions struct {
	Temp        int     `json:"temp"`
	FeelsLike   int     `json:"feels_like"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	Visibility  int     `json:"visibility"`
	Pressure    int     `json:"pressure"`
	Sunrise     int64   `json:"sunrise,omitempty"`
	Sunset      int64   `json:"sunset,omitempty"`
}

// HourlyEntry is one 3-hour forecast tick. Pop is a whole percentage.
type HourlyEntry struct {
	Time        int64   `json:"time"`
	Temp        int     `json:"temp"`
	FeelsLike   int     `json:"feels_like"`
	Icon        string  `json:"icon"`
	Description string  `json:"description"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
	Pop         int     `json:"pop"`
}

// DailyEntry is one calendar day reduced from its 3-hour samples.
// Date is the timestamp of the day's first sample.
type DailyEntry struct {
	Date        int64  `json:"date"`
	High        int    `json:"high"`
	Low         int    `json:"low"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
	Pop         int    `json:"pop"`
}

// AirQualityComponents are raw pollutant concentrations in µg/m³.
type AirQualityComponents struct {
	CO   float64 `json:"co"`
	NO2  float64 `json:"no2"`
	O3   float64 `json:"o3"`
	PM25 float64 `json:"pm2_5"`
	PM10 float64 `json:"pm10"`
	SO2  float64 `json:"so2"`
}

// AirQuality carries the provider's 1-5 index plus component concentrations.
type AirQuality struct {
	AQI        int                  `json:"aqi"`
	Components AirQualityComponents `json:"components"`
}

// Document is the fully assembled dashboard payload. It is built once per
// request and never mutated afterwards; AirQuality is nil when the
// air-pollution feed has no readings for the location.
type Document struct {
	City       string            `json:"city"`
	Country    string            `json:"country"`
	Current    CurrentConditions `json:"current"`
	Hourly     []HourlyEntry     `json:"hourly"`
	Daily      []DailyEntry      `json:"daily"`
	AirQuality *AirQuality       `json:"airQuality"`
}
