package weather

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is returned when a query carries neither a city name nor a
// complete coordinate pair.
var ErrInvalidInput = errors.New("either a city name or both lat and lon are required")

// NotFoundError is returned when forward geocoding yields no match.
type NotFoundError struct {
	Query string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("city %q not found; try a different spelling or add a country code (e.g. \"London, UK\")", e.Query)
}

// Stages of a weather request at which an upstream failure can occur.
// The HTTP layer maps geocode-stage failures to a client error and
// fetch-stage failures to a server error.
const (
	StageGeocode = "geocode"
	StageFetch   = "fetch"
)

// UpstreamError wraps a provider failure together with the stage it hit.
type UpstreamError struct {
	Stage string
	Err   error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
