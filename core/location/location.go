// Package location resolves the user's approximate location from their IP
// address and fetches current weather conditions for it. Consumed by the
// weather event; lookups are disabled entirely when the user has not allowed
// them in config.
package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const (
	ipAPIEndpoint     = "http://ip-api.com/json/"
	openMeteoEndpoint = "https://api.open-meteo.com/v1/forecast"

	lookupTimeout = 5 * time.Second
)

var (
	// ErrLookupDisabled indicates location lookups are switched off in config.
	ErrLookupDisabled = errors.New("location lookup is disabled")

	// ErrLookupFailed indicates the geolocation service rejected the request.
	ErrLookupFailed = errors.New("location lookup failed")
)

// Location is the user's approximate position.
type Location struct {
	City      string
	Country   string
	Latitude  float64
	Longitude float64
	Timezone  string
}

// Weather holds the current conditions at a location.
type Weather struct {
	TemperatureC    float64
	PrecipitationMM float64
	WindSpeedKMH    float64
}

// Resolver looks up location and weather over HTTP.
type Resolver struct {
	client      *http.Client
	allowLookup func() bool

	// endpoints are fields so tests can point at a local server
	ipEndpoint    string
	meteoEndpoint string
}

// NewResolver creates a resolver. allowLookup is consulted before every
// geolocation request; nil means always allowed.
func NewResolver(allowLookup func() bool) *Resolver {
	return &Resolver{
		client:        &http.Client{Timeout: lookupTimeout},
		allowLookup:   allowLookup,
		ipEndpoint:    ipAPIEndpoint,
		meteoEndpoint: openMeteoEndpoint,
	}
}

// Locate resolves the user's approximate location from their IP address.
func (r *Resolver) Locate(ctx context.Context) (*Location, error) {
	if r.allowLookup != nil && !r.allowLookup() {
		return nil, ErrLookupDisabled
	}

	var payload struct {
		Status   string  `json:"status"`
		City     string  `json:"city"`
		Country  string  `json:"country"`
		Lat      float64 `json:"lat"`
		Lon      float64 `json:"lon"`
		Timezone string  `json:"timezone"`
	}
	if err := r.getJSON(ctx, r.ipEndpoint, &payload); err != nil {
		return nil, err
	}
	if payload.Status != "success" {
		return nil, ErrLookupFailed
	}

	return &Location{
		City:      payload.City,
		Country:   payload.Country,
		Latitude:  payload.Lat,
		Longitude: payload.Lon,
		Timezone:  payload.Timezone,
	}, nil
}

// CurrentWeather fetches current conditions for a location from open-meteo.
func (r *Resolver) CurrentWeather(ctx context.Context, loc *Location) (*Weather, error) {
	query := url.Values{}
	query.Set("latitude", fmt.Sprintf("%.4f", loc.Latitude))
	query.Set("longitude", fmt.Sprintf("%.4f", loc.Longitude))
	query.Set("current", "temperature_2m,precipitation,wind_speed_10m")

	var payload struct {
		Current struct {
			Temperature   float64 `json:"temperature_2m"`
			Precipitation float64 `json:"precipitation"`
			WindSpeed     float64 `json:"wind_speed_10m"`
		} `json:"current"`
	}
	if err := r.getJSON(ctx, r.meteoEndpoint+"?"+query.Encode(), &payload); err != nil {
		return nil, err
	}

	return &Weather{
		TemperatureC:    payload.Current.Temperature,
		PrecipitationMM: payload.Current.Precipitation,
		WindSpeedKMH:    payload.Current.WindSpeed,
	}, nil
}

func (r *Resolver) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d from %s", ErrLookupFailed, resp.StatusCode, endpoint)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
