// Package met provides a client for the MET Norway weather API
// (locationforecast, nowcast and sunrise).
package met

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/norgesglass/norgesglass/internal/fetcher"
	"github.com/norgesglass/norgesglass/internal/geo"
	"github.com/norgesglass/norgesglass/internal/model"
)

// MET rejects coordinates with more than four decimals.
const coordDecimals = 4

// Client defines the MET Norway operations.
type Client interface {
	// Forecast returns the compact location forecast.
	Forecast(ctx context.Context, c geo.Coordinate) (*model.Forecast, error)
	// Nowcast returns the radar nowcast, or nil when c is outside nowcast
	// coverage.
	Nowcast(ctx context.Context, c geo.Coordinate) (*model.Nowcast, error)
	// Sun returns sun events on the given day.
	Sun(ctx context.Context, c geo.Coordinate, day time.Time) (*model.SunEvents, error)
}

// Option configures the MET client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient sets a custom HTTP client. MET requires an identifying
// User-Agent, which fetcher.NewHTTPClient sets.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithUTCOffset sets the offset sun event times are reported in.
func WithUTCOffset(offset string) Option {
	return func(c *httpClient) {
		c.offset = offset
	}
}

type httpClient struct {
	baseURL string
	offset  string
	http    *http.Client
}

// NewClient creates a new MET Norway client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: "https://api.met.no/weatherapi",
		offset:  "+01:00",
		http:    fetcher.NewHTTPClient(fetcher.HTTPOptions{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func coordParams(c geo.Coordinate) url.Values {
	t := c.Truncate(coordDecimals)
	return url.Values{
		"lat": {strconv.FormatFloat(t.Lat, 'f', -1, 64)},
		"lon": {strconv.FormatFloat(t.Lon, 'f', -1, 64)},
	}
}

type instantDetails struct {
	AirTemperature    *float64 `json:"air_temperature"`
	WindSpeed         *float64 `json:"wind_speed"`
	RelativeHumidity  *float64 `json:"relative_humidity"`
	PrecipitationRate *float64 `json:"precipitation_rate"`
}

type timeseriesResponse struct {
	Properties struct {
		Timeseries []struct {
			Time time.Time `json:"time"`
			Data struct {
				Instant struct {
					Details instantDetails `json:"details"`
				} `json:"instant"`
			} `json:"data"`
		} `json:"timeseries"`
	} `json:"properties"`
}

func (c *httpClient) Forecast(ctx context.Context, pt geo.Coordinate) (*model.Forecast, error) {
	reqURL := c.baseURL + "/locationforecast/2.0/compact?" + coordParams(pt).Encode()
	resp, err := fetcher.GetJSON[timeseriesResponse](ctx, c.http, reqURL, "Forecast")
	if err != nil {
		return nil, err
	}

	steps := make([]model.ForecastStep, 0, len(resp.Properties.Timeseries))
	for _, ts := range resp.Properties.Timeseries {
		d := ts.Data.Instant.Details
		steps = append(steps, model.ForecastStep{
			Time:             ts.Time,
			AirTemperature:   d.AirTemperature,
			WindSpeed:        d.WindSpeed,
			RelativeHumidity: d.RelativeHumidity,
		})
	}
	return &model.Forecast{Steps: steps}, nil
}

func (c *httpClient) Nowcast(ctx context.Context, pt geo.Coordinate) (*model.Nowcast, error) {
	reqURL := c.baseURL + "/nowcast/2.0/complete?" + coordParams(pt).Encode()
	resp, err := fetcher.GetJSON[timeseriesResponse](ctx, c.http, reqURL, "Nowcast")
	if err != nil {
		// 422 means the point is outside radar coverage: no data, not a failure.
		if fetcher.StatusCode(err) == http.StatusUnprocessableEntity {
			return nil, nil
		}
		return nil, err
	}
	if len(resp.Properties.Timeseries) == 0 {
		return nil, nil
	}
	return &model.Nowcast{
		PrecipitationRate: resp.Properties.Timeseries[0].Data.Instant.Details.PrecipitationRate,
	}, nil
}

type sunEvent struct {
	Time      string   `json:"time"`
	Elevation *float64 `json:"disc_centre_elevation"`
}

type sunResponse struct {
	Properties struct {
		Sunrise   *sunEvent `json:"sunrise"`
		Sunset    *sunEvent `json:"sunset"`
		SolarNoon *sunEvent `json:"solarnoon"`
	} `json:"properties"`
}

// MET's sunrise API omits seconds.
var sunTimeLayouts = []string{time.RFC3339, "2006-01-02T15:04Z07:00"}

func parseSunTime(ev *sunEvent) (*time.Time, error) {
	if ev == nil || ev.Time == "" {
		return nil, nil
	}
	for _, layout := range sunTimeLayouts {
		if t, err := time.Parse(layout, ev.Time); err == nil {
			return &t, nil
		}
	}
	return nil, eris.Errorf("met: unparseable sun time %q", ev.Time)
}

func (c *httpClient) Sun(ctx context.Context, pt geo.Coordinate, day time.Time) (*model.SunEvents, error) {
	params := coordParams(pt)
	params.Set("date", day.Format(time.DateOnly))
	params.Set("offset", c.offset)

	resp, err := fetcher.GetJSON[sunResponse](ctx, c.http, c.baseURL+"/sunrise/3.0/sun?"+params.Encode(), "Sunrise")
	if err != nil {
		return nil, err
	}

	props := resp.Properties
	out := &model.SunEvents{}
	if out.Sunrise, err = parseSunTime(props.Sunrise); err != nil {
		return nil, err
	}
	if out.Sunset, err = parseSunTime(props.Sunset); err != nil {
		return nil, err
	}
	if out.SolarNoon, err = parseSunTime(props.SolarNoon); err != nil {
		return nil, err
	}
	if props.SolarNoon != nil {
		out.NoonElevation = props.SolarNoon.Elevation
	}
	return out, nil
}
