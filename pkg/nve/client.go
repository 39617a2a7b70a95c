// Package nve provides a client for the NVE HydAPI station register.
package nve

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/norgesglass/norgesglass/internal/fetcher"
	"github.com/norgesglass/norgesglass/internal/geo"
	"github.com/norgesglass/norgesglass/internal/model"
)

const (
	op = "Hydrology"

	// Stations are searched inside an octagon of this radius, in degrees.
	searchRadius   = 0.1
	searchVertices = 8

	maxBody = 512 * 1024
	// Water level and discharge.
	parameters = "1000,1001"
)

// ErrNoAPIKey is returned when no HydAPI key is configured.
var ErrNoAPIKey = eris.New("NVE API key not configured")

// Client defines the HydAPI operations.
type Client interface {
	// Stations returns active water level and discharge stations near c.
	Stations(ctx context.Context, c geo.Coordinate) (model.HydroStations, error)
}

// Option configures the NVE client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a new HydAPI client. An empty apiKey is allowed; every
// call then fails with ErrNoAPIKey.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://hydapi.nve.no/api/v1",
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type stationsResponse struct {
	Data []struct {
		StationName       string `json:"stationName"`
		ParameterName     string `json:"parameterName"`
		StationStatusName string `json:"stationStatusName"`
		SeriesList        []struct {
			ParameterName string `json:"parameterName"`
		} `json:"seriesList"`
	} `json:"data"`
}

func (c *httpClient) Stations(ctx context.Context, pt geo.Coordinate) (model.HydroStations, error) {
	if c.apiKey == "" {
		return nil, fetcher.NewTransportError(op, http.StatusServiceUnavailable, ErrNoAPIKey)
	}
	if err := geo.CheckNorway(pt); err != nil {
		return nil, fetcher.NewTransportError(op, 0, err)
	}

	polygon, err := geo.CircleWKT(pt, searchRadius, searchVertices)
	if err != nil {
		return nil, err
	}
	params := url.Values{
		"Active":        {"1"},
		"ParameterName": {parameters},
		"Polygon":       {polygon},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/Stations?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "nve: build request")
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := fetcher.Do(c.http, req, op)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := fetcher.ReadAllLimited(resp.Body, maxBody)
	if err != nil {
		return nil, fetcher.NewTransportError(op, 0, err)
	}
	parsed, err := fetcher.DecodeJSONObject[stationsResponse](bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "nve: decode stations")
	}

	out := make(model.HydroStations, 0, len(parsed.Data))
	for _, s := range parsed.Data {
		param := s.ParameterName
		if param == "" && len(s.SeriesList) > 0 {
			param = s.SeriesList[0].ParameterName
		}
		out = append(out, model.HydroStation{
			Name:      s.StationName,
			Parameter: param,
			Status:    s.StationStatusName,
		})
	}
	return out, nil
}
