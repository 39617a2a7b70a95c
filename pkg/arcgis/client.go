// Package arcgis queries ArcGIS REST MapServer layers by envelope and returns
// the matching features as GeoJSON.
package arcgis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/norgesglass/norgesglass/internal/fetcher"
	"github.com/norgesglass/norgesglass/internal/model"
)

// Client queries one MapServer layer.
type Client interface {
	// QueryEnvelope returns every feature intersecting the lon/lat bounds.
	QueryEnvelope(ctx context.Context, bounds *geom.Bounds) (*model.FeatureSet, error)
}

// Option configures the ArcGIS client.
type Option func(*httpClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithOutFields restricts the returned attribute columns. Default "*".
func WithOutFields(fields ...string) Option {
	return func(c *httpClient) {
		c.outFields = strings.Join(fields, ",")
	}
}

type httpClient struct {
	layerURL  string
	op        string
	outFields string
	http      *http.Client
}

// NewClient creates a client for the layer at layerURL (ending in the layer
// number, e.g. ".../MapServer/0"). op names the layer in error messages.
func NewClient(layerURL, op string, opts ...Option) Client {
	c := &httpClient{
		layerURL:  strings.TrimRight(layerURL, "/"),
		op:        op,
		outFields: "*",
		http:      &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// errorEnvelope is what ArcGIS sends, with HTTP 200, when a query fails.
type errorEnvelope struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func (c *httpClient) QueryEnvelope(ctx context.Context, bounds *geom.Bounds) (*model.FeatureSet, error) {
	envelope := strings.Join([]string{
		formatFloat(bounds.Min(0)), formatFloat(bounds.Min(1)),
		formatFloat(bounds.Max(0)), formatFloat(bounds.Max(1)),
	}, ",")
	params := url.Values{
		"where":          {"1=1"},
		"geometry":       {envelope},
		"geometryType":   {"esriGeometryEnvelope"},
		"inSR":           {"4326"},
		"outSR":          {"4326"},
		"spatialRel":     {"esriSpatialRelIntersects"},
		"outFields":      {c.outFields},
		"returnGeometry": {"true"},
		"f":              {"geojson"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.layerURL+"/query?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrapf(err, "arcgis: %s build request", c.op)
	}
	resp, err := fetcher.Do(c.http, req, c.op)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := fetcher.ReadAllLimited(resp.Body, 8<<20)
	if err != nil {
		return nil, fetcher.NewTransportError(c.op, 0, err)
	}

	var envErr errorEnvelope
	if err := json.Unmarshal(body, &envErr); err == nil && envErr.Error != nil {
		return nil, fetcher.NewTransportError(c.op, envErr.Error.Code, eris.New(envErr.Error.Message))
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(body, &fc); err != nil {
		return nil, eris.Wrapf(err, "arcgis: %s decode geojson", c.op)
	}
	return &model.FeatureSet{Collection: &fc}, nil
}
