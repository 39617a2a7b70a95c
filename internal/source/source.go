// Package source is the single entry point to every external data source a
// lookup fans out to.
package source

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/norgesglass/norgesglass/internal/config"
	"github.com/norgesglass/norgesglass/internal/fetcher"
	"github.com/norgesglass/norgesglass/internal/geo"
	"github.com/norgesglass/norgesglass/internal/model"
	"github.com/norgesglass/norgesglass/pkg/arcgis"
	"github.com/norgesglass/norgesglass/pkg/brreg"
	"github.com/norgesglass/norgesglass/pkg/geonorge"
	"github.com/norgesglass/norgesglass/pkg/met"
	"github.com/norgesglass/norgesglass/pkg/ngu"
	"github.com/norgesglass/norgesglass/pkg/nve"
	"github.com/norgesglass/norgesglass/pkg/ssb"
	"github.com/norgesglass/norgesglass/pkg/storedir"
)

// Envelope half-widths, in degrees, for the overlay queries.
const (
	natureDelta   = 0.05
	heritageDelta = 0.005
)

// DataSource is every fetch a lookup can issue. Each call is independent and
// fails with a *fetcher.TransportError on a non-success upstream answer.
type DataSource interface {
	SearchAddress(ctx context.Context, query string) ([]model.AddressCandidate, error)
	AdminUnit(ctx context.Context, c geo.Coordinate) (*model.AdminUnit, error)
	PlaceNames(ctx context.Context, c geo.Coordinate) (model.PlaceNames, error)
	Forecast(ctx context.Context, c geo.Coordinate) (*model.Forecast, error)
	// Nowcast returns nil, nil where the point has no nowcast coverage.
	Nowcast(ctx context.Context, c geo.Coordinate) (*model.Nowcast, error)
	Sunrise(ctx context.Context, c geo.Coordinate, day time.Time) (*model.SunEvents, error)
	NatureReserves(ctx context.Context, c geo.Coordinate) (*model.FeatureSet, error)
	Geology(ctx context.Context, c geo.Coordinate, layer model.GeologyLayerKind) (*model.GeologyLayer, error)
	CulturalHeritage(ctx context.Context, c geo.Coordinate) (*model.FeatureSet, error)
	Population(ctx context.Context, regionCode string) (*model.Population, error)
	Businesses(ctx context.Context, regionCode string) (model.Businesses, error)
	Hydrology(ctx context.Context, c geo.Coordinate) (model.HydroStations, error)
	StoreDirectory(ctx context.Context, chain string) ([]model.Store, error)
}

// Client implements DataSource over the per-service clients.
type Client struct {
	Geonorge geonorge.Client
	MET      met.Client
	Nature   arcgis.Client
	Heritage arcgis.Client
	NGU      ngu.Client
	NVE      nve.Client
	SSB      ssb.Client
	Brreg    brreg.Client
	Stores   storedir.Client
}

var _ DataSource = (*Client)(nil)

// NewHTTPClient builds the shared rate-limited HTTP client from config.
func NewHTTPClient(cfg config.HTTPConfig) *http.Client {
	limits := make(map[string]rate.Limit, len(cfg.RateLimits))
	for _, rl := range cfg.RateLimits {
		limits[rl.Host] = rate.Limit(rl.RPS)
	}
	return fetcher.NewHTTPClient(fetcher.HTTPOptions{
		UserAgent:  cfg.UserAgent,
		Timeout:    time.Duration(cfg.TimeoutSecs) * time.Second,
		RateLimits: limits,
	})
}

// New wires every service client from cfg, sharing one HTTP client.
func New(cfg *config.Config) *Client {
	hc := NewHTTPClient(cfg.HTTP)
	src := cfg.Sources
	return &Client{
		Geonorge: geonorge.NewClient(
			geonorge.WithBaseURL(src.GeonorgeURL),
			geonorge.WithHTTPClient(hc),
			geonorge.WithMaxResults(cfg.Search.MaxResults),
		),
		MET:      met.NewClient(met.WithBaseURL(src.MetURL), met.WithHTTPClient(hc)),
		Nature:   arcgis.NewClient(src.NatureURL, "Nature reserves", arcgis.WithHTTPClient(hc)),
		Heritage: arcgis.NewClient(src.HeritageURL, "Cultural heritage", arcgis.WithHTTPClient(hc)),
		NGU: ngu.NewClient(
			ngu.WithBedrockURL(src.NGUBedrockURL),
			ngu.WithSedimentURL(src.NGUSedimentURL),
			ngu.WithHTTPClient(hc),
		),
		NVE:   nve.NewClient(src.NVEAPIKey, nve.WithBaseURL(src.NVEURL), nve.WithHTTPClient(hc)),
		SSB:   ssb.NewClient(ssb.WithBaseURL(src.SSBURL), ssb.WithHTTPClient(hc)),
		Brreg: brreg.NewClient(brreg.WithBaseURL(src.BrregURL), brreg.WithHTTPClient(hc)),
		Stores: storedir.NewClient(cfg.Stores.Directories,
			storedir.WithHTTPClient(hc),
			storedir.WithMaxBodyBytes(cfg.Stores.MaxBodyBytes),
		),
	}
}

func (c *Client) SearchAddress(ctx context.Context, query string) ([]model.AddressCandidate, error) {
	return c.Geonorge.SearchAddress(ctx, query)
}

func (c *Client) AdminUnit(ctx context.Context, pt geo.Coordinate) (*model.AdminUnit, error) {
	return c.Geonorge.AdminUnit(ctx, pt)
}

func (c *Client) PlaceNames(ctx context.Context, pt geo.Coordinate) (model.PlaceNames, error) {
	return c.Geonorge.PlaceNames(ctx, pt)
}

func (c *Client) Forecast(ctx context.Context, pt geo.Coordinate) (*model.Forecast, error) {
	return c.MET.Forecast(ctx, pt)
}

func (c *Client) Nowcast(ctx context.Context, pt geo.Coordinate) (*model.Nowcast, error) {
	return c.MET.Nowcast(ctx, pt)
}

func (c *Client) Sunrise(ctx context.Context, pt geo.Coordinate, day time.Time) (*model.SunEvents, error) {
	return c.MET.Sun(ctx, pt, day)
}

func (c *Client) NatureReserves(ctx context.Context, pt geo.Coordinate) (*model.FeatureSet, error) {
	return c.Nature.QueryEnvelope(ctx, geo.Envelope(pt, natureDelta))
}

func (c *Client) Geology(ctx context.Context, pt geo.Coordinate, layer model.GeologyLayerKind) (*model.GeologyLayer, error) {
	return c.NGU.Layer(ctx, pt, layer)
}

func (c *Client) CulturalHeritage(ctx context.Context, pt geo.Coordinate) (*model.FeatureSet, error) {
	return c.Heritage.QueryEnvelope(ctx, geo.Envelope(pt, heritageDelta))
}

func (c *Client) Population(ctx context.Context, regionCode string) (*model.Population, error) {
	return c.SSB.Population(ctx, regionCode)
}

func (c *Client) Businesses(ctx context.Context, regionCode string) (model.Businesses, error) {
	return c.Brreg.Newest(ctx, regionCode)
}

func (c *Client) Hydrology(ctx context.Context, pt geo.Coordinate) (model.HydroStations, error) {
	return c.NVE.Stations(ctx, pt)
}

func (c *Client) StoreDirectory(ctx context.Context, chain string) ([]model.Store, error) {
	return c.Stores.Directory(ctx, chain)
}

// Message returns the text a panel shows for err: the transport error's own
// message when there is one, otherwise the root cause.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var te *fetcher.TransportError
	if errors.As(err, &te) {
		return te.Error()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out"
	}
	if cause := eris.Cause(err); cause != nil {
		return cause.Error()
	}
	return err.Error()
}
