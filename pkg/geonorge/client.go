// Package geonorge provides a client for Kartverket's open Geonorge APIs:
// address search, municipality lookup and place names.
package geonorge

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/norgesglass/norgesglass/internal/fetcher"
	"github.com/norgesglass/norgesglass/internal/geo"
	"github.com/norgesglass/norgesglass/internal/model"
)

// Client defines the Geonorge operations.
type Client interface {
	// SearchAddress runs a fuzzy address search.
	SearchAddress(ctx context.Context, query string) ([]model.AddressCandidate, error)
	// AdminUnit returns the municipality containing c.
	AdminUnit(ctx context.Context, c geo.Coordinate) (*model.AdminUnit, error)
	// PlaceNames returns named features within 500 m of c.
	PlaceNames(ctx context.Context, c geo.Coordinate) (model.PlaceNames, error)
}

// Option configures the Geonorge client.
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

// WithMaxResults caps the number of address search hits.
func WithMaxResults(n int) Option {
	return func(c *httpClient) {
		if n > 0 {
			c.maxResults = n
		}
	}
}

type httpClient struct {
	baseURL    string
	maxResults int
	http       *http.Client
}

// NewClient creates a new Geonorge client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL:    "https://ws.geonorge.no",
		maxResults: 5,
		http:       &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchResponse struct {
	Adresser []struct {
		Adressetekst         string `json:"adressetekst"`
		Kommunenavn          string `json:"kommunenavn"`
		Fylkesnavn           string `json:"fylkesnavn"`
		Representasjonspunkt *struct {
			Lat *float64 `json:"lat"`
			Lon *float64 `json:"lon"`
		} `json:"representasjonspunkt"`
	} `json:"adresser"`
}

func (c *httpClient) SearchAddress(ctx context.Context, query string) ([]model.AddressCandidate, error) {
	params := url.Values{
		"sok":          {query},
		"fuzzy":        {"true"},
		"treffPerSide": {strconv.Itoa(c.maxResults)},
		"side":         {"0"},
	}
	resp, err := fetcher.GetJSON[searchResponse](ctx, c.http, c.baseURL+"/adresser/v1/sok?"+params.Encode(), "Address search")
	if err != nil {
		return nil, err
	}

	out := make([]model.AddressCandidate, 0, len(resp.Adresser))
	for _, a := range resp.Adresser {
		cand := model.AddressCandidate{
			Text:         a.Adressetekst,
			Municipality: a.Kommunenavn,
			County:       a.Fylkesnavn,
		}
		if p := a.Representasjonspunkt; p != nil && p.Lat != nil && p.Lon != nil {
			if pt, err := geo.NewCoordinate(*p.Lat, *p.Lon); err == nil {
				cand.Point = &pt
			}
		}
		out = append(out, cand)
	}
	return out, nil
}

func pointParams(c geo.Coordinate) url.Values {
	return url.Values{
		"nord":     {strconv.FormatFloat(c.Lat, 'f', -1, 64)},
		"ost":      {strconv.FormatFloat(c.Lon, 'f', -1, 64)},
		"koordsys": {"4258"},
	}
}

func (c *httpClient) AdminUnit(ctx context.Context, pt geo.Coordinate) (*model.AdminUnit, error) {
	reqURL := fmt.Sprintf("%s/kommuneinfo/v1/punkt?%s", c.baseURL, pointParams(pt).Encode())
	unit, err := fetcher.GetJSON[model.AdminUnit](ctx, c.http, reqURL, "Admin unit")
	if err != nil {
		return nil, err
	}
	unit.MunicipalityNumber = strings.TrimSpace(unit.MunicipalityNumber)
	return unit, nil
}

type placeNamesResponse struct {
	Navn []struct {
		Stedsnavn []struct {
			Skrivemaate string `json:"skrivemåte"`
		} `json:"stedsnavn"`
		Skrivemaate     string `json:"skrivemåte"`
		Navneobjekttype string `json:"navneobjekttype"`
	} `json:"navn"`
}

const maxPlaceNames = 10

func (c *httpClient) PlaceNames(ctx context.Context, pt geo.Coordinate) (model.PlaceNames, error) {
	params := pointParams(pt)
	params.Set("radius", "500")
	params.Set("treffPerSide", strconv.Itoa(maxPlaceNames))

	resp, err := fetcher.GetJSON[placeNamesResponse](ctx, c.http, c.baseURL+"/stedsnavn/v1/punkt?"+params.Encode(), "Place names")
	if err != nil {
		return nil, err
	}

	out := make(model.PlaceNames, 0, len(resp.Navn))
	for _, n := range resp.Navn {
		name := n.Skrivemaate
		if len(n.Stedsnavn) > 0 {
			name = n.Stedsnavn[0].Skrivemaate
		}
		out = append(out, model.PlaceName{Name: name, Type: n.Navneobjekttype})
		if len(out) == maxPlaceNames {
			break
		}
	}
	return out, nil
}
