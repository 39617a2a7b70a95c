// Package brreg provides a client for the Brønnøysund Register Centre's
// Enhetsregisteret API.
package brreg

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/norgesglass/norgesglass/internal/fetcher"
	"github.com/norgesglass/norgesglass/internal/model"
)

// Client defines the Enhetsregisteret operations.
type Client interface {
	// Newest returns the most recently founded units in a municipality.
	Newest(ctx context.Context, regionCode string) (model.Businesses, error)
}

// Option configures the Brreg client.
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

// WithPageSize sets how many units are returned.
func WithPageSize(n int) Option {
	return func(c *httpClient) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

type httpClient struct {
	baseURL  string
	pageSize int
	http     *http.Client
}

// NewClient creates a new Brreg client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL:  "https://data.brreg.no/enhetsregisteret/api",
		pageSize: 5,
		http:     &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type unitsResponse struct {
	Embedded struct {
		Enheter []struct {
			Navn                string `json:"navn"`
			Organisasjonsnummer string `json:"organisasjonsnummer"`
			Stiftelsesdato      string `json:"stiftelsesdato"`
			Organisasjonsform   *struct {
				Beskrivelse string `json:"beskrivelse"`
			} `json:"organisasjonsform"`
		} `json:"enheter"`
	} `json:"_embedded"`
}

func (c *httpClient) Newest(ctx context.Context, regionCode string) (model.Businesses, error) {
	params := url.Values{
		"kommunenummer": {regionCode},
		"size":          {strconv.Itoa(c.pageSize)},
		"sort":          {"stiftelsesdato,desc"},
	}
	resp, err := fetcher.GetJSON[unitsResponse](ctx, c.http, c.baseURL+"/enheter?"+params.Encode(), "Businesses")
	if err != nil {
		return nil, err
	}

	units := resp.Embedded.Enheter
	out := make(model.Businesses, 0, len(units))
	for _, u := range units {
		b := model.Business{
			Name:      u.Navn,
			OrgNumber: u.Organisasjonsnummer,
			Founded:   u.Stiftelsesdato,
		}
		if u.Organisasjonsform != nil {
			b.OrgForm = u.Organisasjonsform.Beskrivelse
		}
		out = append(out, b)
		if len(out) == c.pageSize {
			break
		}
	}
	return out, nil
}
