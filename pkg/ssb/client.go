// Package ssb provides a client for the Statistics Norway (SSB) PxWebApi.
package ssb

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/norgesglass/norgesglass/internal/fetcher"
	"github.com/norgesglass/norgesglass/internal/model"
)

const (
	op = "Population"

	// Table 06913: population per municipality, 1 January.
	populationTable = "06913"
)

// Client defines the SSB operations.
type Client interface {
	// Population returns the latest population for a municipality number.
	Population(ctx context.Context, regionCode string) (*model.Population, error)
}

// Option configures the SSB client.
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
	baseURL string
	http    *http.Client
}

// NewClient creates a new SSB client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: "https://data.ssb.no/api/v0/no/table",
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type selection struct {
	Filter string   `json:"filter"`
	Values []string `json:"values"`
}

type queryItem struct {
	Code      string    `json:"code"`
	Selection selection `json:"selection"`
}

type tableQuery struct {
	Query    []queryItem `json:"query"`
	Response struct {
		Format string `json:"format"`
	} `json:"response"`
}

type jsonStat2 struct {
	Value     []*float64 `json:"value"`
	Dimension struct {
		Tid struct {
			Category struct {
				Index map[string]int    `json:"index"`
				Label map[string]string `json:"label"`
			} `json:"category"`
		} `json:"Tid"`
	} `json:"dimension"`
}

func populationQuery(regionCode string) tableQuery {
	q := tableQuery{
		Query: []queryItem{
			{Code: "Region", Selection: selection{Filter: "item", Values: []string{regionCode}}},
			{Code: "ContentsCode", Selection: selection{Filter: "item", Values: []string{"Folkemengde"}}},
			{Code: "Tid", Selection: selection{Filter: "top", Values: []string{"1"}}},
		},
	}
	q.Response.Format = "json-stat2"
	return q
}

func (c *httpClient) Population(ctx context.Context, regionCode string) (*model.Population, error) {
	payload, err := json.Marshal(populationQuery(regionCode))
	if err != nil {
		return nil, eris.Wrap(err, "ssb: encode query")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+populationTable, bytes.NewReader(payload))
	if err != nil {
		return nil, eris.Wrap(err, "ssb: build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := fetcher.Do(c.http, req, op)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	stat, err := fetcher.DecodeJSONObject[jsonStat2](resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "ssb: decode json-stat2")
	}

	out := &model.Population{Period: latestPeriod(stat)}
	if len(stat.Value) > 0 && stat.Value[0] != nil {
		v := int64(math.Round(*stat.Value[0]))
		out.Value = &v
	}
	return out, nil
}

// latestPeriod returns the label of the single Tid category the "top 1"
// selection yields.
func latestPeriod(stat *jsonStat2) string {
	cat := stat.Dimension.Tid.Category
	for code, idx := range cat.Index {
		if idx != 0 {
			continue
		}
		if label := cat.Label[code]; label != "" {
			return label
		}
		return code
	}
	return ""
}
