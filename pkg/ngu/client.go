// Package ngu queries the Geological Survey of Norway (NGU) WMS services for
// the bedrock and superficial deposit under a point.
package ngu

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/norgesglass/norgesglass/internal/fetcher"
	"github.com/norgesglass/norgesglass/internal/geo"
	"github.com/norgesglass/norgesglass/internal/model"
)

// Client defines the NGU operations.
type Client interface {
	// Layer returns the first mapped feature under c in the given layer.
	// A point with no mapped feature is Available=false, not an error.
	Layer(ctx context.Context, c geo.Coordinate, kind model.GeologyLayerKind) (*model.GeologyLayer, error)
}

// Option configures the NGU client.
type Option func(*httpClient)

// WithBedrockURL sets the bedrock WMS endpoint.
func WithBedrockURL(u string) Option {
	return func(c *httpClient) {
		c.services[model.GeologyBedrock] = service{url: u, layer: c.services[model.GeologyBedrock].layer}
	}
}

// WithSedimentURL sets the superficial deposits WMS endpoint.
func WithSedimentURL(u string) Option {
	return func(c *httpClient) {
		c.services[model.GeologySediment] = service{url: u, layer: c.services[model.GeologySediment].layer}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type service struct {
	url   string
	layer string
}

type httpClient struct {
	services map[model.GeologyLayerKind]service
	http     *http.Client
}

// NewClient creates a new NGU client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		services: map[model.GeologyLayerKind]service{
			model.GeologyBedrock: {
				url:   "https://geo.ngu.no/mapserver/BerggrunnWMS3",
				layer: "Berggrunn_sammenstilt_hovedbergarter",
			},
			model.GeologySediment: {
				url:   "https://geo.ngu.no/mapserver/LosmasserWMS3",
				layer: "Losmasser_temakart_nasjonal",
			},
		},
		http: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// bboxDelta is the half-width of the GetFeatureInfo window in degrees.
const bboxDelta = 0.01

func (c *httpClient) Layer(ctx context.Context, pt geo.Coordinate, kind model.GeologyLayerKind) (*model.GeologyLayer, error) {
	op := "Geology (" + string(kind) + ")"
	svc, ok := c.services[kind]
	if !ok {
		return nil, eris.Errorf("ngu: layer must be %q or %q, got %q", model.GeologyBedrock, model.GeologySediment, kind)
	}
	if err := geo.CheckNorway(pt); err != nil {
		return nil, fetcher.NewTransportError(op, 0, err)
	}

	params := url.Values{
		"SERVICE":      {"WMS"},
		"VERSION":      {"1.1.1"},
		"REQUEST":      {"GetFeatureInfo"},
		"INFO_FORMAT":  {"application/vnd.ogc.gml"},
		"SRS":          {"EPSG:4326"},
		"WIDTH":        {"101"},
		"HEIGHT":       {"101"},
		"X":            {"50"},
		"Y":            {"50"},
		"LAYERS":       {svc.layer},
		"QUERY_LAYERS": {svc.layer},
		"BBOX": {fmt.Sprintf("%f,%f,%f,%f",
			pt.Lon-bboxDelta, pt.Lat-bboxDelta, pt.Lon+bboxDelta, pt.Lat+bboxDelta)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, svc.url+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "ngu: build request")
	}
	resp, err := fetcher.Do(c.http, req, op)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	fields, err := ParseGML(resp.Body)
	if err != nil {
		return nil, err
	}
	return &model.GeologyLayer{
		Layer:     kind,
		Available: len(fields) > 0,
		Fields:    fields,
	}, nil
}

// ParseGML extracts element name/text pairs from the first *_feature element
// of a MapServer msGMLOutput document. The map is empty, never nil, when the
// document has no feature.
func ParseGML(r io.Reader) (map[string]string, error) {
	fields := make(map[string]string)
	decoder := fetcher.NewXMLDecoder(r)

	inFeature := false
	var currentTag string

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "ngu: parse GML")
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local
			if strings.HasSuffix(name, "_feature") {
				inFeature = true
				continue
			}
			if inFeature {
				currentTag = name
			}
		case xml.CharData:
			if inFeature && currentTag != "" {
				if text := strings.TrimSpace(string(t)); text != "" {
					fields[currentTag] = text
				}
			}
		case xml.EndElement:
			name := t.Name.Local
			if strings.HasSuffix(name, "_feature") {
				return fields, nil
			}
			if inFeature {
				currentTag = ""
			}
		}
	}

	return fields, nil
}
