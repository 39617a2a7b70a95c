// Package storedir fetches and parses retail chains' public "find a store"
// pages into store records with coordinates.
package storedir

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/norgesglass/norgesglass/internal/fetcher"
	"github.com/norgesglass/norgesglass/internal/model"
)

// ErrNoStores is returned when a directory page parses to zero stores,
// which usually means the upstream markup changed.
var ErrNoStores = eris.New("parsed 0 stores from upstream response")

// Client defines the store directory operations.
type Client interface {
	// Directory returns every store listed for chain.
	Directory(ctx context.Context, chain string) ([]model.Store, error)
	// Chains lists the configured chain keys, sorted.
	Chains() []string
}

// Option configures the store directory client.
type Option func(*httpClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithMaxBodyBytes caps the directory page size.
func WithMaxBodyBytes(n int64) Option {
	return func(c *httpClient) {
		if n > 0 {
			c.maxBody = n
		}
	}
}

type httpClient struct {
	directories map[string]string
	maxBody     int64
	http        *http.Client
}

// NewClient creates a client for the given chain -> directory URL map.
func NewClient(directories map[string]string, opts ...Option) Client {
	dirs := make(map[string]string, len(directories))
	for k, v := range directories {
		dirs[k] = v
	}
	c := &httpClient{
		directories: dirs,
		maxBody:     2 << 20,
		http:        &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Chains() []string {
	out := make([]string, 0, len(c.directories))
	for k := range c.directories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (c *httpClient) Directory(ctx context.Context, chain string) ([]model.Store, error) {
	dirURL, ok := c.directories[chain]
	if !ok {
		return nil, eris.Errorf("storedir: unknown chain %q", chain)
	}
	op := "Store directory (" + chain + ")"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, dirURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "storedir: build request")
	}
	resp, err := fetcher.Do(c.http, req, op)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := fetcher.ReadAllLimited(resp.Body, c.maxBody)
	if err != nil {
		return nil, fetcher.NewTransportError(op, 0, err)
	}

	stores, err := ParseDirectory(bytes.NewReader(body), chain)
	if err != nil {
		return nil, err
	}
	if len(stores) == 0 {
		zap.L().Warn("storedir: no stores parsed, upstream markup may have changed",
			zap.String("chain", chain),
			zap.Int("bytes", len(body)),
		)
		return nil, fetcher.NewTransportError(op, 0, ErrNoStores)
	}
	return stores, nil
}

// ParseDirectory extracts stores from a directory page. Each store is an
// <li data-lat data-lng data-title> element holding a "street-address" div
// and a "locality" span. Elements with unparseable coordinates are skipped.
func ParseDirectory(r io.Reader, chain string) ([]model.Store, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, eris.Wrap(err, "storedir: parse html")
	}

	var stores []model.Store
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "li" {
			if s, ok := storeFromNode(n, chain); ok {
				stores = append(stores, s)
				return
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return stores, nil
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func hasClass(n *html.Node, class string) bool {
	v, ok := attr(n, "class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}

func storeFromNode(n *html.Node, chain string) (model.Store, bool) {
	latStr, ok1 := attr(n, "data-lat")
	lngStr, ok2 := attr(n, "data-lng")
	title, ok3 := attr(n, "data-title")
	if !ok1 || !ok2 || !ok3 {
		return model.Store{}, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return model.Store{}, false
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if err != nil {
		return model.Store{}, false
	}

	s := model.Store{
		Chain: chain,
		Name:  strings.TrimSpace(title),
		Lat:   &lat,
		Lon:   &lng,
	}
	s.Address = textOf(findFirst(n, "div", "street-address"))
	s.City = textOf(findFirst(n, "span", "locality"))
	return s, true
}

func findFirst(n *html.Node, tag, class string) *html.Node {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode && child.Data == tag && hasClass(child, class) {
			return child
		}
		if found := findFirst(child, tag, class); found != nil {
			return found
		}
	}
	return nil
}

func textOf(n *html.Node) string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			collect(child)
		}
	}
	collect(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}
