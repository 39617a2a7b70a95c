package fetcher

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/rotisserie/eris"
)

// DecodeJSONObject decodes a single JSON object from a reader.
func DecodeJSONObject[T any](r io.Reader) (*T, error) {
	var obj T
	if err := json.NewDecoder(r).Decode(&obj); err != nil {
		return nil, eris.Wrap(err, "json: decode object")
	}
	return &obj, nil
}

// GetJSON issues a GET for rawURL and decodes the JSON body into T.
func GetJSON[T any](ctx context.Context, hc *http.Client, rawURL, op string) (*T, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "%s: build request", op)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := Do(hc, req, op)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	out, err := DecodeJSONObject[T](resp.Body)
	if err != nil {
		return nil, eris.Wrapf(err, "%s: decode response", op)
	}
	return out, nil
}
