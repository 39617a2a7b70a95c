package fetcher

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// TransportError is a failed call to an external data source: either a
// non-success HTTP status or a network/decoding failure. Its message is
// meant to be shown to the user as-is.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode > 0 && e.Err != nil {
		return fmt.Sprintf("%s request failed: HTTP %d (%v)", e.Op, e.StatusCode, e.Err)
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s request failed: HTTP %d", e.Op, e.StatusCode)
	}
	if e.Err != nil {
		// *url.Error repeats the method and full URL; keep only its cause.
		cause := e.Err
		var urlErr *url.Error
		if errors.As(cause, &urlErr) {
			cause = urlErr.Err
		}
		return fmt.Sprintf("%s request failed: %v", e.Op, cause)
	}
	return e.Op + " request failed"
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError wraps err as a transport failure of op.
func NewTransportError(op string, statusCode int, err error) *TransportError {
	return &TransportError{Op: op, StatusCode: statusCode, Err: err}
}

// StatusCode returns the HTTP status carried by a TransportError in err's
// chain, or 0.
func StatusCode(err error) int {
	var te *TransportError
	if errors.As(err, &te) {
		return te.StatusCode
	}
	return 0
}

// CheckResponse returns nil for 2xx responses. Any other status drains and
// closes the body and returns a TransportError for op.
func CheckResponse(resp *http.Response, op string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
	_ = resp.Body.Close()
	return NewTransportError(op, resp.StatusCode, nil)
}

// Do sends req with hc. Network failures and non-2xx statuses both come back
// as a *TransportError for op; on success the caller owns resp.Body.
func Do(hc *http.Client, req *http.Request, op string) (*http.Response, error) {
	resp, err := hc.Do(req)
	if err != nil {
		return nil, NewTransportError(op, 0, err)
	}
	if err := CheckResponse(resp, op); err != nil {
		return nil, err
	}
	return resp, nil
}
