package swclient

import (
	"net/http"
	"net/url"
	"time"
)

// RequestOption adjusts a single Request call.
type RequestOption func(*requestOptions)

type requestOptions struct {
	header  http.Header
	query   url.Values
	timeout time.Duration
}

// WithHeader adds a request header. Authorization is owned by the Client
// and cannot be set this way.
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		if http.CanonicalHeaderKey(key) == "Authorization" {
			return
		}
		if o.header == nil {
			o.header = http.Header{}
		}
		o.header.Add(key, value)
	}
}

// WithQuery merges values into the request's query string.
func WithQuery(values url.Values) RequestOption {
	return func(o *requestOptions) {
		if o.query == nil {
			o.query = url.Values{}
		}
		for k, vs := range values {
			for _, v := range vs {
				o.query.Add(k, v)
			}
		}
	}
}

// WithTimeout overrides Config.Timeout for one call. Non-positive values
// are ignored.
func WithTimeout(d time.Duration) RequestOption {
	return func(o *requestOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}
