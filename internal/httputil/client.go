// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the HTTP client shared by the inference SDKs.
package httputil

import (
	"net/http"

	"github.com/pdiddy/trivia-cards/pkg/types"
)

// DefaultUserAgent is sent when the configuration names none.
const DefaultUserAgent = "trivia-cards"

// NewClient returns an HTTP client with the configured round-trip timeout
// that stamps every request with a User-Agent. A zero Timeout leaves the
// client unbounded; callers bound calls with a context deadline instead.
func NewClient(cfg types.HTTPConfig) *http.Client {
	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	return &http.Client{
		Timeout:   cfg.Timeout,
		Transport: &userAgentTransport{base: http.DefaultTransport, userAgent: ua},
	}
}

// userAgentTransport sets the User-Agent header unless the request already
// carries one set by the caller.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.base.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(r)
}
