// Package utils provides common utility functions.
package utils

import (
	"net/http"
	"net/url"
)

// HTTPHelper builds request headers shared by every outbound call.
type HTTPHelper struct {
	userAgent string
}

// NewHTTPHelper creates a new HTTP helper that identifies itself as userAgent.
func NewHTTPHelper(userAgent string) *HTTPHelper {
	return &HTTPHelper{userAgent: userAgent}
}

// IsValidURL reports whether raw is an absolute http(s) URL.
func (h *HTTPHelper) IsValidURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}

	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// BuildHeaders creates HTTP headers with defaults.
// Wikimedia rejects requests without a descriptive User-Agent.
func (h *HTTPHelper) BuildHeaders(accept string, customHeaders map[string]string) http.Header {
	headers := http.Header{}

	headers.Set("User-Agent", h.userAgent)

	if accept == "" {
		accept = "application/json, text/html"
	}

	headers.Set("Accept", accept)

	for key, value := range customHeaders {
		headers.Set(key, value)
	}

	return headers
}

// Apply copies the default headers onto req.
func (h *HTTPHelper) Apply(req *http.Request, accept string) {
	for key, values := range h.BuildHeaders(accept, nil) {
		for _, v := range values {
			req.Header.Set(key, v)
		}
	}
}
