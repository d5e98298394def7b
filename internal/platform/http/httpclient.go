// Package http provides shared HTTP plumbing for outbound calls.
package http

import (
	"net"
	"net/http"
	"time"
)

// NewHTTPClient creates a client for calls to external APIs.
//
// The transport honours proxy environment variables, dials with a short
// timeout, keeps up to 100 idle connections and bounds the TLS handshake.
// timeout caps the whole request. http.DefaultClient has no timeout and
// must not be used for outbound calls.
func NewHTTPClient(timeout time.Duration) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: t}
}
