package httpclient

import (
	"net/http"
	"time"
)

const (
	maxIdleConnsPerHost = 8
	idleConnTimeout     = 90 * time.Second
	tlsHandshakeTimeout = 5 * time.Second
)

// New returns a client for a single upstream API with its own connection
// pool. A positive timeout also bounds the wait for response headers.
func New(timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = maxIdleConnsPerHost
	transport.IdleConnTimeout = idleConnTimeout
	transport.TLSHandshakeTimeout = tlsHandshakeTimeout
	if timeout > 0 {
		transport.ResponseHeaderTimeout = timeout
	}

	return &http.Client{Timeout: timeout, Transport: transport}
}
