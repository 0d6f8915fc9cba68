package httpclient

import (
	"net/http"
	"time"
)

const DefaultTimeout = 8 * time.Second

// New returns a client for talking to the Dog Tinder API. A non-positive
// timeout falls back to DefaultTimeout.
func New(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = 4
	transport.IdleConnTimeout = 30 * time.Second

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
