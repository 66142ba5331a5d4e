package client

import (
	"crypto/tls"
	"net/http"
	"time"
)

const (
	idleConnTimeout     = 30 * time.Second
	maxIdleConns        = 10
	maxIdleConnsPerHost = 5
)

// CreateClient returns an HTTP client that stamps every request with userAgent.
func CreateClient(timeout time.Duration, userAgent string) *http.Client {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		MaxIdleConns:        maxIdleConns,
		MaxIdleConnsPerHost: maxIdleConnsPerHost,
		IdleConnTimeout:     idleConnTimeout,
	}

	client := &http.Client{
		Timeout: timeout,
	}

	// Create a custom RoundTripper to add headers to every request
	client.Transport = roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		if req.Header.Get("User-Agent") == "" {
			req.Header.Set("User-Agent", userAgent)
		}
		return transport.RoundTrip(req)
	})

	return client
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (rf roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return rf(req)
}
