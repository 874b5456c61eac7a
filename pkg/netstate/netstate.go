// Package netstate reports whether the device is online and what kind of link it uses.
package netstate

import (
	"context"
	"net/http"
	"time"

	"github.com/ulmus/onweekdays/pkg/artsource"
	"github.com/ulmus/onweekdays/util/log"
)

// CheckTimeout bounds the connectivity probe.
const CheckTimeout = 5 * time.Second

// LinkDetector returns the type of the link carrying the default route.
type LinkDetector func() artsource.NetworkType

// Checker probes connectivity and classifies the active link.
type Checker struct {
	probeURL   string
	httpClient *http.Client
	detectLink LinkDetector
}

// NewChecker creates a Checker that probes probeURL, which should answer 2xx when online.
func NewChecker(probeURL string, httpClient *http.Client) *Checker {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Checker{
		probeURL:   probeURL,
		httpClient: httpClient,
		detectLink: DefaultRouteLink,
	}
}

// WithLinkDetector replaces the platform link detection.
func (c *Checker) WithLinkDetector(d LinkDetector) *Checker {
	c.detectLink = d
	return c
}

// Check reports the current connectivity.
func (c *Checker) Check(ctx context.Context) artsource.Connectivity {
	conn := artsource.Connectivity{Connected: c.isNetworkAvailable(ctx)}
	if conn.Connected {
		conn.Type = c.detectLink()
	}
	return conn
}

// isNetworkAvailable checks if the device has a stable internet connection by attempting to connect to a public endpoint.
func (c *Checker) isNetworkAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, CheckTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.probeURL, nil)
	if err != nil {
		log.Printf("isNetworkAvailable: Error creating request: %v", err)
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("isNetworkAvailable: Network check failed: %v", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return true
	}

	log.Printf("isNetworkAvailable: Network check returned non-success status: %d", resp.StatusCode)
	return false
}
